package transcript

import "testing"

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"not a url at all", "not a url at all"},
	}
	for _, c := range cases {
		if got := ExtractVideoID(c.in); got != c.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseTimedText(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.5" dur="3.2">hello &amp; welcome</text>
  <text start="3.7" dur="2.0">   </text>
  <text start="5.7" dur="4.0">second line</text>
</transcript>`)
	frags, err := ParseTimedText(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}
	if frags[0].Text != "hello & welcome" {
		t.Fatalf("entity not unescaped: %q", frags[0].Text)
	}
	if frags[0].Start != 0.5 || frags[0].Duration != 3.2 {
		t.Fatalf("timing: %+v", frags[0])
	}
	if frags[1].Text != "second line" {
		t.Fatalf("blank cue not skipped: %+v", frags[1])
	}
}

func TestParseTimedTextRejectsGarbage(t *testing.T) {
	if _, err := ParseTimedText([]byte("<<<not xml")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParsePublishedAt(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2024-03-15T10:30:00Z", "2024-03-15"},
		{"", "Unknown"},
		{"yesterday", "Unknown"},
	}
	for _, c := range cases {
		if got := ParsePublishedAt(c.in); got != c.want {
			t.Errorf("ParsePublishedAt(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSecToMMSS(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{75, "01:15"},
		{3600, "60:00"},
		{-5, "00:00"},
	}
	for _, c := range cases {
		if got := SecToMMSS(c.in); got != c.want {
			t.Errorf("SecToMMSS(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUnknownMetadata(t *testing.T) {
	m := UnknownMetadata("abc")
	if m.VideoID != "abc" || m.Title != "Unknown" || m.Channel != "Unknown" || m.Date != "Unknown" {
		t.Fatalf("placeholder metadata: %+v", m)
	}
}
