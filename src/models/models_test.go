package models

import (
	"context"
	"testing"
)

func TestDummyLLMEchoesLastLine(t *testing.T) {
	d := NewDummyLLM("echo:")
	out, err := d.Generate(context.Background(), "first line\nsecond line\n\n")
	if err != nil {
		t.Fatal(err)
	}
	if Text(out) != "echo: second line" {
		t.Fatalf("got %q", Text(out))
	}
}

func TestDummyLLMEmptyPrompt(t *testing.T) {
	d := NewDummyLLM("")
	out, err := d.Generate(context.Background(), "   \n  ")
	if err != nil {
		t.Fatal(err)
	}
	if Text(out) != "Dummy response: <empty prompt>" {
		t.Fatalf("got %q", Text(out))
	}
}

func TestTextCoercion(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{42, "42"},
		{nil, ""},
	}
	for _, c := range cases {
		if got := Text(c.in); got != c.want {
			t.Errorf("Text(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewLLMProviderUnknown(t *testing.T) {
	if _, err := NewLLMProvider(context.Background(), "carrier-pigeon", ""); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
