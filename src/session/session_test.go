package session

import (
	"fmt"
	"testing"
)

func TestGetOrCreateGeneratesID(t *testing.T) {
	s := NewStore(4)
	sess := s.GetOrCreate("")
	if sess.ID == "" {
		t.Fatal("expected generated session id")
	}
	if again := s.GetOrCreate(sess.ID); again != sess {
		t.Fatal("expected same session back")
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s := NewStore(2)
	a := s.GetOrCreate("a")
	s.GetOrCreate("b")

	// Touch a so b becomes the eviction victim.
	s.GetOrCreate(a.ID)
	s.GetOrCreate("c")

	if _, ok := s.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := s.Get("a"); !ok {
		t.Fatal("a should have survived")
	}
	if s.Len() != 2 {
		t.Fatalf("store size: %d", s.Len())
	}
}

func TestHistoryOrderAndWindow(t *testing.T) {
	sess := newSession("s")
	for i := 0; i < 5; i++ {
		sess.AppendTurn(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	if sess.HistoryLen() != 10 {
		t.Fatalf("history length: %d", sess.HistoryLen())
	}

	recent := sess.RecentHistory(4)
	if len(recent) != 4 {
		t.Fatalf("window size: %d", len(recent))
	}
	if recent[0].Role != RoleHuman || recent[0].Content != "q3" {
		t.Fatalf("window start: %+v", recent[0])
	}
	if recent[3].Role != RoleAI || recent[3].Content != "a4" {
		t.Fatalf("window end: %+v", recent[3])
	}
}

func TestProcessedMemoization(t *testing.T) {
	sess := newSession("s")
	if _, ok := sess.Processed("vid"); ok {
		t.Fatal("nothing processed yet")
	}
	sess.SetProcessed(&ProcessedVideo{VideoID: "vid", DynamicK: 3})
	pv, ok := sess.Processed("vid")
	if !ok || pv.DynamicK != 3 {
		t.Fatalf("processed lookup: %v %v", pv, ok)
	}
}

func TestSummaryMemoization(t *testing.T) {
	sess := newSession("s")
	if _, ok := sess.Summary("vid"); ok {
		t.Fatal("no summary yet")
	}
	sess.SetSummary("vid", "short overview")
	if s, ok := sess.Summary("vid"); !ok || s != "short overview" {
		t.Fatalf("summary lookup: %q %v", s, ok)
	}
}
