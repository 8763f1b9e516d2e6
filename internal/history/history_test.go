package history

import (
	"testing"
	"time"
)

func TestRing_AppendAndEntries(t *testing.T) {
	r := NewRing(3)

	if got := r.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}

	r.Append("first")
	r.Append("second")
	r.Append("third")

	entries := r.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries() length = %d, want 3", len(entries))
	}

	// Newest first.
	want := []string{"third", "second", "first"}
	for i, e := range entries {
		if e.Text != want[i] {
			t.Errorf("Entries()[%d].Text = %q, want %q", i, e.Text, want[i])
		}
		if e.At.IsZero() {
			t.Errorf("Entries()[%d].At is zero", i)
		}
	}
}

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing(2)

	r.Append("first")
	r.Append("second")
	r.Append("third")

	entries := r.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() length = %d, want 2", len(entries))
	}

	if entries[0].Text != "third" || entries[1].Text != "second" {
		t.Errorf("Entries() = [%q, %q], want [third, second]",
			entries[0].Text, entries[1].Text)
	}
}

func TestRing_EntriesReturnsCopy(t *testing.T) {
	r := NewRing(5)
	r.Append("only")

	entries := r.Entries()
	entries[0].Text = "mutated"

	if got := r.Entries()[0].Text; got != "only" {
		t.Errorf("ring entry mutated through returned slice: %q", got)
	}
}

func TestRing_TimestampsAreUTC(t *testing.T) {
	r := NewRing(1)
	before := time.Now().UTC().Add(-time.Second)
	r.Append("x")
	after := time.Now().UTC().Add(time.Second)

	at := r.Entries()[0].At
	if at.Location() != time.UTC {
		t.Errorf("entry timestamp location = %v, want UTC", at.Location())
	}
	if at.Before(before) || at.After(after) {
		t.Errorf("entry timestamp %v outside [%v, %v]", at, before, after)
	}
}
