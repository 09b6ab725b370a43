package raven

import (
	"regexp"
	"testing"
)

func TestCompileMatcher_Literals(t *testing.T) {
	m, err := compileMatcher([]any{"Script error.", "out of memory"})
	if err != nil {
		t.Fatalf("compileMatcher returned error: %v", err)
	}

	if !m.Matches("Script error.") {
		t.Error("exact literal should match")
	}
	if !m.Matches("OUT OF MEMORY") {
		t.Error("matching is case-insensitive")
	}
	// The dot is escaped; it must not act as a wildcard.
	if m.Matches("Script errorX") {
		t.Error("literal dot matched an arbitrary character")
	}
}

func TestCompileMatcher_Patterns(t *testing.T) {
	m, err := compileMatcher([]any{
		"literal",
		regexp.MustCompile(`^https?://cdn\.`),
	})
	if err != nil {
		t.Fatalf("compileMatcher returned error: %v", err)
	}

	if !m.Matches("https://cdn.example.com/lib.js") {
		t.Error("pattern entry should match")
	}
	if !m.Matches("a literal occurrence") {
		t.Error("literal entry should match as substring")
	}
	if m.Matches("https://app.example.com/main.js") {
		t.Error("unrelated URL matched")
	}
}

func TestCompileMatcher_EmptyDisabled(t *testing.T) {
	m, err := compileMatcher(nil)
	if err != nil {
		t.Fatalf("compileMatcher returned error: %v", err)
	}
	if m.Enabled() {
		t.Error("empty list should compile disabled")
	}
	if m.Matches("anything") {
		t.Error("disabled matcher must match nothing")
	}

	var zero *Matcher
	if zero.Matches("anything") {
		t.Error("nil matcher must match nothing")
	}
}

func TestCompileMatcher_BadEntryType(t *testing.T) {
	if _, err := compileMatcher([]any{42}); err == nil {
		t.Fatal("expected error for non string/pattern entry")
	}
}
