package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil { t.Fatalf("New: %v", err) }
	if got := c.Render(KeyWaiting, nil); got != "Waiting for an opponent..." {
		t.Fatalf("waiting = %q", got)
	}
	if got := c.Render(KeySeatAssigned, map[string]string{"Color": "white"}); got != "Matched! You play white." {
		t.Fatalf("seat_assigned = %q", got)
	}
	if got := c.Render("no.such.key", nil); got != "" {
		t.Fatalf("unknown key = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "queue:\n  waiting: \"Hold tight.\"\n"
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	c, err := New(dir)
	if err != nil { t.Fatalf("New: %v", err) }
	if got := c.Render(KeyWaiting, nil); got != "Hold tight." {
		t.Fatalf("override not applied: %q", got)
	}
	// untouched keys keep defaults
	if got := c.Render(KeyMoveRejected, nil); got != "Invalid move." {
		t.Fatalf("default lost: %q", got)
	}
}

func TestMissingTemplateKeyFailsClosed(t *testing.T) {
	c, err := New("")
	if err != nil { t.Fatalf("New: %v", err) }
	if got := c.Render(KeySeatAssigned, map[string]string{}); got != "" {
		t.Fatalf("expected empty render on missing data, got %q", got)
	}
}
