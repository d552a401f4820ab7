package uuid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	id := New()
	if _, err := Parse(id); err != nil {
		t.Fatalf("expected a valid UUID, got %q", id)
	}
	if id[14] != '7' {
		t.Errorf("expected version 7, got %q", id)
	}
}

func TestNew_Ordered(t *testing.T) {
	prev := New()
	for range 100 {
		next := New()
		if next == prev {
			t.Fatalf("duplicate id %q", next)
		}
		if strings.Compare(next[:8], prev[:8]) < 0 {
			t.Fatalf("expected time-ordered ids, got %q after %q", next, prev)
		}
		prev = next
	}
}

func TestParse(t *testing.T) {
	t.Run("canonical", func(t *testing.T) {
		got, err := Parse("0190A5B2-7C3D-7E4F-8A1B-2C3D4E5F6A7B")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "0190a5b2-7c3d-7e4f-8a1b-2c3d4e5f6a7b" {
			t.Errorf("expected lowercase canonical form, got %q", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := Parse("savings"); err == nil {
			t.Error("expected an error")
		}
		if _, err := Parse(""); err == nil {
			t.Error("expected empty string to be invalid")
		}
	})
}
