package blog

import (
	"testing"
	"time"
)

// TestPost_Validate verifies slug rules.
func TestPost_Validate(t *testing.T) {
	p := Post{Slug: "cut-food-waste-in-half", Title: "Cut food waste in half", Body: "## Start with the walk-in"}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected valid post, got %v", err)
	}

	bad := Post{Slug: "Bad Slug!", Title: "t", Body: "b"}
	if err := bad.Validate(); err != ErrInvalidSlug {
		t.Fatalf("expected ErrInvalidSlug, got %v", err)
	}
}

// TestPost_Publish verifies the draft -> published transition.
func TestPost_Publish(t *testing.T) {
	p := Post{Slug: "s", Title: "t", Body: "b", Status: StatusDraft}
	if err := p.Publish(time.Now()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !p.IsPublished() || p.PublishedAt.IsZero() {
		t.Fatalf("publish did not record state")
	}
	if err := p.Publish(time.Now()); err != ErrAlreadyPublished {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}
}
