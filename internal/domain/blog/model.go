package blog

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Post status constants.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("post title is required")
	ErrEmptySlug        = errors.New("post slug is required")
	ErrInvalidSlug      = errors.New("slug may only contain lowercase letters, digits and hyphens")
	ErrEmptyBody        = errors.New("post body is required")
	ErrAlreadyPublished = errors.New("post is already published")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Post is one marketing-site article. Body is markdown; rendering
// happens at the HTTP layer with raw HTML escaped.
type Post struct {
	ID          string
	Slug        string
	Title       string
	Summary     string
	Body        string
	AuthorName  string
	Status      string // draft, published
	CreatedAt   time.Time
	PublishedAt time.Time
}

// Validate checks required fields for a Post.
// PRE: Post struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(p.Slug) == "" {
		return ErrEmptySlug
	}
	if !slugPattern.MatchString(p.Slug) {
		return ErrInvalidSlug
	}
	if strings.TrimSpace(p.Body) == "" {
		return ErrEmptyBody
	}
	return nil
}

// IsPublished returns true if the post is publicly visible.
// INVARIANT: Post fields are not mutated
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// Publish makes the post publicly visible.
// PRE: Post is a draft
// POST: Status is published, PublishedAt set
func (p *Post) Publish(now time.Time) error {
	if p.Status == StatusPublished {
		return ErrAlreadyPublished
	}
	p.Status = StatusPublished
	p.PublishedAt = now
	return nil
}
