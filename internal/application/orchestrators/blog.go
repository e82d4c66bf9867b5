package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/blog"
)

// PostStoreForWrite defines the store interface needed by the blog orchestrators.
type PostStoreForWrite interface {
	GetBySlug(ctx context.Context, slug string) (blog.Post, error)
	Save(ctx context.Context, p blog.Post) error
}

var ErrSlugTaken = errors.New("a post with this slug already exists")

// CreateBlogPostInput carries input for CreateBlogPost.
type CreateBlogPostInput struct {
	Slug       string
	Title      string
	Summary    string
	Body       string // markdown
	AuthorName string
	Publish    bool
}

// CreateBlogPostDeps holds dependencies for CreateBlogPost.
type CreateBlogPostDeps struct {
	PostStore PostStoreForWrite
}

// ExecuteCreateBlogPost creates a post, optionally publishing immediately.
// PRE: Slug is unique, body is non-empty markdown
// POST: Post persisted as draft or published
func ExecuteCreateBlogPost(ctx context.Context, input CreateBlogPostInput, deps CreateBlogPostDeps) (string, error) {
	if _, err := deps.PostStore.GetBySlug(ctx, input.Slug); err == nil {
		return "", ErrSlugTaken
	}

	post := blog.Post{
		ID:         uuid.New().String(),
		Slug:       input.Slug,
		Title:      input.Title,
		Summary:    input.Summary,
		Body:       input.Body,
		AuthorName: input.AuthorName,
		Status:     blog.StatusDraft,
		CreatedAt:  time.Now(),
	}
	if input.Publish {
		if err := post.Publish(time.Now()); err != nil {
			return "", err
		}
	}
	if err := post.Validate(); err != nil {
		return "", err
	}
	if err := deps.PostStore.Save(ctx, post); err != nil {
		return "", err
	}

	slog.Info("blog_event", "event", "post_created", "slug", post.Slug, "status", post.Status)
	return post.ID, nil
}

// ExecutePublishBlogPost publishes an existing draft.
// PRE: Post exists and is a draft
// POST: Post is published with PublishedAt set
func ExecutePublishBlogPost(ctx context.Context, slug string, deps CreateBlogPostDeps) error {
	post, err := deps.PostStore.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := post.Publish(time.Now()); err != nil {
		return err
	}
	if err := deps.PostStore.Save(ctx, post); err != nil {
		return err
	}

	slog.Info("blog_event", "event", "post_published", "slug", slug)
	return nil
}
