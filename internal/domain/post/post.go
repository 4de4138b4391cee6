// Package post holds the blog post aggregate.
package post

import (
	"fmt"
	"time"
)

// Status is the publication state of a post.
type Status string

// Post lifecycle states.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// MaxContentSize is the maximum article HTML size in bytes.
const MaxContentSize = 262144 // 256KB

// MaxTitleLen is the maximum title length in bytes.
const MaxTitleLen = 512

// Post is the blog post aggregate (immutable value object).
type Post struct {
	id           string
	userID       string
	topic        string
	industry     string
	title        string
	content      string
	thumbnailURL string
	status       Status
	publishedURL string
	createdAt    time.Time
	updatedAt    time.Time
}

// New validates and creates a draft Post.
func New(id, userID, topic, industry, title, content, thumbnailURL string, now time.Time) (Post, error) {
	if id == "" {
		return Post{}, fmt.Errorf("post ID is required")
	}
	if userID == "" {
		return Post{}, fmt.Errorf("user ID is required")
	}
	if title == "" {
		return Post{}, fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLen {
		return Post{}, fmt.Errorf("title too long (max %d bytes)", MaxTitleLen)
	}
	if content == "" {
		return Post{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Post{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if industry == "" {
		return Post{}, fmt.Errorf("industry is required")
	}

	now = now.UTC()
	return Post{
		id:           id,
		userID:       userID,
		topic:        topic,
		industry:     industry,
		title:        title,
		content:      content,
		thumbnailURL: thumbnailURL,
		status:       StatusDraft,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct creates a Post without validation (storage hydration).
func Reconstruct(
	id, userID, topic, industry, title, content, thumbnailURL string,
	status Status, publishedURL string, createdAt, updatedAt time.Time,
) Post {
	return Post{
		id:           id,
		userID:       userID,
		topic:        topic,
		industry:     industry,
		title:        title,
		content:      content,
		thumbnailURL: thumbnailURL,
		status:       status,
		publishedURL: publishedURL,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the post identifier.
func (p *Post) ID() string { return p.id }

// UserID returns the owning user.
func (p *Post) UserID() string { return p.userID }

// Topic returns the topic the post was generated from.
func (p *Post) Topic() string { return p.topic }

// Industry returns the target industry.
func (p *Post) Industry() string { return p.industry }

// Title returns the post title.
func (p *Post) Title() string { return p.title }

// Content returns the article HTML.
func (p *Post) Content() string { return p.content }

// ThumbnailURL returns the featured image URL.
func (p *Post) ThumbnailURL() string { return p.thumbnailURL }

// Status returns the publication state.
func (p *Post) Status() Status { return p.status }

// PublishedURL returns the public URL once published.
func (p *Post) PublishedURL() string { return p.publishedURL }

// CreatedAt returns the creation time (UTC).
func (p *Post) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last modification time (UTC).
func (p *Post) UpdatedAt() time.Time { return p.updatedAt }

// WithThumbnail returns a copy with the thumbnail URL set.
func (p *Post) WithThumbnail(url string, now time.Time) Post {
	c := *p
	c.thumbnailURL = url
	c.updatedAt = now.UTC()
	return c
}

// Publish transitions a draft to published with its public URL.
// Publishing an already-published post is an error.
func (p *Post) Publish(url string, now time.Time) (Post, error) {
	if p.status == StatusPublished {
		return Post{}, fmt.Errorf("post %s is already published", p.id)
	}
	c := *p
	c.status = StatusPublished
	c.publishedURL = url
	c.updatedAt = now.UTC()
	return c, nil
}

// ParseStatus validates a status string. Empty input is valid and means
// "no filter".
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusDraft, StatusPublished:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown post status %q", s)
	}
}
