package post

import (
	"strconv"
	"time"

	dompost "github.com/postforge/postforge/internal/domain/post"
)

// buildHashFields converts a domain Post into a flat map[string]string for HSET.
func buildHashFields(p *dompost.Post) map[string]string {
	m := map[string]string{
		"topic":      p.Topic(),
		"industry":   p.Industry(),
		"title":      p.Title(),
		"content":    p.Content(),
		"status":     string(p.Status()),
		"created_at": strconv.FormatInt(p.CreatedAt().UnixMilli(), 10),
		"updated_at": strconv.FormatInt(p.UpdatedAt().UnixMilli(), 10),
	}
	if p.ThumbnailURL() != "" {
		m["thumbnail_url"] = p.ThumbnailURL()
	}
	if p.PublishedURL() != "" {
		m["published_url"] = p.PublishedURL()
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Post.
func parseHashFields(id, userID string, m map[string]string) dompost.Post {
	status, err := dompost.ParseStatus(m["status"])
	if err != nil || status == "" {
		status = dompost.StatusDraft
	}
	return dompost.Reconstruct(
		id, userID,
		m["topic"], m["industry"], m["title"], m["content"], m["thumbnail_url"],
		status, m["published_url"],
		parseMillis(m["created_at"]),
		parseMillis(m["updated_at"]),
	)
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
