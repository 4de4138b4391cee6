package post

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func makePost(t *testing.T) Post {
	t.Helper()
	p, err := New("p1", "u1", "ai tooling", "tech", "Title", "<p>body</p>", "", testNow)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNew_Defaults(t *testing.T) {
	p := makePost(t)

	if p.Status() != StatusDraft {
		t.Errorf("expected draft status, got %q", p.Status())
	}
	if !p.CreatedAt().Equal(testNow) || !p.UpdatedAt().Equal(testNow) {
		t.Error("expected createdAt and updatedAt set to now")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name                                string
		id, user, industry, title, content string
	}{
		{"empty id", "", "u1", "tech", "T", "c"},
		{"empty user", "p1", "", "tech", "T", "c"},
		{"empty industry", "p1", "u1", "", "T", "c"},
		{"empty title", "p1", "u1", "tech", "", "c"},
		{"empty content", "p1", "u1", "tech", "T", ""},
		{"title too long", "p1", "u1", "tech", strings.Repeat("x", MaxTitleLen+1), "c"},
		{"content too large", "p1", "u1", "tech", "T", strings.Repeat("x", MaxContentSize+1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.id, tc.user, "topic", tc.industry, tc.title, tc.content, "", testNow); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPublish(t *testing.T) {
	p := makePost(t)
	later := testNow.Add(time.Hour)

	pub, err := p.Publish("https://blog.example.com/title", later)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if pub.Status() != StatusPublished {
		t.Errorf("expected published status, got %q", pub.Status())
	}
	if pub.PublishedURL() != "https://blog.example.com/title" {
		t.Errorf("unexpected published URL %q", pub.PublishedURL())
	}
	if !pub.UpdatedAt().Equal(later) {
		t.Error("expected updatedAt bumped")
	}
	// Original value unchanged.
	if p.Status() != StatusDraft {
		t.Error("Publish mutated the receiver")
	}
}

func TestPublish_AlreadyPublished(t *testing.T) {
	p := makePost(t)
	pub, err := p.Publish("https://x", testNow)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := pub.Publish("https://y", testNow); err == nil {
		t.Fatal("expected error publishing twice")
	}
}

func TestWithThumbnail(t *testing.T) {
	p := makePost(t)
	c := p.WithThumbnail("https://img", testNow.Add(time.Minute))
	if c.ThumbnailURL() != "https://img" {
		t.Errorf("unexpected thumbnail %q", c.ThumbnailURL())
	}
	if p.ThumbnailURL() != "" {
		t.Error("WithThumbnail mutated the receiver")
	}
}

func TestParseStatus(t *testing.T) {
	for _, ok := range []string{"", "draft", "published"} {
		if _, err := ParseStatus(ok); err != nil {
			t.Errorf("ParseStatus(%q): unexpected error: %v", ok, err)
		}
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Error("expected error for unknown status")
	}
}
