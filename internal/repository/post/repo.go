package post

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/postforge/postforge/internal/domain"
	dompost "github.com/postforge/postforge/internal/domain/post"
)

// store is the consumer interface for posts (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/posts.Repository on top of hash storage.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a post repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Save creates or overwrites a post.
func (r *Repo) Save(ctx context.Context, p *dompost.Post) error {
	key := r.postKey(p.UserID(), p.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(p)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a user's post by ID.
func (r *Repo) Get(ctx context.Context, userID, id string) (dompost.Post, error) {
	key := r.postKey(userID, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	// HGETALL returns an empty map for a missing key.
	if len(m) == 0 {
		return dompost.Post{}, domain.ErrPostNotFound
	}
	return parseHashFields(id, userID, m), nil
}

// List returns a user's posts matching the query, with cursor-based
// pagination. The zero query lists everything, newest first.
func (r *Repo) List(ctx context.Context, userID string, q dompost.Query, cursor string, limit int) (
	[]dompost.Post, string, error,
) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidInput)
		}
		offset = parsed
	}

	keys, err := r.store.Scan(ctx, r.postKey(userID, "*"))
	if err != nil {
		return nil, "", fmt.Errorf("scan posts for %s: %w", userID, err)
	}

	posts := make([]dompost.Post, 0, len(keys))
	for _, key := range keys {
		m, err := r.store.HGetAll(ctx, key)
		if err != nil {
			return nil, "", fmt.Errorf("hgetall %s: %w", key, err)
		}
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		p := parseHashFields(r.extractPostID(userID, key), userID, m)
		if !q.Matches(&p) {
			continue
		}
		posts = append(posts, p)
	}

	sort.Slice(posts, func(i, j int) bool {
		return q.Less(&posts[i], &posts[j])
	})

	if offset >= len(posts) {
		return nil, "", nil
	}
	end := offset + limit
	var nextCursor string
	if end < len(posts) {
		nextCursor = strconv.Itoa(end)
	} else {
		end = len(posts)
	}

	return posts[offset:end], nextCursor, nil
}

// Delete removes a user's post.
func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	key := r.postKey(userID, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrPostNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) postKey(userID, id string) string {
	return fmt.Sprintf("%spost:%s:%s", r.keyPrefix, userID, id)
}

func (r *Repo) extractPostID(userID, key string) string {
	return strings.TrimPrefix(key, r.postKey(userID, ""))
}
