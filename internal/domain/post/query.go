package post

import (
	"fmt"
	"strings"

	"github.com/postforge/postforge/internal/domain"
)

// SortField orders post listings.
type SortField string

// Sortable post fields.
const (
	SortByCreatedAt SortField = "created_at"
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
)

// SortDir is the listing sort direction.
type SortDir string

// Sort directions.
const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Query describes post listing filters and ordering.
// Zero value lists everything, newest first.
type Query struct {
	Status        Status
	Industry      string
	TitleContains string
	SortBy        SortField
	SortDir       SortDir
}

// NewQuery validates raw filter parameters into a Query.
func NewQuery(status, industry, titleContains, sortBy, sortDir string) (Query, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return Query{}, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}

	var sb SortField
	switch sortBy {
	case "", string(SortByCreatedAt):
		sb = SortByCreatedAt
	case string(SortByTitle):
		sb = SortByTitle
	case string(SortByStatus):
		sb = SortByStatus
	default:
		return Query{}, fmt.Errorf("unknown sort field %q: %w", sortBy, domain.ErrInvalidInput)
	}

	var sd SortDir
	switch sortDir {
	case "":
		// created_at defaults to newest first, everything else ascending
		if sb == SortByCreatedAt {
			sd = SortDesc
		} else {
			sd = SortAsc
		}
	case string(SortAsc):
		sd = SortAsc
	case string(SortDesc):
		sd = SortDesc
	default:
		return Query{}, fmt.Errorf("unknown sort direction %q: %w", sortDir, domain.ErrInvalidInput)
	}

	return Query{
		Status:        st,
		Industry:      industry,
		TitleContains: titleContains,
		SortBy:        sb,
		SortDir:       sd,
	}, nil
}

// Matches reports whether a post passes the query's filters.
func (q Query) Matches(p *Post) bool {
	if q.Status != "" && p.Status() != q.Status {
		return false
	}
	if q.Industry != "" && !strings.EqualFold(p.Industry(), q.Industry) {
		return false
	}
	if q.TitleContains != "" && !strings.Contains(strings.ToLower(p.Title()), strings.ToLower(q.TitleContains)) {
		return false
	}
	return true
}

// Less orders two posts according to the query's sort settings.
// Ties fall back to ID so pagination stays stable.
func (q Query) Less(a, b *Post) bool {
	var less, eq bool
	switch q.SortBy {
	case SortByTitle:
		less = a.Title() < b.Title()
		eq = a.Title() == b.Title()
	case SortByStatus:
		less = a.Status() < b.Status()
		eq = a.Status() == b.Status()
	default:
		less = a.CreatedAt().Before(b.CreatedAt())
		eq = a.CreatedAt().Equal(b.CreatedAt())
	}
	if eq {
		return a.ID() < b.ID()
	}
	dir := q.SortDir
	if dir == "" {
		if q.SortBy == SortByTitle || q.SortBy == SortByStatus {
			dir = SortAsc
		} else {
			dir = SortDesc
		}
	}
	if dir == SortDesc {
		return !less
	}
	return less
}
