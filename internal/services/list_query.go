package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ErrInvalidPage is returned for a page number that is malformed or past
// the last page.
var ErrInvalidPage = errors.New("invalid page")

// ListQuery carries the paging, search and ordering parameters shared by
// the public list endpoints.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Ordering string
	last     bool
}

// NewListQuery parses raw query parameters. An unparseable page_size falls
// back to the default; an unparseable page is an error.
func NewListQuery(page, pageSize, search, ordering string) (ListQuery, error) {
	q := ListQuery{Page: 1, PageSize: DefaultPageSize, Search: strings.TrimSpace(search), Ordering: ordering}

	if pageSize != "" {
		if n, err := strconv.Atoi(pageSize); err == nil && n > 0 {
			q.PageSize = n
		}
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}

	switch page {
	case "":
	case "last":
		q.last = true
	default:
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return q, ErrInvalidPage
		}
		q.Page = n
	}
	return q, nil
}

// Page is one page of a list result.
type Page[T any] struct {
	Count       int64 `json:"count"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	Results     []T   `json:"results"`
}

// HasNext reports whether a page follows this one.
func (p *Page[T]) HasNext() bool { return p.CurrentPage < p.TotalPages }

// HasPrevious reports whether a page precedes this one.
func (p *Page[T]) HasPrevious() bool { return p.CurrentPage > 1 }

// MapPage converts the results of a page while keeping its counters.
func MapPage[A, B any](p *Page[A], fn func(items []A) []B) *Page[B] {
	return &Page[B]{
		Count:       p.Count,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		PageSize:    p.PageSize,
		Results:     fn(p.Results),
	}
}

// paginate counts query, then loads the requested page of M with the
// given associations. An empty result still has one (empty) first page.
func paginate[M any](query *gorm.DB, q ListQuery, preloads ...string) (*Page[M], error) {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	totalPages := int((count + int64(q.PageSize) - 1) / int64(q.PageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if q.last {
		q.Page = totalPages
	}
	if q.Page > totalPages {
		return nil, ErrInvalidPage
	}

	items := make([]M, 0, q.PageSize)
	find := query.Session(&gorm.Session{})
	for _, assoc := range preloads {
		find = find.Preload(assoc)
	}
	if err := find.
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}

	return &Page[M]{
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: q.Page,
		PageSize:    q.PageSize,
		Results:     items,
	}, nil
}

// applySearch requires every whitespace separated term to appear in at
// least one of columns, case-insensitively.
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	for _, term := range strings.Fields(search) {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!'", col)
			args[i] = pattern
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	return query
}

// containsAny matches rows where column contains value, case-insensitively.
func containsAny(column, value string) (string, interface{}) {
	return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!'", column), "%" + escapeLike(strings.ToLower(value)) + "%"
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// applyOrdering orders query by the comma separated ordering parameter.
// Unknown fields are ignored; when none is usable, fallback applies.
// allowed maps public field names to columns.
func applyOrdering(query *gorm.DB, ordering string, allowed map[string]string, fallback string) *gorm.DB {
	var parts []string
	for _, field := range strings.Split(ordering, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		column, ok := allowed[strings.TrimPrefix(field, "-")]
		if !ok {
			continue
		}
		if desc {
			parts = append(parts, column+" DESC")
		} else {
			parts = append(parts, column+" ASC")
		}
	}
	if len(parts) == 0 {
		return query.Order(fallback)
	}
	return query.Order(strings.Join(parts, ", "))
}
