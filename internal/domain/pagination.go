package domain

import "math"

const (
	DefaultPage    = 1
	DefaultPerPage = 5
	// MaxPerPage caps the page size a client may ask for.
	MaxPerPage = 100
)

// ListQuery is a search term plus the page window to return.
type ListQuery struct {
	Search  string
	Page    int
	PerPage int
}

// Normalize applies the defaults for missing or non-positive values, caps
// PerPage at MaxPerPage and caps Page so that Offset cannot overflow.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if maxPage := math.MaxInt / q.PerPage; q.Page > maxPage {
		q.Page = maxPage
	}
	return q
}

// Offset is the number of rows skipped before the page.
func (q ListQuery) Offset() int {
	q = q.Normalize()
	return (q.Page - 1) * q.PerPage
}

// Pagination is the page metadata returned with every list response.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
	PerPage     int   `json:"perPage"`
}

// NewPagination computes page metadata; totalPages is ceil(total/perPage).
func NewPagination(q ListQuery, total int64) Pagination {
	q = q.Normalize()
	pages := int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
	return Pagination{
		CurrentPage: q.Page,
		TotalPages:  pages,
		Total:       total,
		PerPage:     q.PerPage,
	}
}

// Page is a list of items and the metadata describing the whole filtered collection.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}
