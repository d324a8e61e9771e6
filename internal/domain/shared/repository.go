package shared

import (
	"context"

	"github.com/google/uuid"
)

// Pagination limits applied by every list endpoint
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Repository is the base interface for tenant-scoped repositories.
// Implementations read the tenant from the context.
type Repository[T any] interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]T, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Normalize clamps page and page size into their valid ranges.
// maxPageSize <= 0 disables the upper bound.
func (f Filter) Normalize(defaultPageSize, maxPageSize int) Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if maxPageSize > 0 && f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	return f
}

// Offset returns the zero-based index of the first row of the page
func (f Filter) Offset() int {
	return PageOffset(f.Page, f.PageSize)
}

// Range returns the inclusive [from, to] row indexes covered by the page
func (f Filter) Range() (int, int) {
	return PageRange(f.Page, f.PageSize)
}

// PageOffset returns (page-1)*pageSize, treating page < 1 as the first page
func PageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize < 0 {
		pageSize = 0
	}
	return (page - 1) * pageSize
}

// PageRange returns the inclusive row range of a page
func PageRange(page, pageSize int) (int, int) {
	from := PageOffset(page, pageSize)
	return from, from + pageSize - 1
}

// TotalPages returns ceil(total/pageSize), or 0 when pageSize is not positive
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	pages := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		pages++
	}
	return int(pages)
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
}
