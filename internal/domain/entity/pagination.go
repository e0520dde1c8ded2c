package entity

// PaginationParams represents pagination request parameters
type PaginationParams struct {
	PageNum  int `json:"page_num" query:"page_num"`
	PageSize int `json:"page_size" query:"page_size"`
}

// PaginationMeta represents pagination metadata in responses
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

// Pagination constants
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1
	DefaultPage     = 1
)

// IsSet reports whether the caller asked for a page at all
func (p PaginationParams) IsSet() bool {
	return p.PageNum > 0 || p.PageSize > 0
}

// Normalize clamps page and size into the allowed range
func (p *PaginationParams) Normalize() {
	if p.PageNum < 1 {
		p.PageNum = DefaultPage
	}

	if p.PageSize < MinPageSize {
		p.PageSize = DefaultPageSize
	} else if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset calculates the database offset from page and size
func (p PaginationParams) Offset() int {
	return (p.PageNum - 1) * p.PageSize
}

// NewPaginationMeta creates pagination metadata from parameters and total count
func NewPaginationMeta(page, size int, total int64) PaginationMeta {
	totalPages := 0
	if size > 0 {
		totalPages = int(total) / size
		if int(total)%size > 0 {
			totalPages++
		}
	}

	return PaginationMeta{
		CurrentPage: page,
		PerPage:     size,
		Total:       total,
		TotalPages:  totalPages,
	}
}
