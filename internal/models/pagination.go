package models

// PageRequest is a 1-based page number and page size
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the page metadata returned with list responses
type Pagination struct {
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// NewPagination computes page metadata for total matching rows
func NewPagination(total int, page PageRequest) Pagination {
	totalPages := 0
	if page.Limit > 0 {
		totalPages = (total + page.Limit - 1) / page.Limit
	}
	return Pagination{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page.Page,
		Limit:       page.Limit,
		HasNext:     page.Page < totalPages,
		HasPrevious: page.Page > 1,
	}
}
