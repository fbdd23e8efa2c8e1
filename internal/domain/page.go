package domain

// PageRequest is a 1-based page selection.
type PageRequest struct {
	Page    int
	PerPage int
}

func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}

	return PageRequest{Page: page, PerPage: perPage}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}

	return Page[T]{Items: items, Total: total, Page: req.Page, PerPage: req.PerPage}
}

// LastPage is never lower than 1, even for an empty result.
func (p Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}

	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// From and To are the 1-based positions of the first and last items of the
// page, both zero when the page is empty.
func (p Page[T]) From() int {
	if len(p.Items) == 0 {
		return 0
	}

	return (p.Page-1)*p.PerPage + 1
}

func (p Page[T]) To() int {
	if len(p.Items) == 0 {
		return 0
	}

	return p.From() + len(p.Items) - 1
}
