package storage

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects one page of a listing. Page numbers start at 1.
type Page struct {
	Size   int `json:"pageSize"`
	Number int `json:"pageNumber"`
}

// Normalize clamps p to a valid page: size defaults to DefaultPageSize and
// is capped at MaxPageSize, number defaults to 1
func (p Page) Normalize() Page {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Number <= 0 {
		p.Number = 1
	}
	return p
}

// Offset is the number of rows to skip
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageInfo describes the page returned alongside a listing
type PageInfo struct {
	TotalCount int `json:"totalCount"`
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
	TotalPages int `json:"totalPages"`
	Skip       int `json:"skip"`
}

// Info builds the PageInfo of p for total matching rows
func (p Page) Info(total int) PageInfo {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return PageInfo{
		TotalCount: total,
		PageSize:   p.Size,
		PageNumber: p.Number,
		TotalPages: pages,
		Skip:       p.Offset(),
	}
}
