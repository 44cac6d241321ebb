package models

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxPage          = 1_000_000
)

type PageRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize applies defaults and clamps page and limit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

func NewPagination(req PageRequest, total int64) Pagination {
	req = req.Normalize()
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    req.Page < pages,
		HasPrev:    req.Page > 1,
	}
}
