package document

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Normalize fills in defaults for unset values. It does not clamp values the
// caller set explicitly out of range; ValidatePage reports those.
func (p PageRequest) Normalize() PageRequest {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// ValidatePage checks page >= 1 and limit in [1, MaxLimit].
func ValidatePage(p PageRequest) error {
	var errs []FieldError
	if p.Page < 1 {
		errs = append(errs, FieldError{Field: "page", Message: "page must not be less than 1"})
	}
	if p.Limit < 1 {
		errs = append(errs, FieldError{Field: "limit", Message: "limit must not be less than 1"})
	} else if p.Limit > MaxLimit {
		errs = append(errs, FieldError{Field: "limit", Message: "limit must not be greater than 100"})
	}
	return newValidationError(errs)
}

// Offset is the number of matching documents before the requested page. ok
// is false when that number overflows int64; such a page lies past the end
// of any result. p must have passed ValidatePage.
func (p PageRequest) Offset() (offset int64, ok bool) {
	before, limit := int64(p.Page-1), int64(p.Limit)
	if before > math.MaxInt64/limit {
		return 0, false
	}
	return before * limit, true
}

// Page is one page of documents plus the pagination envelope.
type Page struct {
	Items      []Document `json:"items"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Total      int64      `json:"total"`
	TotalPages int        `json:"totalPages"`
	HasNext    bool       `json:"hasNext"`
	HasPrev    bool       `json:"hasPrev"`
}

// NewPage computes the envelope for items fetched with req out of total
// matches. A nil items slice is replaced by an empty one.
func NewPage(items []Document, total int64, req PageRequest) Page {
	if items == nil {
		items = []Document{}
	}
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return Page{
		Items:      items,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}
}

// ClampLimit applies the default for non-positive limits and caps the rest.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
