package domain

import (
	"errors"
	"math"
)

var (
	ErrNotFound    = errors.New("hotel: not found")
	ErrInvalidPage = errors.New("hotel: invalid page request")
)

// Hotel is the only persisted entity. ID is assigned by the repository on
// create and never changes afterwards.
type Hotel struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	City        string `json:"city" db:"city"`
	Rating      int    `json:"rating" db:"rating"`
}

// PageRequest is zero-indexed.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Validate() error {
	if p.Page < 0 || p.Size < 1 {
		return ErrInvalidPage
	}
	return nil
}

// Offset saturates at math.MaxInt when Page*Size would overflow, so a huge
// page number reads as past the end.
func (p PageRequest) Offset() int {
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Page is one window of hotels ordered by id ascending, plus totals.
type Page struct {
	Items         []Hotel `json:"content"`
	Number        int     `json:"number"`
	Size          int     `json:"size"`
	TotalElements int64   `json:"total_elements"`
	TotalPages    int     `json:"total_pages"`
}

// NewPage fills in the positional metadata for items fetched with pr.
func NewPage(items []Hotel, pr PageRequest, total int64) Page {
	if items == nil {
		items = []Hotel{}
	}
	pages := 0
	if pr.Size > 0 {
		size := int64(pr.Size)
		pages = int(total / size)
		if total%size != 0 {
			pages++
		}
	}
	return Page{
		Items:         items,
		Number:        pr.Page,
		Size:          pr.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
