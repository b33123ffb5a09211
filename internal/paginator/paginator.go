// Package paginator splits an ordered record set into fixed-size pages.
//
// Requested page numbers never produce an error: anything that does not
// parse as an integer means page 1, numbers below 1 clamp to the first page
// and numbers past the end clamp to the last page. An empty record set still
// has one (empty) page, so list views can always render.
package paginator

import (
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used when configuration does not set one.
const DefaultPerPage = 10

// Paginator knows the size of a record set and computes page windows over it.
type Paginator struct {
	total   int
	perPage int
}

// New returns a Paginator for total records split into pages of perPage.
// A perPage below 1 falls back to DefaultPerPage.
func New(total, perPage int) *Paginator {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	return &Paginator{total: total, perPage: perPage}
}

// NumPages is the number of pages, at least 1.
func (p *Paginator) NumPages() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.perPage - 1) / p.perPage
}

// PerPage is the page size.
func (p *Paginator) PerPage() int { return p.perPage }

// Total is the number of records in the set.
func (p *Paginator) Total() int { return p.total }

// Clamp maps any page number onto the nearest valid one.
func (p *Paginator) Clamp(number int) int {
	if number < 1 {
		return 1
	}
	if last := p.NumPages(); number > last {
		return last
	}
	return number
}

// Window returns the clamped page number together with the LIMIT/OFFSET pair
// that selects it from the ordered set.
func (p *Paginator) Window(raw string) (number, limit, offset int) {
	number = p.Clamp(ParseNumber(raw))
	return number, p.perPage, (number - 1) * p.perPage
}

// ParseNumber reads a page number from a query parameter value.
// Empty or non-numeric input means page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

// Page is one page of records plus the metadata list templates need.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int
	PerPage  int
}

// NewPage wraps the items already selected for page number of p.
func NewPage[T any](p *Paginator, number int, items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: p.NumPages(),
		Total:    p.Total(),
		PerPage:  p.PerPage(),
	}
}

// Len is the number of records on this page.
func (pg *Page[T]) Len() int { return len(pg.Items) }

// HasNext reports whether a later page exists.
func (pg *Page[T]) HasNext() bool { return pg.Number < pg.NumPages }

// HasPrevious reports whether an earlier page exists.
func (pg *Page[T]) HasPrevious() bool { return pg.Number > 1 }

// HasOtherPages reports whether pagination links are worth rendering.
func (pg *Page[T]) HasOtherPages() bool { return pg.HasNext() || pg.HasPrevious() }

// NextNumber is the following page number; only meaningful when HasNext.
func (pg *Page[T]) NextNumber() int { return pg.Number + 1 }

// PreviousNumber is the preceding page number; only meaningful when HasPrevious.
func (pg *Page[T]) PreviousNumber() int { return pg.Number - 1 }

// StartIndex is the 1-based position of the first item on the page, 0 if empty.
func (pg *Page[T]) StartIndex() int {
	if len(pg.Items) == 0 {
		return 0
	}
	return (pg.Number-1)*pg.PerPage + 1
}
