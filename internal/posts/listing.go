// Package posts holds the post listing and authoring rules: pagination of
// ordered post sequences, form validation, and ownership-checked
// create/edit on top of the entity store.
package posts

import (
	"errors"
	"strconv"
	"strings"

	"yatube/internal/models"
)

// PageSize is the number of posts on every listing page.
const PageSize = 10

// Page is one bounded slice of an ordered post sequence.
type Page struct {
	Items      []models.Post
	Number     int
	NumPages   int
	TotalCount int
}

func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page) NextPageNumber() int     { return p.Number + 1 }
func (p Page) PreviousPageNumber() int { return p.Number - 1 }

// PageNumbers lists 1..NumPages for navigation links.
func (p Page) PageNumbers() []int {
	nums := make([]int, p.NumPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Paginate cuts items into pages of PageSize and returns the page named by
// raw. A missing or non-numeric raw yields page 1; anything outside
// [1, last] yields the last page, including numbers too large for int.
// An empty sequence has one empty page.
func Paginate(items []models.Post, raw string) Page {
	count := len(items)
	numPages := 1
	if count > 0 {
		numPages = (count + PageSize - 1) / PageSize
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange):
		number = numPages
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	lo := (number - 1) * PageSize
	hi := min(lo+PageSize, count)
	return Page{
		Items:      items[lo:hi],
		Number:     number,
		NumPages:   numPages,
		TotalCount: count,
	}
}
