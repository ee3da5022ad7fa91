package posts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"yatube/internal/models"
)

func makePosts(n int) []models.Post {
	out := make([]models.Post, n)
	for i := range out {
		out[i] = models.Post{ID: int64(i + 1), Text: fmt.Sprintf("post %d", i+1)}
	}
	return out
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		raw        string
		wantNumber int
		wantPages  int
		wantLen    int
		wantFirst  int64
	}{
		{name: "empty sequence", count: 0, raw: "", wantNumber: 1, wantPages: 1, wantLen: 0},
		{name: "absent page", count: 11, raw: "", wantNumber: 1, wantPages: 2, wantLen: 10, wantFirst: 1},
		{name: "non numeric", count: 11, raw: "abc", wantNumber: 1, wantPages: 2, wantLen: 10, wantFirst: 1},
		{name: "second page", count: 11, raw: "2", wantNumber: 2, wantPages: 2, wantLen: 1, wantFirst: 11},
		{name: "beyond last clamps", count: 11, raw: "99", wantNumber: 2, wantPages: 2, wantLen: 1, wantFirst: 11},
		{name: "zero goes to last", count: 25, raw: "0", wantNumber: 3, wantPages: 3, wantLen: 5, wantFirst: 21},
		{name: "negative goes to last", count: 25, raw: "-4", wantNumber: 3, wantPages: 3, wantLen: 5, wantFirst: 21},
		{name: "exact multiple", count: 20, raw: "2", wantNumber: 2, wantPages: 2, wantLen: 10, wantFirst: 11},
		{name: "fewer than a page", count: 3, raw: "1", wantNumber: 1, wantPages: 1, wantLen: 3, wantFirst: 1},
		{name: "overflowing number goes to last", count: 25, raw: "99999999999999999999", wantNumber: 3, wantPages: 3, wantLen: 5, wantFirst: 21},
		{name: "overflowing negative goes to last", count: 25, raw: "-99999999999999999999", wantNumber: 3, wantPages: 3, wantLen: 5, wantFirst: 21},
		{name: "whitespace", count: 11, raw: " 2 ", wantNumber: 2, wantPages: 2, wantLen: 1, wantFirst: 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(makePosts(tt.count), tt.raw)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantPages, page.NumPages)
			assert.Equal(t, tt.count, page.TotalCount)
			assert.Len(t, page.Items, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page.Items[0].ID)
			}
		})
	}
}

func TestPaginate_LastPageSize(t *testing.T) {
	for n := 1; n <= 45; n++ {
		page := Paginate(makePosts(n), "last")
		assert.Len(t, page.Items, min(n, PageSize), "n=%d first page", n)

		last := Paginate(makePosts(n), fmt.Sprint(page.NumPages))
		want := n % PageSize
		if want == 0 {
			want = PageSize
		}
		assert.Len(t, last.Items, want, "n=%d last page", n)
	}
}

func TestPage_Navigation(t *testing.T) {
	first := Paginate(makePosts(25), "1")
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.True(t, first.HasOtherPages())
	assert.Equal(t, 2, first.NextPageNumber())
	assert.Equal(t, []int{1, 2, 3}, first.PageNumbers())

	middle := Paginate(makePosts(25), "2")
	assert.True(t, middle.HasNext())
	assert.True(t, middle.HasPrevious())
	assert.Equal(t, 1, middle.PreviousPageNumber())

	only := Paginate(makePosts(4), "")
	assert.False(t, only.HasOtherPages())
}

func TestPaginate_Idempotent(t *testing.T) {
	items := makePosts(17)
	a := Paginate(items, "2")
	b := Paginate(items, "2")
	assert.Equal(t, a, b)
}
