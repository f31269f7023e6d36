// Package listutil parses and renders the paging, sorting and search
// controls shared by the roster views. Parsing is strict about what it
// accepts: unknown sort columns and out-of-range page sizes fall back
// to safe defaults instead of reaching the store.
package listutil

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is the page size used when the request names none.
const DefaultPerPage = 20

// PerPageOptions are the page sizes the views offer. Anything else in
// the query string falls back to DefaultPerPage.
var PerPageOptions = []int{10, 20, 50, 100}

// PageParams is the requested page window.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// SortParams is the requested ordering.
type SortParams struct {
	Sort string // column name, "" for the store's natural order
	Dir  string // "asc" or "desc"
}

// ListParams bundles everything a list view reads from its query
// string: the page window, the ordering and the free-text search.
type ListParams struct {
	PageParams
	SortParams
	Search string
}

// ParsePageParams reads page and per_page from query values.
// POST: Page >= 1 and PerPage is one of PerPageOptions
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !intIn(perPage, PerPageOptions) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseSortParams reads sort and dir from query values. Columns not in
// allowed are dropped; they reach SQL ORDER BY clauses downstream.
// POST: Dir is "asc" or "desc"
func ParseSortParams(q url.Values, allowed []string) SortParams {
	sort := q.Get("sort")
	if !stringIn(sort, allowed) {
		sort = ""
	}
	dir := q.Get("dir")
	if dir != "asc" && dir != "desc" {
		dir = "asc"
	}
	return SortParams{Sort: sort, Dir: dir}
}

// ParseListParams reads all list controls from query values. The search
// text arrives as "q" and is passed through untrimmed; matching decides
// how to normalize it.
func ParseListParams(q url.Values, allowedSortCols []string) ListParams {
	return ListParams{
		PageParams: ParsePageParams(q),
		SortParams: ParseSortParams(q, allowedSortCols),
		Search:     q.Get("q"),
	}
}

// PageInfo is the resolved page window over a known total, ready for
// rendering pagination controls.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPageInfo resolves a requested page against the total row count.
// A page past the end clamps to the last page, never to an empty one.
// POST: 1 <= Page <= TotalPages and TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the page's first row.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row shown, 0 for an empty list.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row shown.
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// PageNumbers returns up to five page numbers centered on the current
// page for the pagination buttons.
func (p PageInfo) PageNumbers() []int {
	const window = 5
	start := p.Page - window/2
	if start < 1 {
		start = 1
	}
	end := start + window - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - window + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}
	return pages
}

// ShowPagination reports whether the list spills past one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

func intIn(v int, list []int) bool {
	for _, x := range list {
		if v == x {
			return true
		}
	}
	return false
}

func stringIn(v string, list []string) bool {
	for _, x := range list {
		if v == x {
			return true
		}
	}
	return false
}
