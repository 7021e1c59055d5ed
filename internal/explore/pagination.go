package explore

// TotalPages is ceil(total/pageSize), never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps page inside [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	}
	return page
}

// PageLink is one entry of the numbered pagination bar.  Ellipsis entries
// carry no number.
type PageLink struct {
	Number   int  `json:"number,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// windowAll is the largest page count shown without ellipses.
const windowAll = 7

// PageWindow lists every page when there are at most seven; otherwise the
// first, the last, and the neighbours of current, with ellipses over gaps.
func PageWindow(current, totalPages int) []PageLink {
	if totalPages < 1 {
		totalPages = 1
	}
	current = ClampPage(current, totalPages)
	link := func(n int) PageLink { return PageLink{Number: n, Current: n == current} }

	if totalPages <= windowAll {
		out := make([]PageLink, 0, totalPages)
		for n := 1; n <= totalPages; n++ {
			out = append(out, link(n))
		}
		return out
	}

	out := []PageLink{link(1)}
	lo, hi := max(2, current-1), min(totalPages-1, current+1)
	if lo > 2 {
		out = append(out, PageLink{Ellipsis: true})
	}
	for n := lo; n <= hi; n++ {
		out = append(out, link(n))
	}
	if hi < totalPages-1 {
		out = append(out, PageLink{Ellipsis: true})
	}
	return append(out, link(totalPages))
}

// Pager is everything a template needs to draw navigation.  Prev/Next are
// only meaningful when HasPrev/HasNext are set; the controls are rendered
// disabled otherwise.
type Pager struct {
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	HasPrev    bool       `json:"has_prev"`
	HasNext    bool       `json:"has_next"`
	Prev       int        `json:"prev"`
	Next       int        `json:"next"`
	Links      []PageLink `json:"links"`
}

func NewPager(page, total, pageSize int) Pager {
	tp := TotalPages(total, pageSize)
	page = ClampPage(page, tp)
	return Pager{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: tp,
		HasPrev:    page > 1,
		HasNext:    page < tp,
		Prev:       max(1, page-1),
		Next:       min(tp, page+1),
		Links:      PageWindow(page, tp),
	}
}

// SlicePage returns the items of page (1-based).  Pages past the end are
// empty rather than an error.
func SlicePage[T any](items []T, page, pageSize int) []T {
	if pageSize < 1 || page < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
