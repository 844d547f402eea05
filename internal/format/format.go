// Package format holds display helpers shared by the read endpoints.
package format

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date renders a calendar date the way the dashboard shows it: "Oct 18, 2026".
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// YAxis computes revenue chart labels in thousands, highest first, and the
// top label value. Values are in whole dollars.
func YAxis(values []int) (labels []string, top int) {
	highest := 0
	for _, v := range values {
		if v > highest {
			highest = v
		}
	}
	top = (highest + 999) / 1000 * 1000

	for i := top; i >= 0; i -= 1000 {
		labels = append(labels, fmt.Sprintf("$%dK", i/1000))
	}
	return labels, top
}

// PageItem is one entry of a pagination control: a page number or an ellipsis.
type PageItem struct {
	Number   int
	Ellipsis bool
}

// MarshalJSON encodes a page as its number and an ellipsis as "...".
func (p PageItem) MarshalJSON() ([]byte, error) {
	if p.Ellipsis {
		return json.Marshal("...")
	}
	return json.Marshal(p.Number)
}

// UnmarshalJSON accepts either a page number or "...".
func (p *PageItem) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "..." {
			return fmt.Errorf("invalid page item %q", s)
		}
		*p = PageItem{Ellipsis: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid page item: %w", err)
	}
	*p = PageItem{Number: n}
	return nil
}

func pages(nums ...int) []PageItem {
	items := make([]PageItem, 0, len(nums))
	for _, n := range nums {
		if n == 0 {
			items = append(items, PageItem{Ellipsis: true})
			continue
		}
		items = append(items, PageItem{Number: n})
	}
	return items
}

// Pagination returns the page list for a pagination control. Up to seven pages
// are listed in full; beyond that the list collapses around the current page.
func Pagination(current, total int) []PageItem {
	if total <= 7 {
		items := make([]PageItem, 0, total)
		for i := 1; i <= total; i++ {
			items = append(items, PageItem{Number: i})
		}
		return items
	}

	// 0 marks an ellipsis
	switch {
	case current <= 3:
		return pages(1, 2, 3, 0, total-1, total)
	case current >= total-2:
		return pages(1, 2, 0, total-2, total-1, total)
	default:
		return pages(1, 0, current-1, current, current+1, 0, total)
	}
}
