package captions

import "github.com/tavm/clipcap/internal/types"

// GroupPages partitions word-level captions into display pages. A caption
// joins the current page while its start lies within thresholdMs of the
// page's first caption; the window is anchored to the page start, not to the
// previous token, so a long run of closely spaced words still rolls over to a
// fresh page once the window fills. thresholdMs <= 0 isolates every caption.
//
// Captions must arrive in non-decreasing StartMs order; GroupPages does not
// sort. Flattening the returned pages' tokens reproduces the input exactly.
func GroupPages(caps []types.Caption, thresholdMs float64) []types.Page {
	var pages []types.Page
	for _, c := range caps {
		if len(pages) == 0 || c.StartMs-pages[len(pages)-1].StartMs >= thresholdMs {
			pages = append(pages, types.Page{StartMs: c.StartMs})
		}
		cur := &pages[len(pages)-1]
		cur.Tokens = append(cur.Tokens, c)
	}
	return pages
}
