package timeline

import (
	"math"

	"github.com/tavm/clipcap/internal/types"
)

// DefaultMaxPageDurationMs caps how long a single page may stay on screen.
//
// The constant is written in milliseconds but applied directly as a frame
// count bound, without converting through the frame rate. The renderer this
// engine replaces behaved the same way, and converting here would change the
// on-screen lifetime of every trailing page. If that is ever corrected,
// multiply by fps/1000 where the cap is applied in MapToFrames.
const DefaultMaxPageDurationMs = 1200

// MapToFrames places each page on an fps timeline. A page starts at
// StartMs/1000*fps and ends at the next page's start, bounded above by
// maxPageDuration; pages whose interval comes out empty or negative are
// dropped. Surviving intervals keep the input order and index their source
// page.
//
// Frame positions are computed in float64 and rounded half away from zero on
// emit; a positive duration that would round below one frame is clamped to a
// single frame.
func MapToFrames(pages []types.Page, fps int, maxPageDuration float64) []types.PageInterval {
	var out []types.PageInterval
	for i, p := range pages {
		start := p.StartMs / 1000 * float64(fps)
		end := start + maxPageDuration
		if i+1 < len(pages) {
			next := pages[i+1].StartMs / 1000 * float64(fps)
			if next < end {
				end = next
			}
		}
		d := end - start
		if d <= 0 {
			continue
		}
		frames := int(math.Round(d))
		if frames < 1 {
			frames = 1
		}
		out = append(out, types.PageInterval{
			Page:           i,
			StartFrame:     int(math.Round(start)),
			DurationFrames: frames,
		})
	}
	return out
}
