package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/tavm/clipcap/internal/types"
)

// RenderPagesASS turns grouped caption pages and their frame intervals into
// an ASS document. Event timing comes from the intervals, not the raw caption
// times, so what burns into the video matches what the timeline mapper
// decided to show.
func RenderPagesASS(pages []types.Page, intervals []types.PageInterval, fps int) string {
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, iv := range intervals {
		if iv.Page < 0 || iv.Page >= len(pages) {
			continue
		}
		start := frameTime(iv.StartFrame, fps)
		end := frameTime(iv.StartFrame+iv.DurationFrames, fps)
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(start))
		b.WriteString(",")
		b.WriteString(assTime(end))
		b.WriteString(",TikTok,,0,0,0,,")
		for _, tok := range pages[iv.Page].Tokens {
			durCS := int((tok.EndMs - tok.StartMs) / 10)
			if durCS < 1 {
				durCS = 1
			}
			b.WriteString(fmt.Sprintf("{\\k%d}%s ", durCS, sanitizeASS(tok.Text)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: TikTok, Inter, 78, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,2,2, 80,80,260,1
`)
}

func frameTime(frame, fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(frame) / float64(fps) * float64(time.Second))
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
