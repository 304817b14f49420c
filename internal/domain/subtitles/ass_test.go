package subtitles

import (
	"strings"
	"testing"
	"time"

	"github.com/tavm/clipcap/internal/types"
)

func TestRenderPagesASS_EventsFollowIntervals(t *testing.T) {
	pages := []types.Page{
		{StartMs: 0, Tokens: []types.Caption{
			{Text: "Hello", StartMs: 0, EndMs: 300},
			{Text: "world", StartMs: 300, EndMs: 800},
		}},
		{StartMs: 1300, Tokens: []types.Caption{{Text: "again", StartMs: 1300, EndMs: 1500}}},
	}
	intervals := []types.PageInterval{
		{Page: 0, StartFrame: 0, DurationFrames: 39},
		{Page: 1, StartFrame: 39, DurationFrames: 60},
	}
	ass := RenderPagesASS(pages, intervals, 30)
	if !strings.Contains(ass, "{\\k") {
		t.Fatalf("expected karaoke tags:\n%s", ass)
	}
	// 39 frames at 30fps = 1.3s.
	if !strings.Contains(ass, "Dialogue: 0,0:00:00.00,0:00:01.30,TikTok") {
		t.Fatalf("first event does not match its interval:\n%s", ass)
	}
	if !strings.Contains(ass, "Dialogue: 0,0:00:01.30,0:00:03.30,TikTok") {
		t.Fatalf("second event does not match its interval:\n%s", ass)
	}
	if strings.Count(ass, "Dialogue:") != 2 {
		t.Fatalf("expected one event per interval:\n%s", ass)
	}
}

func TestRenderPagesASS_SanitizesBraces(t *testing.T) {
	pages := []types.Page{{StartMs: 0, Tokens: []types.Caption{{Text: "{boo}", StartMs: 0, EndMs: 100}}}}
	intervals := []types.PageInterval{{Page: 0, StartFrame: 0, DurationFrames: 10}}
	ass := RenderPagesASS(pages, intervals, 30)
	if strings.Contains(ass, "{boo}") {
		t.Fatalf("braces must not pass through:\n%s", ass)
	}
	if !strings.Contains(ass, "(boo)") {
		t.Fatalf("expected sanitized token:\n%s", ass)
	}
}

func TestAssTime_Format(t *testing.T) {
	got := assTime(61*time.Second + 234*time.Millisecond)
	if got != "0:01:01.23" {
		t.Fatalf("unexpected assTime: %s", got)
	}
}
