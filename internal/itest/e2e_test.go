//go:build integration

package itest

import (
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/tavm/clipcap/internal/domain/captions"
	"github.com/tavm/clipcap/internal/domain/subtitles"
	"github.com/tavm/clipcap/internal/domain/timeline"
	"github.com/tavm/clipcap/internal/ports/adapters/ffmpeg"
	"github.com/tavm/clipcap/internal/types"
)

func requireTools(t *testing.T) {
	t.Helper()
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not installed", tool)
		}
	}
}

func TestFFmpegAdapter_ProbeCutBurn(t *testing.T) {
	requireTools(t)

	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.mp4")
	if err := makeTestVideo(src, 20); err != nil {
		t.Fatalf("make test video: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	a := ffmpeg.New("", "")

	dur, err := a.ProbeDuration(ctx, src)
	if err != nil {
		t.Fatalf("probe duration: %v", err)
	}
	if math.Abs(dur.Seconds()-20) > 1 {
		t.Fatalf("unexpected duration: %v", dur)
	}

	fps, err := a.ProbeFPS(ctx, src)
	if err != nil {
		t.Fatalf("probe fps: %v", err)
	}
	if fps != 30 {
		t.Fatalf("expected 30 fps, got %d", fps)
	}

	clip := filepath.Join(tmp, "clip.mp4")
	if err := a.CutVertical(ctx, src, 2*time.Second, 5*time.Second, clip); err != nil {
		t.Fatalf("cut: %v", err)
	}
	clipSec, err := probeDurationSeconds(clip)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(clipSec-5) > 1 {
		t.Fatalf("unexpected clip duration: %v", clipSec)
	}

	caps := []types.Caption{
		{Text: "one", StartMs: 0, EndMs: 400},
		{Text: "two", StartMs: 500, EndMs: 900},
		{Text: "three", StartMs: 2000, EndMs: 2500},
	}
	pages := captions.GroupPages(caps, 1200)
	intervals := timeline.MapToFrames(pages, fps, timeline.DefaultMaxPageDurationMs)
	ass := subtitles.RenderPagesASS(pages, intervals, fps)
	assPath := filepath.Join(tmp, "captions.ass")
	if err := os.WriteFile(assPath, []byte(ass), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(tmp, "rendered.mp4")
	if err := a.BurnSubtitles(ctx, clip, assPath, out); err != nil {
		t.Fatalf("burn: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		t.Fatalf("rendered output missing or empty: %v", err)
	}
}
