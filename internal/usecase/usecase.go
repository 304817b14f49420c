package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/tavm/clipcap/internal/domain/captions"
	"github.com/tavm/clipcap/internal/domain/subtitles"
	"github.com/tavm/clipcap/internal/domain/timeline"
	"github.com/tavm/clipcap/internal/ports"
	"github.com/tavm/clipcap/internal/types"
)

type Deps struct {
	Video ports.VideoTool
	ASR   ports.Transcriber
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	SourceMP4  string
	SessionDir string

	// FPS of the output timeline; 0 probes the cut clip instead.
	FPS             int
	ThresholdMs     float64
	MaxPageDuration float64

	MinClip time.Duration
	MaxClip time.Duration

	// Seed fixes the random clip window; 0 seeds from the clock.
	Seed int64

	Logf func(format string, args ...any)
}

type Result struct {
	Manifest  types.Manifest
	Pages     []types.Page
	Intervals []types.PageInterval

	ClipPath     string
	CaptionsPath string
	ASSPath      string
	RenderedPath string
}

// Run cuts one random vertical clip out of the source, transcribes it,
// groups the captions into pages, maps the pages onto the frame timeline and
// burns them in.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	total, err := u.d.Video.ProbeDuration(ctx, in.SourceMP4)
	if err != nil {
		return Result{}, err
	}
	if total < in.MaxClip {
		return Result{}, fmt.Errorf("source video is %s, need at least %s", total.Round(time.Second), in.MaxClip)
	}

	seed := in.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	clipDur := in.MinClip
	if span := in.MaxClip - in.MinClip; span > 0 {
		clipDur += time.Duration(rng.Int63n(int64(span) + 1))
	}
	maxStart := total - clipDur
	if maxStart <= 0 {
		return Result{}, errors.New("source video too short for the requested clip duration")
	}
	start := time.Duration(rng.Int63n(int64(maxStart)))
	logf("cutting %s clip at %s", clipDur.Round(time.Second), start.Round(time.Second))

	clipPath := filepath.Join(in.SessionDir, "clip.mp4")
	if err := u.d.Video.CutVertical(ctx, in.SourceMP4, start, clipDur, clipPath); err != nil {
		return Result{}, err
	}

	fps := in.FPS
	if fps == 0 {
		fps, err = u.d.Video.ProbeFPS(ctx, clipPath)
		if err != nil {
			return Result{}, err
		}
		logf("probed fps: %d", fps)
	}

	wavPath := filepath.Join(in.SessionDir, "audio.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, clipPath, wavPath); err != nil {
		return Result{}, err
	}

	logf("transcribing")
	caps, err := u.d.ASR.Transcribe(ctx, wavPath, in.SessionDir)
	if err != nil {
		return Result{}, err
	}

	captionsPath := filepath.Join(in.SessionDir, "clip.json")
	cb, err := json.MarshalIndent(types.CaptionTrack{Captions: caps}, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal captions: %w", err)
	}
	if err := os.WriteFile(captionsPath, cb, 0o644); err != nil {
		return Result{}, err
	}

	pages := captions.GroupPages(caps, in.ThresholdMs)
	intervals := timeline.MapToFrames(pages, fps, in.MaxPageDuration)
	logf("grouped %d captions into %d pages, %d on-screen intervals", len(caps), len(pages), len(intervals))

	assPath := filepath.Join(in.SessionDir, "captions.ass")
	ass := subtitles.RenderPagesASS(pages, intervals, fps)
	if err := os.WriteFile(assPath, []byte(ass), 0o644); err != nil {
		return Result{}, err
	}

	renderedPath := filepath.Join(in.SessionDir, "rendered.mp4")
	if err := u.d.Video.BurnSubtitles(ctx, clipPath, assPath, renderedPath); err != nil {
		return Result{}, err
	}

	m := types.Manifest{
		Source: in.SourceMP4,
		Clip: types.ClipInfo{
			File:        filepath.ToSlash(clipPath),
			Captions:    filepath.ToSlash(captionsPath),
			Rendered:    filepath.ToSlash(renderedPath),
			StartSec:    start.Seconds(),
			DurationSec: clipDur.Seconds(),
			AspectRatio: "9:16",
			FPS:         fps,
			Pages:       len(pages),
		},
	}
	return Result{
		Manifest:     m,
		Pages:        pages,
		Intervals:    intervals,
		ClipPath:     clipPath,
		CaptionsPath: captionsPath,
		ASSPath:      assPath,
		RenderedPath: renderedPath,
	}, nil
}
