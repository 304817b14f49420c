package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/tavm/clipcap/internal/config"
	"github.com/tavm/clipcap/internal/domain/captions"
	"github.com/tavm/clipcap/internal/domain/subtitles"
	"github.com/tavm/clipcap/internal/domain/timeline"
	"github.com/tavm/clipcap/internal/fetch"
	"github.com/tavm/clipcap/internal/ports"
	"github.com/tavm/clipcap/internal/ports/adapters/ffmpeg"
	"github.com/tavm/clipcap/internal/ports/adapters/whispercpp"
	"github.com/tavm/clipcap/internal/types"
	"github.com/tavm/clipcap/internal/usecase"
)

type Config struct {
	// InputMP4 overrides the shared source video for one-shot runs.
	InputMP4 string

	SourceURL  string
	SourcePath string

	PublicDir string
	OutDir    string
	ClipsDir  string

	FPS              int
	GroupThresholdMs float64
	MaxPageDuration  float64

	MinClip time.Duration
	MaxClip time.Duration

	FFmpegPath  string
	FFprobePath string

	WhisperBin   string
	WhisperModel string

	Seed int64
	Logf func(format string, args ...any)
}

// FromConfig maps the loaded file/env configuration onto a run config.
func FromConfig(c *config.Config) Config {
	return Config{
		SourceURL:        c.SourceURL,
		SourcePath:       c.SourcePath,
		PublicDir:        c.PublicDir,
		OutDir:           c.OutDir,
		ClipsDir:         c.ClipsDir,
		FPS:              c.FPS,
		GroupThresholdMs: c.GroupThresholdMs,
		MaxPageDuration:  c.MaxPageDuration,
		MinClip:          time.Duration(c.MinClipSec) * time.Second,
		MaxClip:          time.Duration(c.MaxClipSec) * time.Second,
		FFmpegPath:       c.FFmpegPath,
		FFprobePath:      c.FFprobePath,
		WhisperBin:       c.WhisperBin,
		WhisperModel:     c.WhisperModel,
	}
}

func (c Config) Validate() error {
	if c.InputMP4 == "" && c.SourcePath == "" {
		return errors.New("no input and no source video configured")
	}
	if c.FPS < 0 {
		return fmt.Errorf("fps must be >= 0, got %d", c.FPS)
	}
	if c.MaxPageDuration <= 0 {
		return fmt.Errorf("max page duration must be > 0, got %v", c.MaxPageDuration)
	}
	if c.MinClip <= 0 || c.MaxClip < c.MinClip {
		return fmt.Errorf("clip bounds invalid: min=%v max=%v", c.MinClip, c.MaxClip)
	}
	if c.WhisperModel == "" {
		return errors.New("whisper model path is required")
	}
	return nil
}

// Run executes one generate cycle and returns the manifest of the finished
// clip. Final artifacts land in PublicDir (clip + captions) and OutDir
// (captioned render); intermediates stay in the session directory.
func Run(ctx context.Context, cfg Config) (types.Manifest, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	source := cfg.InputMP4
	if source == "" {
		source = cfg.SourcePath
		if err := ensureSource(ctx, cfg, logf); err != nil {
			return types.Manifest{}, err
		}
	}

	sessionID := newSessionID(time.Now().UTC())
	sessionDir := filepath.Join(cfg.ClipsDir, sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return types.Manifest{}, err
	}
	logf("session %s", sessionID)

	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	asr := whispercpp.New(cfg.WhisperBin, cfg.WhisperModel)
	uc := usecase.New(usecase.Deps{Video: v, ASR: asr})

	res, err := uc.Run(ctx, usecase.Input{
		SourceMP4:       source,
		SessionDir:      sessionDir,
		FPS:             cfg.FPS,
		ThresholdMs:     cfg.GroupThresholdMs,
		MaxPageDuration: cfg.MaxPageDuration,
		MinClip:         cfg.MinClip,
		MaxClip:         cfg.MaxClip,
		Seed:            cfg.Seed,
		Logf:            logf,
	})
	if err != nil {
		return types.Manifest{}, err
	}

	m := res.Manifest
	m.SessionID = sessionID

	if cfg.PublicDir != "" {
		if err := os.MkdirAll(cfg.PublicDir, 0o755); err != nil {
			return types.Manifest{}, err
		}
		clipDst := filepath.Join(cfg.PublicDir, "sample-video.mp4")
		capsDst := filepath.Join(cfg.PublicDir, "sample-video.json")
		if err := copyFile(res.ClipPath, clipDst); err != nil {
			return types.Manifest{}, err
		}
		if err := copyFile(res.CaptionsPath, capsDst); err != nil {
			return types.Manifest{}, err
		}
		m.Clip.File = filepath.ToSlash(clipDst)
		m.Clip.Captions = filepath.ToSlash(capsDst)
	}
	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return types.Manifest{}, err
		}
		renderDst := filepath.Join(cfg.OutDir, "CaptionedVideo.mp4")
		if err := copyFile(res.RenderedPath, renderDst); err != nil {
			return types.Manifest{}, err
		}
		m.Clip.Rendered = filepath.ToSlash(renderDst)
	}

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return types.Manifest{}, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(sessionDir, "manifest.json")
	if err := os.WriteFile(manifestPath, mb, 0o644); err != nil {
		return types.Manifest{}, err
	}
	logf("manifest written: %s", manifestPath)
	return m, nil
}

// Recaption rebuilds the captioned render from the published clip and its
// caption file, without cutting or transcribing anything. The serve loop
// calls this when the caption JSON changes on disk.
func Recaption(ctx context.Context, cfg Config, v ports.VideoTool) error {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	clipPath := filepath.Join(cfg.PublicDir, "sample-video.mp4")
	capsPath := filepath.Join(cfg.PublicDir, "sample-video.json")

	b, err := os.ReadFile(capsPath)
	if err != nil {
		return fmt.Errorf("read captions: %w", err)
	}
	var track types.CaptionTrack
	if err := json.Unmarshal(b, &track); err != nil {
		return fmt.Errorf("parse captions: %w", err)
	}

	fps := cfg.FPS
	if fps == 0 {
		fps, err = v.ProbeFPS(ctx, clipPath)
		if err != nil {
			return err
		}
	}

	pages := captions.GroupPages(track.Captions, cfg.GroupThresholdMs)
	intervals := timeline.MapToFrames(pages, fps, cfg.MaxPageDuration)
	logf("recaption: %d captions, %d pages, %d intervals", len(track.Captions), len(pages), len(intervals))

	assPath := filepath.Join(cfg.PublicDir, "sample-video.ass")
	ass := subtitles.RenderPagesASS(pages, intervals, fps)
	if err := os.WriteFile(assPath, []byte(ass), 0o644); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}
	return v.BurnSubtitles(ctx, clipPath, assPath, filepath.Join(cfg.OutDir, "CaptionedVideo.mp4"))
}

// ensureSource guarantees the shared source video exists, downloading it
// under a file lock so concurrent runs fetch it once.
func ensureSource(ctx context.Context, cfg Config, logf func(string, ...any)) error {
	if _, err := os.Stat(cfg.SourcePath); err == nil {
		return nil
	}
	if cfg.SourceURL == "" {
		return fmt.Errorf("source video %s missing and no source URL configured", cfg.SourcePath)
	}
	if dir := filepath.Dir(cfg.SourcePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	lock := flock.New(cfg.SourcePath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock source download: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	// Another run may have finished the download while we waited.
	if _, err := os.Stat(cfg.SourcePath); err == nil {
		return nil
	}

	logf("downloading source video from %s", cfg.SourceURL)
	n, err := fetch.DownloadFile(ctx, cfg.SourceURL, cfg.SourcePath, 0)
	if err != nil {
		return fmt.Errorf("download source video: %w", err)
	}
	logf("downloaded %.2f MB", float64(n)/(1024*1024))
	return nil
}

func newSessionID(now time.Time) string {
	return now.Format("20060102-150405") + "-" + uuid.NewString()[:8]
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
