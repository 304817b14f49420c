package ports

import (
	"context"
	"time"

	"github.com/tavm/clipcap/internal/types"
)

type VideoTool interface {
	ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error)
	ProbeFPS(ctx context.Context, inMP4 string) (int, error)
	CutVertical(ctx context.Context, inMP4 string, start, duration time.Duration, outMP4 string) error
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	BurnSubtitles(ctx context.Context, inMP4, assPath, outMP4 string) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) ([]types.Caption, error)
}
