package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tavm/clipcap/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

// Transcribe runs whisper.cpp against the wav file and flattens the result
// into word-level captions with millisecond timestamps. Segments that carry
// no word timings degrade to one caption per segment.
func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) ([]types.Caption, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
		"-owts",
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, err
	}

	var tr types.Transcript
	if err := json.Unmarshal(jb, &tr); err != nil {
		return nil, err
	}
	return FlattenTranscript(tr), nil
}

// FlattenTranscript converts a whisper transcript (seconds, nested words)
// into the flat millisecond caption sequence the grouping engine consumes.
func FlattenTranscript(tr types.Transcript) []types.Caption {
	var out []types.Caption
	for _, s := range tr.Segments {
		if len(s.Words) == 0 {
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			out = append(out, types.Caption{Text: text, StartMs: s.Start * 1000, EndMs: s.End * 1000})
			continue
		}
		for _, w := range s.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" || w.End <= w.Start {
				continue
			}
			out = append(out, types.Caption{Text: text, StartMs: w.Start * 1000, EndMs: w.End * 1000})
		}
	}
	return out
}
