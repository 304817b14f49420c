package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tavm/clipcap/internal/config"
	"github.com/tavm/clipcap/internal/pipeline"
	"github.com/tavm/clipcap/internal/ports/adapters/ffmpeg"
	"github.com/tavm/clipcap/internal/server"
	"github.com/tavm/clipcap/internal/types"
	"github.com/tavm/clipcap/internal/watch"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clip generation HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("listen", "", "Listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	listen, _ := cmd.Flags().GetString("listen")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if listen != "" {
		cfg.ListenAddr = listen
	}

	pcfg := pipeline.FromConfig(cfg)
	pcfg.Logf = logf
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Re-render whenever the published caption file is rewritten, so edits to
	// the captions show up in out/CaptionedVideo.mp4 without a new clip cut.
	capsPath := filepath.Join(cfg.PublicDir, "sample-video.json")
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	w := watch.New(capsPath, 2*time.Second, func(ctx context.Context) {
		if err := pipeline.Recaption(ctx, pcfg, v); err != nil {
			logf("recaption failed: %v", err)
		}
	})

	// A generate publishes its own captions and render; pausing the watcher
	// around the run keeps that publish from echoing back as a recaption, and
	// waits out any recaption still writing out/CaptionedVideo.mp4 before the
	// run overwrites it.
	generate := func(ctx context.Context) (types.Manifest, error) {
		w.Pause()
		defer w.Resume()
		return pipeline.Run(ctx, pcfg)
	}
	srv := server.New(cfg, generate, logf)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	return srv.ListenAndServe(ctx)
}
