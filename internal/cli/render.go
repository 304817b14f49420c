package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tavm/clipcap/internal/config"
	"github.com/tavm/clipcap/internal/pipeline"
)

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [input]",
		Short: "Generate one captioned clip (from the shared source, or a given MP4)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runRender(cmd, input)
		},
	}

	cmd.Flags().String("out", "", "Output directory for the captioned render")

	// Hidden tuning flag (internal)
	cmd.Flags().Int64("seed", 0, "Fix the random clip window")
	_ = cmd.Flags().MarkHidden("seed")

	return cmd
}

func runRender(cmd *cobra.Command, input string) error {
	configPath, _ := cmd.Flags().GetString("config")
	outDir, _ := cmd.Flags().GetString("out")
	seed, _ := cmd.Flags().GetInt64("seed")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	pcfg := pipeline.FromConfig(cfg)
	pcfg.Seed = seed
	pcfg.Logf = logf
	if outDir != "" {
		pcfg.OutDir = outDir
	}
	if input != "" {
		abs, err := filepath.Abs(input)
		if err != nil {
			return err
		}
		pcfg.InputMP4 = abs
	}

	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Hour)
	defer cancel()

	m, err := pipeline.Run(ctx, pcfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rendered %s (%d pages) -> %s\n", m.SessionID, m.Clip.Pages, m.Clip.Rendered)
	return nil
}
