package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/tavm/clipcap/internal/config"
)

func newClipsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clips",
		Short: "List generated clip sessions",
		Args:  cobra.NoArgs,
		RunE:  runClips,
	}
}

func runClips(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	entries, err := os.ReadDir(cfg.ClipsDir)
	if os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "no clips generated yet")
		return nil
	}
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"SESSION", "CLIPS", "SIZE (MB)"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	sessions := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(cfg.ClipsDir, e.Name()))
		if err != nil {
			return err
		}
		var clips int
		var bytes int64
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".mp4") {
				continue
			}
			clips++
			if info, err := f.Info(); err == nil {
				bytes += info.Size()
			}
		}
		tw.AppendRow(table.Row{e.Name(), clips, fmt.Sprintf("%.2f", float64(bytes)/(1024*1024))})
		sessions++
	}

	if sessions == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no clips generated yet")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
	return nil
}
