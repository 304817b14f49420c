package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything the pipeline and server need. Values come from the
// YAML file, then environment variables override the source location so
// deployments can point at a different video without editing the file.
type Config struct {
	// Source video
	SourceURL  string `yaml:"source_url"`
	SourcePath string `yaml:"source_path"`

	// Directories
	PublicDir string `yaml:"public_dir"`
	OutDir    string `yaml:"out_dir"`
	ClipsDir  string `yaml:"clips_dir"`

	// Caption engine
	FPS              int     `yaml:"fps"`
	GroupThresholdMs float64 `yaml:"group_threshold_ms"`
	MaxPageDuration  float64 `yaml:"max_page_duration"`

	// Clip selection, seconds
	MinClipSec int `yaml:"min_clip_sec"`
	MaxClipSec int `yaml:"max_clip_sec"`

	// Server
	ListenAddr string `yaml:"listen_addr"`

	// Tool paths
	FFmpegPath   string `yaml:"ffmpeg_path"`
	FFprobePath  string `yaml:"ffprobe_path"`
	WhisperBin   string `yaml:"whisper_bin"`
	WhisperModel string `yaml:"whisper_model"`
}

func Default() *Config {
	return &Config{
		SourcePath:       "video.mp4",
		PublicDir:        "public",
		OutDir:           "out",
		ClipsDir:         "generated_clips",
		FPS:              30,
		GroupThresholdMs: 1200,
		MaxPageDuration:  1200,
		MinClipSec:       30,
		MaxClipSec:       60,
		ListenAddr:       ":7930",
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		WhisperBin:       ".cache/bin/whisper.cpp",
		WhisperModel:     ".cache/models/ggml-base.bin",
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// not an error: defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// keep defaults
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CLIPCAP_SOURCE_URL"); v != "" {
		c.SourceURL = v
	}
	if v := os.Getenv("CLIPCAP_SOURCE_PATH"); v != "" {
		c.SourcePath = v
	}
	if v := os.Getenv("CLIPCAP_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("CLIPCAP_FPS"); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLIPCAP_FPS=%q is not an integer: %w", v, err)
		}
		c.FPS = fps
	}
	return nil
}

func (c *Config) Validate() error {
	if c.SourcePath == "" {
		return errors.New("source_path is empty")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be > 0, got %d", c.FPS)
	}
	if c.MaxPageDuration <= 0 {
		return fmt.Errorf("max_page_duration must be > 0, got %v", c.MaxPageDuration)
	}
	if c.GroupThresholdMs < 0 {
		return fmt.Errorf("group_threshold_ms must be >= 0, got %v", c.GroupThresholdMs)
	}
	if c.MinClipSec <= 0 || c.MaxClipSec < c.MinClipSec {
		return fmt.Errorf("clip bounds invalid: min=%d max=%d", c.MinClipSec, c.MaxClipSec)
	}
	return nil
}
