//go:build integration

package itest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// repoRoot walks up from the working directory to the module root.
func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod found above %s", dir)
		}
		dir = parent
	}
}

func buildCLI(t *testing.T) string {
	t.Helper()
	root, err := repoRoot()
	if err != nil {
		t.Fatal(err)
	}
	bin := filepath.Join(t.TempDir(), "clipcap")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/clipcap")
	cmd.Dir = root
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build: %v\n%s", err, string(b))
	}
	return bin
}

func TestCLI_RenderMissingInputFails(t *testing.T) {
	bin := buildCLI(t)
	cmd := exec.Command(bin, "render", filepath.Join(t.TempDir(), "missing.mp4"),
		"--config", filepath.Join(t.TempDir(), "none.yaml"))
	cmd.Dir = t.TempDir()
	b, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected failure for missing input, output:\n%s", string(b))
	}
}

func TestCLI_ClipsOnEmptyWorkspace(t *testing.T) {
	bin := buildCLI(t)
	cmd := exec.Command(bin, "clips", "--config", "none.yaml")
	cmd.Dir = t.TempDir()
	b, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("clips should succeed on empty workspace: %v\n%s", err, string(b))
	}
	if !strings.Contains(string(b), "no clips generated yet") {
		t.Fatalf("unexpected output:\n%s", string(b))
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	bin := buildCLI(t)
	cmd := exec.Command(bin, "definitely-not-a-command")
	if b, err := cmd.CombinedOutput(); err == nil {
		t.Fatalf("expected failure, output:\n%s", string(b))
	}
}
