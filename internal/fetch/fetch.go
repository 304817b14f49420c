// Package fetch downloads the shared source video over HTTP. Downloads
// stream to a temp file in the destination directory and rename into place,
// so a crashed or cancelled run never leaves a half-written video behind.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const DefaultTimeout = 5 * time.Minute

var ErrStatus = errors.New("unexpected HTTP status")

// DownloadFile fetches rawURL into dst and returns the number of bytes
// written. timeout <= 0 falls back to DefaultTimeout.
func DownloadFile(ctx context.Context, rawURL, dst string, timeout time.Duration) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return 0, fmt.Errorf("fetch: invalid url %q: %w", rawURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch: new request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch %s: %w: %s", rawURL, ErrStatus, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("fetch: temp file: %w", err)
	}
	tmpName := tmp.Name()
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("fetch: write %s: %w", dst, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("fetch: finalize %s: %w", dst, err)
	}
	return n, nil
}
