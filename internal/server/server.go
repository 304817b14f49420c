package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tavm/clipcap/internal/config"
	"github.com/tavm/clipcap/internal/types"
)

// GenerateFunc runs one full clip generation cycle.
type GenerateFunc func(ctx context.Context) (types.Manifest, error)

type Server struct {
	cfg      *config.Config
	generate GenerateFunc
	logf     func(format string, args ...any)

	// A render occupies ffmpeg and whisper; one at a time.
	genMu sync.Mutex
}

func New(cfg *config.Config, generate GenerateFunc, logf func(string, ...any)) *Server {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Server{cfg: cfg, generate: generate, logf: logf}
}

// staticDirs is the allowlist of directories exposed over HTTP, keyed by the
// URL segment they are served under.
func (s *Server) staticDirs() map[string]string {
	return map[string]string{
		"out":    s.cfg.OutDir,
		"public": s.cfg.PublicDir,
		"assets": "assets",
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/generate-clip", s.handleGenerateClip)
	mux.HandleFunc("/clips", s.handleClips)
	mux.HandleFunc("/clips/", s.handleClipDownload)
	mux.HandleFunc("/directories", s.handleDirectories)
	mux.HandleFunc("/files/", s.handleFiles)
	for name, dir := range s.staticDirs() {
		prefix := "/" + name + "/"
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(dir))))
	}
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.ListenAddr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logf("listening on %s", s.cfg.ListenAddr)
	select {
	case <-ctx.Done():
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "captioned clip generation server",
		"endpoints": map[string]string{
			"POST /generate-clip":         "generate and caption a random clip",
			"GET /clips":                  "list generated sessions",
			"DELETE /clips":               "remove all generated sessions",
			"GET /clips/{session}/{file}": "download a session artifact",
			"GET /directories":            "list servable directories",
			"GET /files/{dir}":            "list files in a servable directory",
			"GET /health":                 "server and tool status",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, ffmpegErr := exec.LookPath(s.cfg.FFmpegPath)
	_, ffprobeErr := exec.LookPath(s.cfg.FFprobePath)
	_, clipsDirErr := os.Stat(s.cfg.ClipsDir)
	writeJSON(w, http.StatusOK, map[string]any{
		"server":            "running",
		"ffmpeg_available":  ffmpegErr == nil,
		"ffprobe_available": ffprobeErr == nil,
		"clips_directory":   s.cfg.ClipsDir,
		"clips_dir_exists":  clipsDirErr == nil,
	})
}

func (s *Server) handleGenerateClip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.genMu.Lock()
	defer s.genMu.Unlock()

	s.logf("generate-clip requested")
	m, err := s.generate(r.Context())
	if err != nil {
		s.logf("generate failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": m.SessionID,
		"clip":       m.Clip,
	})
}

func (s *Server) handleClips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := listSessions(s.cfg.ClipsDir)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sessions":       sessions,
			"total_sessions": len(sessions),
		})
	case http.MethodDelete:
		if err := os.RemoveAll(s.cfg.ClipsDir); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		if err := os.MkdirAll(s.cfg.ClipsDir, 0o755); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "all clips removed"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleClipDownload(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/clips/")
	target, err := safeJoin(s.cfg.ClipsDir, rel)
	if err != nil {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "unsafe path"})
		return
	}
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "file not found"})
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(target)))
	http.ServeFile(w, r, target)
}

type directoryInfo struct {
	Name      string `json:"name"`
	Exists    bool   `json:"exists"`
	FileCount int    `json:"file_count"`
	DirCount  int    `json:"dir_count"`
	ListURL   string `json:"list_url"`
	StaticURL string `json:"static_url"`
}

func (s *Server) handleDirectories(w http.ResponseWriter, r *http.Request) {
	dirs := s.staticDirs()
	names := make([]string, 0, len(dirs))
	for name := range dirs {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]directoryInfo, 0, len(names))
	for _, name := range names {
		di := directoryInfo{
			Name:      name,
			ListURL:   "/files/" + name,
			StaticURL: "/" + name + "/",
		}
		if entries, err := os.ReadDir(dirs[name]); err == nil {
			di.Exists = true
			for _, e := range entries {
				if e.IsDir() {
					di.DirCount++
				} else {
					di.FileCount++
				}
			}
		}
		infos = append(infos, di)
	}
	writeJSON(w, http.StatusOK, map[string]any{"directories": infos})
}

type fileEntry struct {
	Name        string  `json:"name"`
	Type        string  `json:"type,omitempty"`
	SizeBytes   int64   `json:"size_bytes,omitempty"`
	SizeMB      float64 `json:"size_mb,omitempty"`
	DownloadURL string  `json:"download_url,omitempty"`
	ListURL     string  `json:"list_url,omitempty"`
}

// handleFiles lists an allowlisted directory, or serves a file inside one.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	rel := strings.Trim(strings.TrimPrefix(r.URL.Path, "/files/"), "/")
	if rel == "" {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "missing directory"})
		return
	}
	name, rest, _ := strings.Cut(rel, "/")
	base, ok := s.staticDirs()[name]
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": fmt.Sprintf("directory %q not allowed", name)})
		return
	}
	target := base
	if rest != "" {
		var err error
		target, err = safeJoin(base, rest)
		if err != nil {
			writeJSON(w, http.StatusForbidden, map[string]any{"error": "unsafe path"})
			return
		}
	}
	info, err := os.Stat(target)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("path %q does not exist", rel)})
		return
	}
	if !info.IsDir() {
		http.ServeFile(w, r, target)
		return
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	files := make([]fileEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			files = append(files, fileEntry{
				Name:    e.Name(),
				Type:    "directory",
				ListURL: path.Join("/files", name, rest, e.Name()),
			})
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileEntry{
			Name:        e.Name(),
			SizeBytes:   fi.Size(),
			SizeMB:      float64(fi.Size()) / (1024 * 1024),
			DownloadURL: path.Join("/", name, rest, e.Name()),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"directory": rel,
		"files":     files,
		"count":     len(files),
	})
}

type sessionInfo struct {
	SessionID string     `json:"session_id"`
	Clips     []clipFile `json:"clips"`
}

type clipFile struct {
	Filename    string  `json:"filename"`
	SizeMB      float64 `json:"size_mb"`
	DownloadURL string  `json:"download_url"`
}

func listSessions(clipsDir string) ([]sessionInfo, error) {
	entries, err := os.ReadDir(clipsDir)
	if errors.Is(err, os.ErrNotExist) {
		return []sessionInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	sessions := make([]sessionInfo, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		si := sessionInfo{SessionID: e.Name(), Clips: []clipFile{}}
		files, err := os.ReadDir(filepath.Join(clipsDir, e.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".mp4") {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			si.Clips = append(si.Clips, clipFile{
				Filename:    f.Name(),
				SizeMB:      float64(info.Size()) / (1024 * 1024),
				DownloadURL: "/clips/" + e.Name() + "/" + f.Name(),
			})
		}
		sessions = append(sessions, si)
	}
	return sessions, nil
}

// safeJoin resolves rel under base and rejects anything that escapes it.
func safeJoin(base, rel string) (string, error) {
	if rel == "" {
		return "", errors.New("empty path")
	}
	joined := filepath.Join(base, filepath.FromSlash(rel))
	r, err := filepath.Rel(base, joined)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", errors.New("path escapes base directory")
	}
	return joined, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
