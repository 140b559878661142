// Package preview serves a built site locally and rebuilds it whenever the
// content directory changes.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tahongtrung/phenomic/internal/build"
	"github.com/tahongtrung/phenomic/internal/config"
)

// debounceDelay coalesces bursts of filesystem events into one rebuild.
const debounceDelay = 300 * time.Millisecond

// BuildFunc runs one full build and returns its report.
type BuildFunc func(ctx context.Context) (*build.Report, error)

// status tracks the outcome of the most recent build for the health endpoint.
type status struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
}

func (s *status) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

func (s *status) setSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = nil
	s.hasGoodBuild = true
}

func (s *status) snapshot() (err error, hasGoodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError, s.hasGoodBuild
}

// Run builds the site once, serves the output directory on the given port,
// and rebuilds on every change under the content directory until ctx is
// canceled.
func Run(ctx context.Context, cfg *config.Config, buildFn BuildFunc, port int) error {
	contentDir, err := filepath.Abs(cfg.ContentDir())
	if err != nil {
		return fmt.Errorf("resolve content dir: %w", err)
	}
	if st, statErr := os.Stat(contentDir); statErr != nil || !st.IsDir() {
		return fmt.Errorf("content dir not found or not a directory: %s", contentDir)
	}

	stat := &status{}
	runBuild(ctx, buildFn, stat)

	srv, err := startSiteServer(ctx, cfg.OutdirPath(), stat, port)
	if err != nil {
		return err
	}

	watcher, err := newContentWatcher(contentDir)
	if err != nil {
		_ = srv.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()

	rebuildReq, trigger := newDebouncer(debounceDelay)
	startRebuildWorker(ctx, buildFn, stat, rebuildReq)

	return watchLoop(ctx, watcher, trigger, srv)
}

func runBuild(ctx context.Context, buildFn BuildFunc, stat *status) {
	if _, err := buildFn(ctx); err != nil {
		slog.Error("build failed", "error", err)
		stat.setError(err)
		return
	}
	stat.setSuccess()
}

// startSiteServer serves the output directory plus a /healthz endpoint that
// reports the latest build outcome.
func startSiteServer(ctx context.Context, outdir string, stat *status, port int) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(outdir)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		lastErr, good := stat.snapshot()
		if lastErr != nil && !good {
			http.Error(w, fmt.Sprintf("build failed: %v", lastErr), http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("preview server stopped", "error", serveErr)
		}
	}()
	slog.Info("preview server listening", "url", fmt.Sprintf("http://%s", ln.Addr()))
	return srv, nil
}

func newContentWatcher(root string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, root); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// newDebouncer returns a rebuild request channel plus a trigger that delays
// and coalesces requests.
func newDebouncer(delay time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// startRebuildWorker serializes rebuilds. A request arriving while a build is
// running marks it pending and reruns once the current build finishes.
func startRebuildWorker(ctx context.Context, buildFn BuildFunc, stat *status, rebuildReq chan struct{}) {
	var mu sync.Mutex
	running := false
	pending := false

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-rebuildReq:
				if !ok {
					return
				}
				mu.Lock()
				if running {
					pending = true
					mu.Unlock()
					continue
				}
				running = true
				mu.Unlock()

				slog.Info("change detected, rebuilding")
				runBuild(ctx, buildFn, stat)

				mu.Lock()
				running = false
				rerun := pending
				pending = false
				mu.Unlock()
				if rerun {
					select {
					case rebuildReq <- struct{}{}:
					default:
					}
				}
			}
		}
	}()
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func(), srv *http.Server) error {
	for {
		select {
		case <-ctx.Done():
			return shutdown(srv)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

func shutdown(srv *http.Server) error {
	slog.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("preview server shutdown error", "error", err)
	}
	return nil
}

func handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("file change detected", "path", ev.Name, "op", ev.Op.String())
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			if addErr := w.Add(path); addErr != nil {
				slog.Warn("watch add failed", "dir", path, "error", addErr)
			}
		}
		return nil
	})
}

// shouldIgnoreEvent filters hidden files and editor temp/swap files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	if base == "Thumbs.db" {
		return true
	}
	return false
}
