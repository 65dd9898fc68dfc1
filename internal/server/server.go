// Package server serves the rendered site on a loopback port so the browser
// can resolve stylesheets, scripts and images while printing.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alnah/go-docs2pdf/internal/fileutil"
)

// Sentinel errors.
var (
	ErrBuildDirNotFound = errors.New("build directory not found")
	ErrInvalidMount     = errors.New("invalid extra path")
)

// DefaultStartTimeout bounds binding the listener.
const DefaultStartTimeout = 10 * time.Second

// Mount serves LocalPath under ServerPath in addition to the build directory.
type Mount struct {
	ServerPath string
	LocalPath  string
}

// Config describes what the origin serves.
type Config struct {
	BuildDir     string
	BaseURL      string // site base path, "/" when empty
	Mounts       []Mount
	StartTimeout time.Duration
	Logger       *slog.Logger
}

// Server is a running origin.
type Server struct {
	http    *http.Server
	origin  string
	baseURL string
	done    chan error
}

// NewHandler builds the router for cfg without listening.
func NewHandler(cfg Config) (http.Handler, error) {
	if !fileutil.DirExists(cfg.BuildDir) {
		return nil, fmt.Errorf("%w: %s", ErrBuildDirNotFound, cfg.BuildDir)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	for _, m := range cfg.Mounts {
		prefix := "/" + strings.Trim(m.ServerPath, "/")
		if prefix == "/" {
			return nil, fmt.Errorf("%w: server path %q", ErrInvalidMount, m.ServerPath)
		}
		if !fileutil.DirExists(m.LocalPath) {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidMount, m.LocalPath)
		}
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(m.LocalPath))))
	}

	base := normalizeBase(cfg.BaseURL)
	site := http.FileServer(http.Dir(cfg.BuildDir))
	if base == "/" {
		r.Handle("/*", site)
	} else {
		r.Handle(base+"*", http.StripPrefix(strings.TrimSuffix(base, "/"), site))
	}
	return r, nil
}

// Start listens on an ephemeral loopback port and serves in the background.
func Start(ctx context.Context, cfg Config) (*Server, error) {
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.StartTimeout
	if timeout <= 0 {
		timeout = DefaultStartTimeout
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lc net.ListenConfig
	ln, err := lc.Listen(lctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listening: %w", err)
	}

	s := &Server{
		http: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		origin:  "http://" + ln.Addr().String(),
		baseURL: normalizeBase(cfg.BaseURL),
		done:    make(chan error, 1),
	}
	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return s, nil
}

// Origin is the scheme and host the server answers on.
func (s *Server) Origin() string {
	return s.origin
}

// SiteAddress is the origin plus the site base path.
func (s *Server) SiteAddress() string {
	return s.origin + s.baseURL
}

// Shutdown stops the server and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down origin: %w", err)
	}
	return <-s.done
}

func normalizeBase(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
