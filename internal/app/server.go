package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"bookcontents/internal/catalog"
	"bookcontents/internal/toc"
)

// Server serves the rendered table of contents for every catalog edition.
type Server struct {
	cfg      Config
	log      *zap.Logger
	source   catalog.Source
	renderer *toc.Renderer
	router   chi.Router
	current  atomic.Pointer[published]
	reloads  singleflight.Group
}

// published is one fully rendered catalog. It is never modified after
// being stored.
type published struct {
	snapshot *catalog.Snapshot
	pages    map[string][]byte
	loadedAt time.Time
}

// NewServer loads and renders the catalog from src. An invalid catalog is
// an error; nothing is served from it.
func NewServer(ctx context.Context, src catalog.Source, cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	renderer, err := toc.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		source:   src,
		renderer: renderer,
		router:   chi.NewRouter(),
	}

	p, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.current.Store(p)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(requestLogger(log))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.GetHead)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/editions", s.handleEditions)
	s.router.Get("/contents", s.handleDefault)
	s.router.Get("/contents.json", s.handleDefaultJSON)
	s.router.Get("/contents/{edition}", s.handleEdition)

	return s, nil
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Reload replaces the served catalog with a fresh load from the source.
// Concurrent calls share one load. On failure the previous catalog stays.
func (s *Server) Reload(ctx context.Context) error {
	_, err, _ := s.reloads.Do("reload", func() (interface{}, error) {
		p, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(p)
		s.log.Info("catalog reloaded", zap.Strings("editions", p.snapshot.Names()))
		return nil, nil
	})
	return err
}

func (s *Server) load(ctx context.Context) (*published, error) {
	c, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.source, err)
	}
	snap, err := c.WithBasePath(s.cfg.BasePath).Compile()
	if err != nil {
		return nil, fmt.Errorf("invalid catalog from %s: %w", s.source, err)
	}

	p := &published{
		snapshot: snap,
		pages:    make(map[string][]byte, len(snap.Names())),
		loadedAt: time.Now().UTC(),
	}
	for _, name := range snap.Names() {
		contents, _ := snap.Edition(name)
		html, err := s.renderer.RenderString(contents)
		if err != nil {
			return nil, fmt.Errorf("edition %q: %w", name, err)
		}
		p.pages[name] = []byte(html)
		s.log.Debug("rendered edition", zap.String("edition", name), zap.Int("links", contents.Len()))
	}
	return p, nil
}

// Run serves until ctx is cancelled, reloading the catalog whenever hup
// delivers a signal.
func (s *Server) Run(ctx context.Context, hup <-chan os.Signal) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", srv.Addr), zap.Stringer("catalog", s.source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("graceful shutdown failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := s.Reload(gctx); err != nil {
					s.log.Error("reload catalog", zap.Error(err))
				}
			}
		}
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleEditions(w http.ResponseWriter, r *http.Request) {
	p := s.current.Load()
	writeJSON(w, s.log, struct {
		Default  string    `json:"default"`
		Editions []string  `json:"editions"`
		LoadedAt time.Time `json:"loaded_at"`
	}{
		Default:  p.snapshot.DefaultName(),
		Editions: p.snapshot.Names(),
		LoadedAt: p.loadedAt,
	})
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	p := s.current.Load()
	s.writeFragment(w, p, p.snapshot.DefaultName())
}

func (s *Server) handleDefaultJSON(w http.ResponseWriter, r *http.Request) {
	p := s.current.Load()
	s.writeLinks(w, p, p.snapshot.DefaultName())
}

func (s *Server) handleEdition(w http.ResponseWriter, r *http.Request) {
	p := s.current.Load()
	name := chi.URLParam(r, "edition")
	if base, ok := strings.CutSuffix(name, ".json"); ok {
		if _, found := p.snapshot.Edition(base); !found {
			http.NotFound(w, r)
			return
		}
		s.writeLinks(w, p, base)
		return
	}
	if _, found := p.snapshot.Edition(name); !found {
		http.NotFound(w, r)
		return
	}
	s.writeFragment(w, p, name)
}

func (s *Server) writeFragment(w http.ResponseWriter, p *published, edition string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(p.pages[edition]); err != nil {
		s.log.Debug("write fragment", zap.String("edition", edition), zap.Error(err))
	}
}

func (s *Server) writeLinks(w http.ResponseWriter, p *published, edition string) {
	contents, _ := p.snapshot.Edition(edition)
	writeJSON(w, s.log, struct {
		Edition  string     `json:"edition"`
		Title    string     `json:"title"`
		BasePath string     `json:"base_path"`
		Links    []toc.Link `json:"links"`
	}{
		Edition:  edition,
		Title:    contents.Title(),
		BasePath: contents.BasePath(),
		Links:    contents.Links(),
	})
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("write json", zap.Error(err))
	}
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info("request completed",
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
