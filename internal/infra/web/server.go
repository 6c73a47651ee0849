package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"manim-studio/internal/config"
	"manim-studio/internal/infra/storage"
	"manim-studio/internal/usecase"
)

// Server wires the HTTP surface: the public generation API, static video
// serving, the admin endpoints, and the metrics handler.
type Server struct {
	generationUC usecase.GenerationUseCase
	exampleUC    usecase.ExampleUseCase
	store        *storage.FileStore
	auth         *AuthManager
	retention    time.Duration
	corsOrigins  []string
	log          *zerolog.Logger

	httpServer *http.Server
}

func NewServer(
	cfg *config.Config,
	generationUC usecase.GenerationUseCase,
	exampleUC usecase.ExampleUseCase,
	store *storage.FileStore,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		generationUC: generationUC,
		exampleUC:    exampleUC,
		store:        store,
		auth:         auth,
		retention:    time.Duration(cfg.Render.RetentionHours) * time.Hour,
		corsOrigins:  cfg.Server.CORSOrigins,
		log:          logger,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the chi router; exposed separately so tests can drive it
// through httptest without binding a port.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(corsMiddleware(s.corsOrigins))
	r.Use(requestLogger(s.log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/generate", s.handleGenerate)
		r.Post("/render", s.handleRender)
		r.Get("/examples", s.handleExamples)
		r.Route("/job/{id}", func(r chi.Router) {
			r.Get("/status", s.handleJobStatus)
			r.Delete("/", s.handleJobDelete)
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/login", s.handleAdminLogin)
		r.Post("/logout", s.handleAdminLogout)
		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Post("/cleanup", s.handleAdminCleanup)
			r.Get("/stats", s.handleAdminStats)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	// Video serving: fresh renders and pre-rendered samples.
	fileServer(r, "/output", http.Dir(s.store.OutputDir()))
	fileServer(r, "/static", http.Dir(s.store.MediaDir()))

	return r
}

func fileServer(r chi.Router, prefix string, root http.FileSystem) {
	fs := http.StripPrefix(prefix, http.FileServer(root))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
