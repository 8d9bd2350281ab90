package httpServer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/portfolio_analyzer/config"
	"github.com/KotFed0t/portfolio_analyzer/internal/transport/rest"
	customMW "github.com/KotFed0t/portfolio_analyzer/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type HTTPServer struct {
	router *chi.Mux
	server *http.Server
	ctrl   *rest.Controller
	cfg    *config.Config
}

func New(cfg *config.Config, ctrl *rest.Controller) *HTTPServer {
	s := &HTTPServer{
		router: chi.NewRouter(),
		ctrl:   ctrl,
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped with error", slog.String("err", err.Error()))
			panic(err)
		}
	}()
	slog.Info("http server started!", slog.String("addr", s.cfg.HTTP.Addr))
}

func (s *HTTPServer) Stop() {
	slog.Info("start stopping http server")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}
	slog.Info("http server stopped")
}

func (s *HTTPServer) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)
	s.router.Use(customMW.Logger())
	s.router.Use(middleware.Timeout(s.cfg.HTTP.RequestTimeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", customMW.RequestIDHeader},
		ExposedHeaders: []string{customMW.RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	}))
}

func (s *HTTPServer) setupRoutes() {
	s.router.Get("/health", s.ctrl.Health)
	s.router.Get("/symbols", s.ctrl.Symbols)

	s.router.Post("/analyze", s.ctrl.Analyze)
	s.router.Post("/analyze/report", s.ctrl.AnalyzeReport)
}
