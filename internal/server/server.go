// Package server exposes saved tools over HTTP: the inter-process
// invocation envelope, draft validation, tool CRUD and an optional
// websocket feed of per-phase resolution events for debug overlays.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/actions"
	"github.com/xkilldash9x/beacon-cli/internal/config"
	"github.com/xkilldash9x/beacon-cli/internal/resolver"
	"github.com/xkilldash9x/beacon-cli/internal/runner"
	"github.com/xkilldash9x/beacon-cli/internal/validator"
)

// ToolStore is the persistence surface the server needs. The pgx-backed
// store satisfies it; tests use an in-memory substitute.
type ToolStore interface {
	Get(ctx context.Context, name string) (*schemas.ToolRecord, error)
	List(ctx context.Context) ([]*schemas.ToolRecord, error)
	Save(ctx context.Context, tool *schemas.ToolRecord) error
	Delete(ctx context.Context, name string) error
}

// Server hosts the invocation service.
type Server struct {
	cfg       config.ServerConfig
	engineCfg config.EngineConfig
	log       *zap.Logger
	store     ToolStore
	exec      actions.Executor
	validator *validator.Validator
	hub       *debugHub

	httpServer *http.Server
}

// New wires a server. A nil executor falls back to the static one, which
// supports extract-only invocation against posted documents.
func New(cfg config.ServerConfig, engineCfg config.EngineConfig, store ToolStore, exec actions.Executor, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if exec == nil {
		exec = actions.NewStaticExecutor()
	}
	s := &Server{
		cfg:       cfg,
		engineCfg: engineCfg,
		log:       log.Named("server"),
		store:     store,
		exec:      exec,
		validator: validator.New(log),
		hub:       newDebugHub(log),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/tools", s.handleListTools)
		r.Post("/tools", s.handleSaveTool)
		r.Delete("/tools/{name}", s.handleDeleteTool)
		r.Post("/tools/{name}/invoke", s.handleInvoke)
		r.Post("/validate", s.handleValidate)
		r.Get("/debug/events", s.hub.handleWS)
	})
	return r
}

// Start serves until the context is canceled, then drains connections
// within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Invocation service listening", zap.String("addr", s.cfg.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.hub.run(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newRunner builds a per-request runner. Debug requests get a traced,
// paced resolver whose phase events feed the websocket hub.
func (s *Server) newRunner(debug bool) *runner.Runner {
	opts := []resolver.Option{resolver.WithLogger(s.log)}
	if debug {
		opts = append(opts, resolver.WithTrace(s.hub.broadcast))
		if s.engineCfg.DebugPacing && s.engineCfg.DebugPacingInterval > 0 {
			opts = append(opts, resolver.WithPacing(rate.NewLimiter(rate.Every(s.engineCfg.DebugPacingInterval), 1)))
		}
	}
	return runner.New(resolver.New(opts...), s.exec, s.log)
}
