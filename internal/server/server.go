package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/api"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/config"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/languages"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/limiter"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/queue"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/runner"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/sandbox"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/sanitize"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/worker"
)

type Server struct {
	conf        *config.Config
	logger      *zerolog.Logger
	httpServer  *http.Server
	registry    *languages.Registry
	sandbox     sandbox.Sandbox
	dispatcher  *engine.Dispatcher
	queue       *queue.Manager
	workers     []*worker.Worker
	rateLimiter *limiter.RateLimiter
	cancelFunc  context.CancelFunc
}

func New(conf *config.Config, logger *zerolog.Logger) (*Server, error) {
	registry := languages.NewRegistry()

	sb, err := sandbox.NewDockerSandbox(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}

	stager, err := sandbox.NewStager(conf.Engine.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create stager: %w", err)
	}

	limits := runner.Limits{
		Timeout:     conf.Engine.Timeout(),
		MemoryBytes: conf.Engine.MemoryBytes,
		CPUQuota:    conf.Engine.CPUQuota,
	}

	dispatcher := engine.NewDispatcher(logger)
	dispatcher.Register(engine.LangScript, runner.NewScriptRunner(sb, stager, registry, limits, logger))
	dispatcher.Register(engine.LangServerSide, runner.NewServerSideRunner(sb, stager, registry, limits, logger))

	native := runner.NewNativeBackend("go", conf.Engine.NativeTimeout(), logger)
	dispatcher.Register(engine.LangCompiled, runner.NewCompiledRunner(
		native, conf.Engine.PreferNativeGo, sb, stager, registry, limits, logger))

	if conf.Engine.ScreeningEnabled {
		dispatcher.SetScreener(sanitize.NewScreener(conf.Engine.MaxCodeLength))
	}

	q := queue.NewManager(conf.Engine.QueueCapacity)

	// Rate limiter: 100 req/sec global, 10 req/sec per IP, 50 concurrent executions
	rl := limiter.NewRateLimiter(100, 10, 20, 50)

	// A queued job's budget has to cover queue wait plus the execution
	// deadline itself.
	handler := api.NewHandler(q, conf.Engine.Timeout()+30*time.Second)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/execute", rl.Middleware(handler.Execute))

	httpServer := &http.Server{
		Addr:         ":" + conf.Server.Port,
		Handler:      mux,
		ReadTimeout:  time.Duration(conf.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(conf.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(conf.Server.IdleTimeout) * time.Second,
	}

	workers := make([]*worker.Worker, conf.Engine.Workers)
	for i := range workers {
		workers[i] = worker.NewWorker(i, dispatcher, q, logger)
	}

	return &Server{
		conf:        conf,
		logger:      logger,
		httpServer:  httpServer,
		registry:    registry,
		sandbox:     sb,
		dispatcher:  dispatcher,
		queue:       q,
		workers:     workers,
		rateLimiter: rl,
	}, nil
}

func (s *Server) Start() error {
	s.logger.Info().
		Str("port", s.conf.Server.Port).
		Msg("starting HTTP server")

	// Ensure all required images are pulled
	if err := s.ensureImages(context.Background()); err != nil {
		return fmt.Errorf("failed to ensure docker images: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelFunc = cancel

	for _, w := range s.workers {
		go w.Start(ctx)
	}

	s.rateLimiter.StartCleanup(ctx, 5*time.Minute)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

func (s *Server) ensureImages(ctx context.Context) error {
	uniqueImages := make(map[string]bool)
	for _, l := range s.registry.List() {
		uniqueImages[l.Config.Image] = true
	}

	for img := range uniqueImages {
		if err := s.sandbox.EnsureImage(ctx, img); err != nil {
			return err
		}
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}
