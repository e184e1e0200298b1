package swarmhub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/swarm/store"
	"github.com/kiosk404/swarmscope/internal/swarmhub/config"
)

// shutdownTimeout bounds how long in-flight requests may take once a stop
// signal has been received.
const shutdownTimeout = 10 * time.Second

type apiServer struct {
	engine *gin.Engine
	http   *http.Server
	store  *store.Store
}

type preparedAPIServer struct {
	*apiServer
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	gin.SetMode(cfg.ServerRunOptions.Mode)

	st, err := store.New(cfg.StoreOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	logger.Info("[Swarmhub] run store initialized (driver=%s)", cfg.StoreOptions.Driver)

	engine := gin.New()
	initRouter(engine, &routerDeps{
		store:        st,
		requirements: cfg.Requirements,
		profiling:    cfg.ServerRunOptions.Profiling,
	})

	return &apiServer{
		engine: engine,
		store:  st,
		http: &http.Server{
			Addr:              cfg.ServerRunOptions.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	return preparedAPIServer{s}
}

// Run serves until ctx is done, then drains in-flight requests and closes
// the store.
func (s preparedAPIServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		_ = s.store.Close()
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.serve(ctx, ln)
}

func (s preparedAPIServer) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Swarmhub] listening on %s", ln.Addr())
		errCh <- s.http.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		logger.Info("[Swarmhub] shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("shutdown: %w", err)
		}
	}

	if err := s.store.Close(); err != nil {
		logger.Warn("[Swarmhub] failed to close run store: %v", err)
	}
	return serveErr
}
