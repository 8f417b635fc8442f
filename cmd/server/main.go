// Command server exposes the simulator over HTTP, WebSocket and gRPC.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/diamond-sim/internal/app"
	"github.com/xtding233/diamond-sim/internal/config"
	"github.com/xtding233/diamond-sim/internal/grpcapi"
	"github.com/xtding233/diamond-sim/internal/httpapi"
	"github.com/xtding233/diamond-sim/internal/platform/otel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}

func run(ctx context.Context) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	logger, err := app.NewLogger(os.Stderr, env.LogLevel, "diamond")
	if err != nil {
		return err
	}

	shutdownTracing, err := otel.Setup(ctx, "diamond-sim", env.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", "err", err)
		}
	}()

	a, err := app.Open(ctx, env, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	h := httpapi.NewHandler(a.Service, logger)
	h.StepDelay = env.StepDelay
	httpServer := &http.Server{
		Addr:              env.HTTPAddr,
		Handler:           httpapi.NewRouter(h, env.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcServer, healthServer := grpcapi.NewGRPCServer(grpcapi.NewServer(a.Service, logger))
	lis, err := net.Listen("tcp", env.GRPCAddr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return config.WatchLoader(a.Loader, env.WatchInterval, logger).Run(gctx)
	})
	g.Go(func() error {
		logger.Info("http listening", "addr", env.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("grpc listening", "addr", lis.Addr().String())
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		healthServer.Shutdown()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(sctx)
		grpcServer.GracefulStop()
		return err
	})
	return g.Wait()
}
