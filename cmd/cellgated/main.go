package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cellgate/cellgate/actor"
	"github.com/cellgate/cellgate/clock"
	"github.com/cellgate/cellgate/internal/config"
	"github.com/cellgate/cellgate/internal/logging"
	"github.com/cellgate/cellgate/store"
	"github.com/cellgate/cellgate/transport/grpcapi"
	"github.com/cellgate/cellgate/transport/httpapi"
	"github.com/cellgate/cellgate/transport/resp"
)

func main() {
	cfg, err := config.Parse(flag.NewFlagSet("cellgated", flag.ExitOnError), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cellgated: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	st, err := store.New(cfg.StoreConfig())
	if err != nil {
		logger.Error("failed to construct store", "error", err)
		os.Exit(1)
	}

	handle := actor.New(st, clock.System{},
		actor.WithQueueCapacity(cfg.QueueCapacity),
		actor.WithTopKeysCapacity(cfg.TopKeysCapacity),
		actor.WithBlockingSubmit(cfg.BlockingSubmit),
	)
	go handle.Run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 3)

	var httpSrv *httpapi.Server
	if cfg.HTTPEnabled {
		httpSrv = httpapi.New(handle, logger)
		logger.Info("starting HTTP transport", "addr", cfg.HTTPAddr)
		go func() {
			if err := httpSrv.ListenAndServe(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http: %w", err)
			}
		}()
	}

	var grpcSrv *grpcapi.Server
	if cfg.GRPCEnabled {
		grpcSrv = grpcapi.New(handle, logger)
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Error("failed to bind gRPC listener", "addr", cfg.GRPCAddr, "error", err)
			os.Exit(1)
		}
		logger.Info("starting gRPC transport", "addr", cfg.GRPCAddr)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	var respSrv *resp.Server
	if cfg.RESPEnabled {
		respSrv = resp.New(handle, logger)
		lis, err := net.Listen("tcp", cfg.RESPAddr)
		if err != nil {
			logger.Error("failed to bind RESP listener", "addr", cfg.RESPAddr, "error", err)
			os.Exit(1)
		}
		logger.Info("starting RESP transport", "addr", cfg.RESPAddr)
		go func() {
			if err := respSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("resp: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		logger.Error("transport error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown error", "error", err)
		}
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if respSrv != nil {
		if err := respSrv.Close(); err != nil {
			logger.Warn("RESP shutdown error", "error", err)
		}
	}

	if err := handle.Shutdown(shutdownCtx); err != nil {
		logger.Warn("actor shutdown error", "error", err)
	}

	logger.Info("cellgated shut down successfully")
}
