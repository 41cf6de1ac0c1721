package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andy6609/linechat/internal/chat"
	"github.com/andy6609/linechat/internal/config"
	"github.com/andy6609/linechat/internal/logging"
)

func main() {
	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger, cleanup, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	srv, err := chat.NewServer(chat.Options{
		Addr:        cfg.Addr,
		MaxSessions: cfg.MaxSessions,
		Session: chat.SessionOptions{
			QueueSize:    cfg.QueueSize,
			MaxLineBytes: cfg.MaxLineBytes,
			DrainTimeout: cfg.DrainTimeout,
		},
	}, logger.Named("chat"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		srv.Stop()
		return nil
	})

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics endpoint started", zap.String("addr", cfg.MetricsAddr))
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "metrics server")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metrics.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
