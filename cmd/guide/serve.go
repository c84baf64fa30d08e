package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/socialsphere/guide/internal/cli"
	"github.com/socialsphere/guide/internal/metrics"
	httpAdapter "github.com/socialsphere/guide/pkg/adapters/http"
	"github.com/socialsphere/guide/pkg/feed"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Exposes the guide as a JSON API with an SSE event stream and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()
		cmd.SetContext(sc)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}
		streams := httpAdapter.NewStreamManager(logger)

		backend, err := cli.OpenBackend(sc, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()
		eng, err := cli.BuildEngine(cfg, backend, logger, m.Hooks(), streams.Hooks())
		if err != nil {
			return err
		}

		handler, err := httpAdapter.NewHandler(eng,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			httpAdapter.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
			httpAdapter.WithCORSOrigin(cfg.HTTP.CORSOrigin),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		var watcher *feed.Watcher
		if cfg.Feed.Enabled {
			if watcher, err = cli.NewFeedWatcher(cfg, os.Stdout, m, logger); err != nil {
				return err
			}
		}

		g, ctx := errgroup.WithContext(sc)
		g.Go(func() error {
			logger.Info("Starting guide server", "address", srv.Addr, "store", cfg.Store.Driver)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("Start shutdown...", "signal", sc.Signal())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", cfg.HTTP.ShutdownTimeout, "err", err)
				return srv.Close()
			}
			logger.Info("Guide server stopped gracefully")
			return nil
		})
		if watcher != nil {
			g.Go(func() error {
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides http.addr)")
}
