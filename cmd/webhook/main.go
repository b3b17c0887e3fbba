// Command webhook runs the callback listener that acknowledges asynchronous
// SRTM responses.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"srtm-gateway/internal/platform/config"
	"srtm-gateway/internal/platform/httpserver"
	"srtm-gateway/internal/platform/logger"
	"srtm-gateway/internal/platform/metrics"
	"srtm-gateway/internal/platform/middleware"
	"srtm-gateway/internal/webhook"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	webhook.NewHandler(log, m).Register(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	srv := httpserver.New(cfg.WebhookAddr, r)
	log.Info("iniciando SRTM webhook", "addr", cfg.WebhookAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return httpserver.Shutdown(srv, 10*time.Second)
	})
	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("SRTM webhook detenido")
}
