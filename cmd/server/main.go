// Command server runs the REST API of the SRTM gateway: JSON in, SOAP to the
// registry, one audit record per transaction.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"srtm-gateway/internal/audit"
	"srtm-gateway/internal/platform/config"
	"srtm-gateway/internal/platform/httpserver"
	"srtm-gateway/internal/platform/logger"
	"srtm-gateway/internal/platform/metrics"
	"srtm-gateway/internal/registry/actions"
	"srtm-gateway/internal/registry/envelope"
	"srtm-gateway/internal/registry/queries"
	"srtm-gateway/internal/storage"
	httptransport "srtm-gateway/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	types := actions.Types{
		RegistroPositivo:     cfg.Types.RegistroPositivo,
		RegistroNegativo:     cfg.Types.RegistroNegativo,
		CancelacionNegativo:  cfg.Types.CancelacionNegativo,
		ModificacionPositivo: cfg.Types.ModificacionPositivo,
		CancelacionPositivo:  cfg.Types.CancelacionPositivo,
	}
	builder := envelope.NewBuilder(envelope.NewSequence(time.Now()), types.ProcessCategories())

	// Either client may fail to initialize when its credentials are absent.
	// The API still starts; the affected endpoints answer 503.
	var actionsClient httptransport.ActionsClient
	if c, err := actions.New(actions.Config{
		Endpoint: cfg.Actions.Endpoint,
		UserID:   cfg.Actions.UserID,
		Password: cfg.Actions.Password,
		Timeout:  cfg.Actions.Timeout,
	}, types, builder, log); err != nil {
		log.Error("cliente SOAP de acciones no inicializado", "error", err)
	} else {
		log.Info("cliente SOAP de acciones inicializado")
		actionsClient = c
	}

	var queriesClient httptransport.QueriesClient
	if c, err := queries.New(queries.Config{
		Endpoint: cfg.Queries.Endpoint,
		UserID:   cfg.Queries.UserID,
		Password: cfg.Queries.Password,
		Timeout:  cfg.Queries.Timeout,
	}, log); err != nil {
		log.Error("cliente SOAP de consultas no inicializado", "error", err)
	} else {
		log.Info("cliente SOAP de consultas inicializado")
		queriesClient = c
	}

	var store audit.Store = storage.NewInMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("no se pudo conectar a la base de datos, auditoria en memoria", "error", err)
		} else {
			defer db.Close()
			pg := storage.NewPostgresStore(db)
			if err := pg.EnsureSchema(ctx); err != nil {
				log.Error("no se pudo preparar el esquema, auditoria en memoria", "error", err)
			} else {
				log.Info("auditoria persistida en postgres")
				store = pg
			}
		}
	}
	auditor := audit.NewService(store, log)

	handler := httptransport.NewHandler(actionsClient, queriesClient, auditor, cfg.Types, m, log)
	router := httptransport.NewRouter(handler, m, log)
	srv := httpserver.New(cfg.ServerAddr, router)

	log.Info("iniciando SRTM API", "addr", cfg.ServerAddr)

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
	log.Info("SRTM API detenida")
}
