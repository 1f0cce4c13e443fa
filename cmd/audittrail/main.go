package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/opencollab/audittrail/pkg/async"
	"github.com/opencollab/audittrail/pkg/audit"
	"github.com/opencollab/audittrail/pkg/config"
	"github.com/opencollab/audittrail/pkg/directory"
	"github.com/opencollab/audittrail/pkg/middleware"
	"github.com/opencollab/audittrail/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.LogLevel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := audit.NewMetrics(registry)

	var dir directory.Service
	if cfg.PostgresURL != "" {
		pg, err := directory.Open(cfg.PostgresURL)
		if err != nil {
			log.WithError(err).Fatal("failed to open directory database")
		}
		dir = pg
		log.Info("directory backed by postgres")
	} else {
		dir = directory.NewMemoryService()
		log.Warn("no AUDIT_POSTGRES_URL set, using empty in-memory directory")
	}

	locator := audit.NewLocator(cfg.Logs.Folder, cfg.Logs.Prefix)

	var cache *audit.ParseCache
	if cfg.Cache.Enabled {
		cache = audit.NewParseCache(cfg.Cache.MaxFiles, cfg.Cache.TTL, metrics)
	}

	engine := audit.NewEngine(locator, dir, cache, metrics, log)
	exporter := audit.NewExporter(locator, cache, metrics, log, cfg.Logs.MaxConcurrentReads)
	validator := audit.NewValidator(dir)
	scoper := audit.NewScoper(dir)
	handlers := audit.NewHandlers(validator, scoper, engine, exporter, log)

	callerResolver := middleware.NewCallerResolver(dir, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(callerResolver.Middleware)
	handlers.RegisterRoutes(api)

	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The parse cache refresh policy: keys carry mtime and size, the folder
	// watcher evicts eagerly on change, and this schedule purges everything
	// as a backstop.
	if cache != nil {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.Cache.PurgeSchedule, func() {
			cache.Purge()
			log.Debug("purged audit parse cache")
		}); err != nil {
			log.WithError(err).Fatal("invalid cache purge schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()

		watcher := audit.NewWatcher(cfg.Logs.Folder, cfg.Logs.Prefix, cache, log)
		async.Go(log, "audit log folder watcher", func() error {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("audit trail service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
