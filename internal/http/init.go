package http

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"website_auditor/internal/adaptors"
	"website_auditor/internal/adaptors/store"
	"website_auditor/internal/application/config"
	domainAdaptors "website_auditor/internal/domain/adaptors"
	"website_auditor/internal/http/middleware"
	"website_auditor/internal/pkg/worker_pool"
	"website_auditor/internal/service"
	"website_auditor/internal/service/extractors"
	"website_auditor/internal/service/scoring"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const limiterCleanupInterval = 10 * time.Minute

type Router struct {
	httpRouter *chi.Mux
	log        *log.Logger
	auditor    service.Auditor
	limiter    *middleware.ClientRateLimiter
	draining   atomic.Bool
}

func Init(ctx context.Context, log *log.Logger, appCfg *config.AppConfig) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := NewHTTPServerConfig()
	if err != nil {
		log.Fatalf(`Failed to load config: %v`, err)
	}

	auditStore, closeStore, err := newAuditStore(ctx, appCfg, log)
	if err != nil {
		log.WithError(err).Fatal(`Failed to init audit store`)
	}

	webClient := adaptors.NewWebClient(adaptors.WebClientConfig{
		Timeout:      appCfg.Audit.FetchTimeout,
		MaxRedirects: appCfg.Audit.MaxRedirects,
		UserAgent:    appCfg.Audit.UserAgent,
	}, log)

	// robots.txt, sitemap and link probes always go through the plain client
	var pageFetcher domainAdaptors.PageFetcher = webClient
	if appCfg.Audit.FetcherMode == config.FetcherModeBrowser {
		pageFetcher = adaptors.NewBrowserFetcher(adaptors.WebClientConfig{
			Timeout:      appCfg.Audit.FetchTimeout,
			MaxRedirects: appCfg.Audit.MaxRedirects,
			UserAgent:    appCfg.Audit.UserAgent,
		}, log)
	}

	pipeline := service.NewAuditPipeline(
		auditStore,
		pageFetcher,
		extractors.Default(webClient, appCfg.Audit.UserAgent),
		service.NewLinkChecker(webClient, appCfg.Audit.LinkConcurrency, appCfg.Audit.LinkTimeout, log),
		scoring.NewEngine(appCfg.Audit.SlowLoadMs),
		service.PipelineConfig{Timeout: appCfg.Audit.PipelineTimeout},
		log,
	)

	pool := worker_pool.NewWorkerPool(ctx, appCfg.Audit.WorkerCount, appCfg.Audit.QueueSize, log)
	auditService := service.NewAuditService(auditStore, pipeline, pool, log)

	limiter := middleware.NewClientRateLimiter(appCfg.RateLimit.PerHour, appCfg.RateLimit.Burst, appCfg.RateLimit.TrustProxy, log)
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup(time.Hour)
			case <-stopCleanup:
				return
			}
		}
	}()

	router := &Router{
		httpRouter: chi.NewRouter(),
		log:        log,
		auditor:    auditService,
		limiter:    limiter,
	}

	initRoutes(ctx, router)

	metricsServer := NewMetricsServer(appCfg.MetricsHost, cfg.Timeouts.ShutdownWait, log)
	go runServer(log, metricsServer.Start)

	httpServer := NewHttpServer(ctx, cfg, router.httpRouter, log)
	go runServer(log, httpServer.Start)

	var pprofServer *PprofServer
	if appCfg.DebugMode {
		pprofServer = NewPprofServer(appCfg.PprofHost, cfg.Timeouts.ShutdownWait, log)
		go runServer(log, pprofServer.Start)
	}

	sig := <-sigs
	log.WithField(`signal`, sig.String()).Info(`draining audit service`)
	router.draining.Store(true)

	if err := httpServer.Stop(); err != nil {
		log.WithError(err).Error(`api server shutdown`)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), appCfg.Audit.ShutdownDeadline)
	if err := auditService.Shutdown(drainCtx); err != nil {
		log.WithError(err).Warn(`audits still running at shutdown deadline were cancelled`)
	}
	cancel()

	close(stopCleanup)
	closeStore()

	if pprofServer != nil {
		if err := pprofServer.Stop(); err != nil {
			log.WithError(err).Error(`pprof server shutdown`)
		}
	}

	if err := metricsServer.Stop(); err != nil {
		log.WithError(err).Error(`metrics server shutdown`)
	}
}

func runServer(log *log.Logger, start func() error) {
	if err := start(); err != nil {
		log.WithError(err).Fatal(`server failed`)
	}
}

func newAuditStore(ctx context.Context, appCfg *config.AppConfig, log *log.Logger) (domainAdaptors.AuditStore, func(), error) {
	if appCfg.Store.Driver == config.StoreDriverPostgres {
		pg, err := store.NewPostgresStore(ctx, appCfg.Store.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	return store.NewMemoryStore(), func() {}, nil
}
