package main

import (
	"context"
	"time"
	"website_auditor/internal/application/config"
	"website_auditor/internal/http"

	log "github.com/sirupsen/logrus"
)

func main() {
	logInstance := log.New()
	cfg, err := config.NewAppConfig()
	if err != nil {
		logInstance.WithError(err).Fatal(`Failed to load config`)
		return
	}

	//log level
	logLevel, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logInstance.WithError(err).Fatal(`Failed to parse log level`)
		return
	}

	logInstance.SetFormatter(&log.JSONFormatter{
		TimestampFormat:   time.RFC3339,
		DisableHTMLEscape: true,
		DisableTimestamp:  false,
	})

	logInstance.SetLevel(logLevel)

	// Audits outlive the request that submitted them, so the root context is
	// never cancelled; shutdown goes through the worker pool.
	ctx := context.WithoutCancel(context.Background())

	http.Init(ctx, logInstance, cfg)
}
