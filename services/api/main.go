package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/gridworks-mx/insumo-console/services/api/config"
	"github.com/gridworks-mx/insumo-console/services/api/db"
	"github.com/gridworks-mx/insumo-console/services/api/events"
	"github.com/gridworks-mx/insumo-console/services/api/export"
	httpserver "github.com/gridworks-mx/insumo-console/services/api/http"
	"github.com/gridworks-mx/insumo-console/services/api/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection error: %v", err)
	}
	defer store.Close()

	tpl, err := export.LoadTemplate(cfg.ExportTemplatePath)
	if err != nil {
		log.Fatalf("export template error: %v", err)
	}

	metrics := observability.NewMetrics()

	var publisher *events.Publisher
	if cfg.EventsEnabled() {
		publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, slog.Default())
		defer publisher.Close()
		log.Printf("submission events enabled (topic=%s)", cfg.KafkaTopic)
	}

	srv := httpserver.New(cfg, store, metrics, publisher, tpl)
	log.Printf("REST API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
