package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridworks-mx/availability-sync/internal/config"
	"github.com/gridworks-mx/availability-sync/internal/db"
	"github.com/gridworks-mx/availability-sync/internal/models"
	"github.com/gridworks-mx/availability-sync/internal/upstream"
	"github.com/gridworks-mx/availability-sync/internal/utils"
)

var markets = []string{"MDA", "MTR"}

func main() {
	if err := run(); err != nil {
		log.Fatalf("sync error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	day, err := time.Parse("2006-01-02", cfg.TargetDate)
	if err != nil {
		return fmt.Errorf("parse target date: %w", err)
	}

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connection: %w", err)
	}
	defer store.Close()

	client := upstream.NewClient(cfg.SIVURL, cfg.CENACEURL, cfg.RequestTimeout)

	total := 0
	for _, market := range markets {
		written, err := syncMarket(ctx, cfg, store, client, day, market)
		if err != nil {
			return fmt.Errorf("sync %s: %w", market, err)
		}
		total += written
	}

	log.Printf("sync complete for %s: %d rows written", cfg.TargetDate, total)
	return nil
}

func syncMarket(ctx context.Context, cfg config.Config, store *db.Store, client *upstream.Client, day time.Time, market string) (int, error) {
	fetchedAt := time.Now().UTC()

	sivResp, err := client.FetchSIV(ctx, cfg.TargetDate, market)
	if err != nil {
		return 0, err
	}
	cenaceResp, err := client.FetchCENACE(ctx, cfg.TargetDate, market)
	if err != nil {
		return 0, err
	}

	written := 0
	sources := []struct {
		name string
		rows []models.AvailabilityRow
	}{
		{"siv", utils.BuildSIVRows(sivResp, day, market, fetchedAt)},
		{"cenace", utils.BuildCENACERows(cenaceResp, day, market, fetchedAt)},
	}

	for _, src := range sources {
		last, err := store.FetchLast(ctx, market, day, src.name)
		if err != nil {
			return 0, err
		}

		changed := utils.FilterChanged(src.rows, last, func(r models.AvailabilityRow) string {
			return db.RowKey(r.UnitID, r.Hour)
		}, cfg.ValueEpsilon)

		log.Printf("%s/%s: %d fetched, %d changed", market, src.name, len(src.rows), len(changed))

		if cfg.DryRun {
			continue
		}

		n, err := store.UpsertRows(ctx, changed)
		if err != nil {
			return 0, err
		}
		written += n
	}
	return written, nil
}
