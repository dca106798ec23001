package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_absa/internal/adapters/observability"
	redisad "review_absa/internal/adapters/redis"
	"review_absa/internal/app"
	"review_absa/internal/bootstrap"
	"review_absa/internal/corpus"
	"review_absa/internal/shared"
	mysqlrepo "review_absa/internal/storage/mysql"
)

func main() {
	if !run() {
		os.Exit(1)
	}
}

// run reports whether every row was ingested.
func run() bool {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	input := cfg.IngestInput
	if len(os.Args) > 1 {
		input = os.Args[1]
	}
	if input == "" {
		log.Fatal().Msg("no input: set INGEST_INPUT or pass a JSONL/CSV path")
	}

	log.Info().
		Str("input", input).
		Str("backend", cfg.ClassifierBackend).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	pipeline, err := bootstrap.Pipeline(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis core failed to load")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	ing := app.NewAnalysisService(pipeline, repo, cache)

	sem := semaphore.NewWeighted(int64(max(cfg.Workers, 1)))
	var (
		wg            sync.WaitGroup
		ok, failed, n atomic.Int64
	)

	err = corpus.EachFile(input, func(line int, row map[string]any) error {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		n.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			out, err := ing.IngestRaw(ctx, row)
			if err != nil {
				failed.Add(1)
				log.Warn().Int("line", line).Err(err).Msg("ingest failed")
				return
			}
			ok.Add(1)
			log.Debug().Int("line", line).Str("id", out.ID).Int("aspects", out.Analyzed).Msg("ingest ok")
		}()
		if c := n.Load(); c%1000 == 0 {
			log.Info().Int64("rows", c).Int64("failed", failed.Load()).Msg("progress")
		}
		return nil
	})
	wg.Wait()
	if err != nil {
		log.Error().Err(err).Msg("input scan aborted")
	}

	log.Info().
		Int64("rows", n.Load()).
		Int64("ok", ok.Load()).
		Int64("failed", failed.Load()).
		Msg("ingestion completed")
	return err == nil && failed.Load() == 0
}
