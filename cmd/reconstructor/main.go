package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/olyamironova/mbp-reconstructor/internal/adapter/cache"
	"github.com/olyamironova/mbp-reconstructor/internal/adapter/kafka"
	"github.com/olyamironova/mbp-reconstructor/internal/adapter/pg"
	"github.com/olyamironova/mbp-reconstructor/internal/api"
	"github.com/olyamironova/mbp-reconstructor/internal/config"
	"github.com/olyamironova/mbp-reconstructor/internal/core"
	"github.com/olyamironova/mbp-reconstructor/internal/mbocsv"
	"github.com/olyamironova/mbp-reconstructor/internal/port"
)

func main() {
	_ = godotenv.Load() // best-effort: .env is optional

	configPath := flag.String("config", "config.yaml", "path to YAML config")
	outputPath := flag.String("output", "", "MBP output file (overrides config)")
	serve := flag.Bool("serve", false, "keep serving the read API after the input is drained")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <mbo_input.csv>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *outputPath != "" {
		cfg.OutputPath = *outputPath
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, inputPath, *serve, logger); err != nil {
		logger.Fatal("reconstruction failed", zap.Error(err))
	}
}

func run(cfg config.Config, inputPath string, serve bool, logger *zap.Logger) error {
	ctx := context.Background()

	var (
		repo      port.SnapshotRepository
		snapCache port.SnapshotCache
		publisher port.SnapshotPublisher
	)

	if cfg.Postgres.Enabled {
		pgRepo, err := pg.NewPgRepo(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pgRepo.Close(ctx)
		repo = pgRepo
	}
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		defer redisCache.Close()
		snapCache = redisCache
	}
	if cfg.Kafka.Enabled {
		pub := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer pub.Close()
		publisher = pub
	}

	var engineOpts []core.Option
	if cfg.Engine.MigrateReadds {
		engineOpts = append(engineOpts, core.WithReaddMigration())
	}
	engine := core.NewEngine(repo, snapCache, publisher, logger, engineOpts...)

	if cfg.HTTP.Enabled {
		server := api.NewHTTPServer(engine)
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		go func() {
			logger.Info("read API listening", zap.String("addr", addr))
			if err := server.Run(addr); err != nil {
				logger.Error("read API stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("reconstruction starting",
		zap.String("run_id", engine.RunID()),
		zap.String("input", inputPath),
		zap.String("output", cfg.OutputPath),
	)

	if err := process(ctx, engine, inputPath, cfg.OutputPath); err != nil {
		return err
	}

	stats := engine.Stats()
	logger.Info("reconstruction finished",
		zap.Int64("events_processed", stats.EventsProcessed),
		zap.Int64("snapshots_emitted", stats.SnapshotsEmitted),
		zap.Int64("snapshots_suppressed", stats.SnapshotsSuppressed),
		zap.String("output", cfg.OutputPath),
	)

	if serve && cfg.HTTP.Enabled {
		select {} // serve until killed
	}
	return nil
}

// process drives the event loop: decode, apply, encode what the filter
// lets through. Events are applied strictly in file order; the loop is
// the only writer of engine state.
func process(ctx context.Context, engine *core.Engine, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	decoder := mbocsv.NewDecoder(in)
	encoder := mbocsv.NewEncoder(out)
	if err := encoder.WriteHeader(); err != nil {
		return err
	}

	for {
		ev, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		snap, emitted := engine.ProcessEvent(ctx, ev)
		if !emitted {
			continue
		}
		if err := encoder.WriteSnapshot(snap); err != nil {
			return err
		}
	}
	return encoder.Flush()
}
