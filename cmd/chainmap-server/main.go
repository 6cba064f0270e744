package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redgraph/chainmap/pkg/api"
	"github.com/redgraph/chainmap/pkg/config"
	"github.com/redgraph/chainmap/pkg/logging"
	"github.com/redgraph/chainmap/pkg/metrics"
	"github.com/redgraph/chainmap/pkg/server"
	"github.com/redgraph/chainmap/pkg/store"
	"github.com/redgraph/chainmap/pkg/topology"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	databaseURL := flag.String("db", "", "PostgreSQL connection URL (overrides config)")
	snapshotPath := flag.String("snapshot", "", "Snapshot file for the in-memory store (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *databaseURL != "" {
		cfg.DatabaseURL = *databaseURL
	}
	if *snapshotPath != "" {
		cfg.SnapshotPath = *snapshotPath
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	logger.Info("chainmap server starting",
		logging.Int("port", cfg.Port),
		logging.Bool("postgres", cfg.DatabaseURL != ""),
	)

	ctx := context.Background()
	registry := metrics.NewRegistry()
	inventory := topology.NewInventory()

	var chains store.ChainStore
	var memory *store.MemoryStore
	var pg *store.PGStore

	if cfg.DatabaseURL != "" {
		pg, err = store.NewPGStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", logging.Error(err))
			os.Exit(1)
		}
		defer pg.Close()
		chains = pg
		logger.Info("using postgres chain store")
	} else {
		memory = store.NewMemoryStore()
		if err := memory.LoadSnapshot(cfg.SnapshotPath); err != nil {
			logger.Error("failed to load snapshot",
				logging.String("path", cfg.SnapshotPath),
				logging.Error(err),
			)
			os.Exit(1)
		}
		chains = memory
		logger.Info("using in-memory chain store",
			logging.String("snapshot", cfg.SnapshotPath),
			logging.Int("chains", memory.Count()),
		)
	}

	apiServer := api.NewServer(api.Options{
		Chains:      chains,
		Inventory:   inventory,
		Registry:    registry,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Port:        cfg.Port,
	})

	if pg != nil {
		apiServer.Checker().Register("postgres", func(ctx context.Context) error {
			return pg.Ping(ctx)
		})
	}

	gs := server.NewGracefulServer(fmt.Sprintf(":%d", cfg.Port), apiServer.Routes(), logger)

	if memory != nil {
		gs.OnShutdown(func(ctx context.Context) error {
			logger.Info("saving snapshot", logging.String("path", cfg.SnapshotPath))
			return memory.SaveSnapshot(cfg.SnapshotPath)
		})
		go snapshotPeriodically(gs, memory, cfg.SnapshotPath, logger)
	}

	if err := gs.Start(); err != nil {
		logger.Error("server error", logging.Error(err))
		os.Exit(1)
	}
}

// snapshotPeriodically persists the in-memory store every few minutes so
// a crash loses at most one interval of edits.
func snapshotPeriodically(gs *server.GracefulServer, memory *store.MemoryStore, path string, logger logging.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := memory.SaveSnapshot(path); err != nil {
				logger.Warn("periodic snapshot failed",
					logging.String("path", path),
					logging.Error(err),
				)
			}
		case <-gs.ShutdownChannel():
			return
		}
	}
}
