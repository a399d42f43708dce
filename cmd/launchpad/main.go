// ==============================
// File: cmd/launchpad/main.go
// ==============================
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad/internal/bank"
	"github.com/rovshanmuradov/launchpad/internal/config"
	"github.com/rovshanmuradov/launchpad/internal/engine"
	"github.com/rovshanmuradov/launchpad/internal/logger"
	"github.com/rovshanmuradov/launchpad/internal/store"
	"github.com/rovshanmuradov/launchpad/internal/task"
	"github.com/rovshanmuradov/launchpad/internal/venue"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := "configs/config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load config", zap.Error(err))
	}

	logCfg := logger.DefaultConfig()
	logCfg.Development = cfg.DebugLogging
	if cfg.LogFile != "" {
		logCfg.LogFile = cfg.LogFile
	}
	log, err := logger.New(logCfg)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Starting launchpad engine")

	baseBank := bank.NewInMemory()

	var st engine.Store
	var dbStore *store.Store
	if cfg.DatabasePath != "" {
		dbStore, err = store.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatal("Failed to open store", zap.Error(err))
		}
		defer dbStore.Close()
		st = dbStore
	}

	var liquidityVenue engine.LiquidityVenue
	if cfg.VenueURL != "" {
		liquidityVenue = venue.NewHTTP(cfg.VenueURL, log.Logger)
	} else {
		liquidityVenue = venue.NewAMM(log.Logger)
	}

	eng, err := engine.New(engine.Config{
		Owner:    cfg.Owner,
		Treasury: cfg.Treasury,
		Curve: engine.CurveConfig{
			VirtualBase:   cfg.VirtualBase,
			VirtualTokens: cfg.VirtualTokens,
			BondingSupply: cfg.BondingSupply,
		},
		Params: engine.Params{
			BuyFeeBps:        cfg.BuyFeeBps,
			SellFeeBps:       cfg.SellFeeBps,
			CreationFee:      cfg.CreationFee,
			GraduationTarget: cfg.GraduationTarget,
			BurnBps:          cfg.BurnBps,
			LiquidityBps:     cfg.LiquidityBps,
			CreatorBps:       cfg.CreatorBps,
			PoolTokenSupply:  cfg.PoolTokenSupply,
		},
	}, baseBank, st, liquidityVenue, log.Logger)
	if err != nil {
		log.Fatal("Failed to build engine", zap.Error(err))
	}
	if err := eng.Restore(ctx); err != nil {
		log.Fatal("Failed to restore state", zap.Error(err))
	}

	if cfg.TasksPath == "" {
		log.Info("No tasks file configured, nothing to do")
		return
	}

	manager := task.NewManager(log.Logger)
	tasks, err := manager.LoadTasksYAML(cfg.TasksPath)
	if err != nil {
		log.Fatal("Failed to load tasks", zap.Error(err))
	}

	runner := task.NewRunner(eng, baseBank, cfg.Workers, log.Logger)
	if err := runner.Run(ctx, tasks); err != nil {
		log.Fatal("Task execution error", zap.Error(err))
	}

	for _, tok := range eng.ListTokens(0, 0) {
		progress, err := eng.BondingCurveProgress(tok.ID)
		if err != nil {
			continue
		}
		log.WithToken(tok.ID, tok.Symbol).Info("Token state",
			zap.String("status", tok.Status.String()),
			zap.Uint64("raised", progress.Raised),
			zap.Uint64("progress_bps", progress.ProgressBps),
			zap.Uint64("tokens_sold", progress.TokensSold))
	}
}
