// Command decisioncore runs the observability demo binary: it wires the
// regime detector, performance store, policy controller, journal and
// reference risk/execution planes into one coordinator and serves a
// read-only HTTP/WS view onto its output. The core packages themselves
// have no dependency on this binary or on viper.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/internal/api"
	"github.com/kestrel-quant/decisioncore/internal/candles"
	"github.com/kestrel-quant/decisioncore/internal/coordinator"
	"github.com/kestrel-quant/decisioncore/internal/eventbus"
	"github.com/kestrel-quant/decisioncore/internal/execplane"
	"github.com/kestrel-quant/decisioncore/internal/journal"
	"github.com/kestrel-quant/decisioncore/internal/performance"
	"github.com/kestrel-quant/decisioncore/internal/policy"
	"github.com/kestrel-quant/decisioncore/internal/regime"
	"github.com/kestrel-quant/decisioncore/internal/riskplane"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

func loadConfig() (types.AppConfig, error) {
	cfg := types.DefaultAppConfig()

	v := viper.New()
	v.SetConfigName("decisioncore")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("DECISIONCORE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	journalPath := filepath.Join(cfg.Data.JournalDir, "events.jsonl")
	j, err := journal.Open(logger, journalPath)
	if err != nil {
		logger.Fatal("failed to open journal", zap.Error(err))
	}
	defer j.Close()

	perfStore := performance.New(logger)
	controller := policy.New()
	policyPlane := coordinator.NewLegacyPolicyAdapter(controller, perfStore)

	riskPlane := riskplane.NewManager(logger, riskplane.Config{
		MaxDailyLoss:         decimal.NewFromFloat(cfg.KillSwitch.MaxDailyLossPct),
		MaxConsecutiveLosses: cfg.KillSwitch.MaxConsecutiveLoss,
		CooldownPeriod:       cfg.KillSwitch.CooldownPeriod,
		MaxSymbolExposure:    decimal.NewFromFloat(0.2),
		MaxOrderSize:         decimal.NewFromFloat(10000),
		MinOrderSize:         decimal.NewFromFloat(0.001),
		RiskPerTrade:         decimal.NewFromFloat(0.02),
	})

	execPlane := execplane.New(logger, func() int64 { return time.Now().UnixMilli() })

	bus := eventbus.New(logger, 256)
	defer bus.Close()

	coord := coordinator.New(logger, j, policyPlane, riskPlane, execPlane, bus)

	server := api.NewServer(logger, cfg.Server, j, bus)

	detector := regime.New(logger, regime.DefaultConfig())

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	dominant := types.RegimeUnknown
	candlePath := filepath.Join(cfg.Data.CandlesDir, "primary.json")
	if loaded, err := candles.LoadJSON(logger, candlePath); err == nil {
		dominant = detector.Analyze(loaded).Regime
	} else {
		logger.Info("no seed candles found, starting with unknown regime", zap.String("path", candlePath))
	}

	ctx := types.PolicyContext{
		SmallSeedMode:       cfg.Policy.SmallSeedMode,
		MaxNewOrdersPerScan: int32(cfg.Policy.MaxNewOrdersPerScan),
		DominantRegime:      dominant,
	}
	batch := coord.RunCycle(nil, ctx)
	server.RecordDecisions(batch.Decisions)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
}
