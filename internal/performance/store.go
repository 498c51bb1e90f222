// Package performance aggregates realized trade outcomes into the two
// statistics tables the policy controller scores candidates against.
package performance

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// Store holds the per-strategy and per-bucket aggregates. Rebuild replaces
// both tables atomically from a trade history sequence. Each lookup takes
// the read lock on its own; no snapshot spans a whole selection call, so
// lookups on either side of a concurrent Rebuild see different tables.
type Store struct {
	logger *zap.Logger

	mu        sync.RWMutex
	byStrategy map[string]types.StrategyPerformanceStats
	byBucket   map[types.PerformanceBucketKey]types.StrategyPerformanceStats
}

// New creates an empty Store.
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger:     logger.Named("performance"),
		byStrategy: make(map[string]types.StrategyPerformanceStats),
		byBucket:   make(map[types.PerformanceBucketKey]types.StrategyPerformanceStats),
	}
}

// Rebuild replaces both tables atomically from scratch using history.
// Idempotent: rebuilding with the same history twice produces identical
// tables.
func (s *Store) Rebuild(history []types.TradeHistory) {
	byStrategy := make(map[string]types.StrategyPerformanceStats)
	byBucket := make(map[types.PerformanceBucketKey]types.StrategyPerformanceStats)

	for _, t := range history {
		name := t.StrategyName
		if name == "" {
			name = "unknown"
		}

		strategyStats := byStrategy[name]
		accumulate(&strategyStats, t.ProfitLoss)
		byStrategy[name] = strategyStats

		key := types.PerformanceBucketKey{
			StrategyName:    name,
			Regime:          t.MarketRegime,
			LiquidityBucket: types.LiquidityBucket(t.LiquidityScore),
		}
		bucketStats := byBucket[key]
		accumulate(&bucketStats, t.ProfitLoss)
		byBucket[key] = bucketStats
	}

	s.mu.Lock()
	s.byStrategy = byStrategy
	s.byBucket = byBucket
	s.mu.Unlock()

	s.logger.Debug("performance store rebuilt",
		zap.Int("trades", len(history)),
		zap.Int("strategies", len(byStrategy)),
		zap.Int("buckets", len(byBucket)),
	)
}

func accumulate(stats *types.StrategyPerformanceStats, pl float64) {
	stats.Trades++
	stats.NetProfit += pl
	switch {
	case pl > 0:
		stats.Wins++
		stats.GrossProfit += pl
	case pl < 0:
		stats.GrossLossAbs += -pl
	}
}

// StrategyStats returns the aggregate for name and whether it was found.
func (s *Store) StrategyStats(name string) (types.StrategyPerformanceStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.byStrategy[name]
	return stats, ok
}

// BucketStats returns the aggregate for key and whether it was found.
func (s *Store) BucketStats(key types.PerformanceBucketKey) (types.StrategyPerformanceStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.byBucket[key]
	return stats, ok
}

// StrategyCount returns how many distinct strategies are tracked.
func (s *Store) StrategyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byStrategy)
}
