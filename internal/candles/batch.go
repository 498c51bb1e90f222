package candles

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/internal/workers"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// LoadManyJSON loads one JSON candle file per market concurrently, bounded
// by a small worker pool, and returns a map keyed by market. A market whose
// file fails to load is omitted and the error logged; one bad file never
// aborts the batch.
func LoadManyJSON(logger *zap.Logger, paths map[string]string) map[string][]types.Candle {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := workers.New(logger, 4, len(paths))

	var mu sync.Mutex
	out := make(map[string][]types.Candle, len(paths))

	var wg sync.WaitGroup
	for market, path := range paths {
		market, path := market, path
		wg.Add(1)
		pool.Submit(func() error {
			defer wg.Done()
			loaded, err := LoadJSON(logger, path)
			if err != nil {
				logger.Warn("failed to load candles for market", zap.String("market", market), zap.Error(err))
				return err
			}
			mu.Lock()
			out[market] = loaded
			mu.Unlock()
			return nil
		})
	}

	wg.Wait()
	pool.Close()
	return out
}
