package candles

import "github.com/kestrel-quant/decisioncore/pkg/types"

// Issue is one sanity-check finding against an already-loaded candle
// sequence. Validate never drops candles; it only surfaces things a caller
// may want to log before handing the sequence to the regime detector.
type Issue struct {
	Index   int
	Message string
}

// Validate runs a trimmed OHLC consistency pass over candles: non-positive
// prices, negative volume (zero volume is accepted), high/low bounds, and
// non-monotonic timestamps. It never
// mutates or filters the input.
func Validate(candles []types.Candle) []Issue {
	var issues []Issue

	for i, c := range candles {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			issues = append(issues, Issue{Index: i, Message: "non-positive price"})
		}
		if c.Volume < 0 {
			issues = append(issues, Issue{Index: i, Message: "negative volume"})
		}
		if c.High < c.Low {
			issues = append(issues, Issue{Index: i, Message: "high below low"})
		}
		if c.High < c.Open || c.High < c.Close {
			issues = append(issues, Issue{Index: i, Message: "high below open/close"})
		}
		if c.Low > c.Open || c.Low > c.Close {
			issues = append(issues, Issue{Index: i, Message: "low above open/close"})
		}
		if i > 0 && c.TimestampMs <= candles[i-1].TimestampMs {
			issues = append(issues, Issue{Index: i, Message: "non-monotonic timestamp"})
		}
	}

	return issues
}
