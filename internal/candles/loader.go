// Package candles implements the CSV/JSON candle ingestion boundary: the
// collaborator the core assumes delivers it an ordered, validated sequence
// of Candle values.
package candles

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

const utf8BOM = "﻿"

// LoadCSV reads timestamp_ms,open,high,low,close,volume rows from path. A
// header line is tolerated (its first cell fails numeric parsing and is
// skipped). Rows with fewer than 6 cells, or a non-numeric first cell, are
// skipped with a warning. Candles are returned in file order.
func LoadCSV(logger *zap.Logger, path string) ([]types.Candle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("candles")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("candles: open csv: %w", err)
	}
	defer f.Close()

	var out []types.Candle
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		cells := splitCSVLine(line)
		if lineNo == 1 {
			cells = stripBOM(cells)
		}

		if len(cells) < 6 {
			logger.Warn("skipping short csv row", zap.Int("line", lineNo))
			continue
		}

		tsMs, err := strconv.ParseInt(cells[0], 10, 64)
		if err != nil {
			logger.Warn("skipping non-numeric csv row", zap.Int("line", lineNo))
			continue
		}

		open, errO := strconv.ParseFloat(cells[1], 64)
		high, errH := strconv.ParseFloat(cells[2], 64)
		low, errL := strconv.ParseFloat(cells[3], 64)
		closeP, errC := strconv.ParseFloat(cells[4], 64)
		volume, errV := strconv.ParseFloat(cells[5], 64)
		if errO != nil || errH != nil || errL != nil || errC != nil || errV != nil {
			logger.Warn("skipping malformed csv row", zap.Int("line", lineNo))
			continue
		}

		out = append(out, types.Candle{
			TimestampMs: tsMs,
			Open:        open,
			High:        high,
			Low:         low,
			Close:       closeP,
			Volume:      volume,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("candles: scan csv: %w", err)
	}

	logger.Info("loaded candles from csv", zap.Int("count", len(out)), zap.String("path", path))
	return out, nil
}

func splitCSVLine(line string) []string {
	raw := strings.Split(line, ",")
	cells := make([]string, len(raw))
	for i, c := range raw {
		cells[i] = normalizeCell(c)
	}
	return cells
}

func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func stripBOM(cells []string) []string {
	if len(cells) == 0 {
		return cells
	}
	cells[0] = strings.TrimPrefix(cells[0], utf8BOM)
	return cells
}

// jsonCandle accepts either the long or short key spellings the collaborator
// boundary defines.
type jsonCandle struct {
	TimestampLong int64   `json:"timestamp"`
	TimestampSh   int64   `json:"t"`
	OpenLong      float64 `json:"open"`
	OpenSh        float64 `json:"o"`
	HighLong      float64 `json:"high"`
	HighSh        float64 `json:"h"`
	LowLong       float64 `json:"low"`
	LowSh         float64 `json:"l"`
	CloseLong     float64 `json:"close"`
	CloseSh       float64 `json:"c"`
	VolumeLong    float64 `json:"volume"`
	VolumeSh      float64 `json:"v"`
}

func (j jsonCandle) toCandle() types.Candle {
	pick := func(long, short float64) float64 {
		if long != 0 {
			return long
		}
		return short
	}
	ts := j.TimestampLong
	if ts == 0 {
		ts = j.TimestampSh
	}
	return types.Candle{
		TimestampMs: ts,
		Open:        pick(j.OpenLong, j.OpenSh),
		High:        pick(j.HighLong, j.HighSh),
		Low:         pick(j.LowLong, j.LowSh),
		Close:       pick(j.CloseLong, j.CloseSh),
		Volume:      pick(j.VolumeLong, j.VolumeSh),
	}
}

// LoadJSON reads a top-level JSON array of candle objects from path,
// accepting either long or short key spellings per element, and returns
// them sorted ascending by timestamp.
func LoadJSON(logger *zap.Logger, path string) ([]types.Candle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("candles")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("candles: read json: %w", err)
	}

	var raw []jsonCandle
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("candles: parse json: %w", err)
	}

	out := make([]types.Candle, len(raw))
	for i, jc := range raw {
		out[i] = jc.toCandle()
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})

	logger.Info("loaded candles from json", zap.Int("count", len(out)), zap.String("path", path))
	return out, nil
}
