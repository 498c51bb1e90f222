// Package journal implements the durable, append-only JSONL event journal:
// the single source of truth for replaying state transitions after a
// crash or restart.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// Journal is a single-writer-safe, crash-safe append-only log backed by one
// JSONL file. All access is serialized by one mutex.
type Journal struct {
	logger *zap.Logger

	mu      sync.Mutex
	path    string
	file    *os.File
	lastSeq uint64
}

type wireEvent struct {
	Seq      uint64         `json:"seq"`
	TsMs     int64          `json:"ts_ms"`
	Type     string         `json:"type"`
	Market   string         `json:"market"`
	EntityID string         `json:"entity_id"`
	Payload  map[string]any `json:"payload"`
}

// Open scans path once to recover last_seq (0 if the file is empty or
// absent), then keeps a persistent append handle open.
func Open(logger *zap.Logger, path string) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("journal")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal: create directory: %w", err)
		}
	}

	lastSeq, err := scanLastSeq(path)
	if err != nil {
		return nil, fmt.Errorf("journal: scan: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}

	return &Journal{
		logger:  logger,
		path:    path,
		file:    f,
		lastSeq: lastSeq,
	}, nil
}

// scanLastSeq reads every line of path, tolerating malformed lines,
// returning the highest seq observed. A partially written trailing line
// fails to parse and is dropped, which is the journal's crash-safety
// guarantee.
func scanLastSeq(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var maxSeq uint64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var w wireEvent
		if err := json.Unmarshal(scanner.Bytes(), &w); err != nil {
			continue
		}
		if w.Seq > maxSeq {
			maxSeq = w.Seq
		}
	}
	return maxSeq, nil
}

// Append assigns the event seq = lastSeq+1, serializes it as one JSON line,
// flushes, and commits lastSeq. On I/O failure it returns false and
// lastSeq is left unchanged.
func (j *Journal) Append(event types.JournalEvent) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	event.Seq = j.lastSeq + 1

	w := wireEvent{
		Seq:      event.Seq,
		TsMs:     event.TsMs,
		Type:     string(event.Type),
		Market:   event.Market,
		EntityID: event.EntityID,
		Payload:  event.Payload,
	}

	line, err := json.Marshal(w)
	if err != nil {
		j.logger.Error("failed to marshal journal event", zap.Error(err))
		return false
	}
	line = append(line, '\n')

	if _, err := j.file.Write(line); err != nil {
		j.logger.Error("failed to append journal event", zap.Error(err))
		return false
	}
	if err := j.file.Sync(); err != nil {
		j.logger.Error("failed to flush journal event", zap.Error(err))
		return false
	}

	j.lastSeq = event.Seq
	return true
}

// ReadFrom re-scans the file and returns every event with seq >= seqInclusive,
// in file order, tolerating malformed lines.
func (j *Journal) ReadFrom(seqInclusive uint64) ([]types.JournalEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("journal: readFrom open: %w", err)
	}
	defer f.Close()

	var out []types.JournalEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var w wireEvent
		if err := json.Unmarshal(scanner.Bytes(), &w); err != nil {
			continue
		}
		if w.Seq < seqInclusive {
			continue
		}
		out = append(out, types.JournalEvent{
			Seq:      w.Seq,
			TsMs:     w.TsMs,
			Type:     normalizeType(w.Type),
			Market:   w.Market,
			EntityID: w.EntityID,
			Payload:  w.Payload,
		})
	}
	return out, nil
}

func normalizeType(raw string) types.JournalEventType {
	switch types.JournalEventType(raw) {
	case types.EventOrderSubmitted,
		types.EventOrderUpdated,
		types.EventFillApplied,
		types.EventPositionOpened,
		types.EventPositionReduced,
		types.EventPositionClosed,
		types.EventPolicyChanged:
		return types.JournalEventType(raw)
	default:
		return types.EventOrderUpdated
	}
}

// LastSeq returns the highest seq committed so far.
func (j *Journal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastSeq
}

// Close releases the underlying file handle.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
