package log

import (
	"path/filepath"

	"prospector.ai/internal/sim/world"
)

const (
	breaksDir    = "prospects"
	breaksPrefix = "prospects"
	craftsDir    = "crafts"
	craftsPrefix = "crafts"
)

// BreakLogger writes one JSONL entry per accepted break (compressed).
type BreakLogger struct{ w *JSONLZstdWriter }

func NewBreakLogger(worldDir string) *BreakLogger {
	return &BreakLogger{w: NewJSONLZstdWriter(filepath.Join(worldDir, breaksDir), breaksPrefix)}
}

func (l *BreakLogger) WriteBreak(v world.BreakLogEntry) error { return l.w.Write(v) }
func (l *BreakLogger) Close() error                           { return l.w.Close() }

// CraftLogger records crafts as a world.Recorder. Write errors go to onErr.
type CraftLogger struct {
	w     *JSONLZstdWriter
	onErr func(error)
}

func NewCraftLogger(worldDir string, onErr func(error)) *CraftLogger {
	return &CraftLogger{w: NewJSONLZstdWriter(filepath.Join(worldDir, craftsDir), craftsPrefix), onErr: onErr}
}

func (l *CraftLogger) RecordBreak(world.BreakLogEntry) {}

func (l *CraftLogger) RecordCraft(v world.CraftLogEntry) {
	if err := l.w.Write(v); err != nil && l.onErr != nil {
		l.onErr(err)
	}
}

func (l *CraftLogger) Close() error { return l.w.Close() }

// ReadBreaks replays the break log of worldDir in write order.
func ReadBreaks(worldDir string, fn func(world.BreakLogEntry) error) error {
	return ReadEach(filepath.Join(worldDir, breaksDir), breaksPrefix, fn)
}

func ReadCrafts(worldDir string, fn func(world.CraftLogEntry) error) error {
	return ReadEach(filepath.Join(worldDir, craftsDir), craftsPrefix, fn)
}
