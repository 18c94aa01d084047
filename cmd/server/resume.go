package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	persistlog "prospector.ai/internal/persistence/log"
	"prospector.ai/internal/sim/tuning"
	"prospector.ai/internal/sim/world"
)

// readWorldMeta returns the tuning a world was created with, or ok=false for
// a new world directory.
func readWorldMeta(worldDir string) (worldMeta, bool, error) {
	b, err := os.ReadFile(filepath.Join(worldDir, "meta.json"))
	if errors.Is(err, os.ErrNotExist) {
		return worldMeta{}, false, nil
	}
	if err != nil {
		return worldMeta{}, false, err
	}
	var m worldMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return worldMeta{}, false, fmt.Errorf("meta.json: %w", err)
	}
	return m, true, nil
}

// worldTuning keeps the generation parameters of an existing world so its
// terrain matches the break log. A conflicting -seed is an error.
func worldTuning(worldDir string, tune tuning.Tuning, seedOverride int64) (tuning.Tuning, bool, error) {
	m, ok, err := readWorldMeta(worldDir)
	if err != nil || !ok {
		return tune, false, err
	}
	if seedOverride != 0 && seedOverride != m.Tuning.Seed {
		return tune, false, fmt.Errorf("world was created with seed %d, got -seed %d", m.Tuning.Seed, seedOverride)
	}
	return m.Tuning, true, nil
}

// resumeWorld reapplies the break log of worldDir so a restarted server
// continues with the mined blocks gone and break seqs unbroken.
func resumeWorld(w *world.World, worldDir string) (int, error) {
	n := 0
	err := persistlog.ReadBreaks(worldDir, func(e world.BreakLogEntry) error {
		if err := w.RestoreBreak(e); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}
