package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	persistlog "prospector.ai/internal/persistence/log"
	"prospector.ai/internal/sim/catalogs"
	"prospector.ai/internal/sim/tuning"
	"prospector.ai/internal/sim/world"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

// recordWorld writes meta.json plus a break log whose scans were computed on
// a world generated from the same tuning.
func recordWorld(t *testing.T, cats *catalogs.Catalogs, corrupt bool) string {
	t.Helper()
	dir := t.TempDir()
	tune := tuning.Defaults()
	tune.Seed = 21
	b, _ := json.Marshal(worldMeta{WorldID: "w", Tuning: tune})
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}

	live, err := world.New(world.ConfigFromTuning("w", tune), cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	l := persistlog.NewBreakLogger(dir)
	for i, pos := range []world.Vec3i{{X: 0, Y: 30, Z: 0}, {X: 0, Y: 29, Z: 0}, {X: 3, Y: 20, Z: -3}} {
		e := world.BreakLogEntry{Seq: uint64(i + 1), Pos: pos}
		if i != 1 {
			e.Report = &prospecting.Report{Scanned: true, Radius: 15, Resource: "nativecopper"}
		}
		found, _ := live.ReplayBreak(e)
		if e.Report != nil {
			e.Report.Found = found
			if corrupt && i == 2 {
				e.Report.Found = found + 1
			}
		}
		if err := l.WriteBreak(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return dir
}

func TestReplay_Verifies(t *testing.T) {
	cats, err := catalogs.Load("../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	res, err := replay(recordWorld(t, cats, false), cats, 0, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Breaks != 3 || res.Checked != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestReplay_DetectsMismatch(t *testing.T) {
	cats, err := catalogs.Load("../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	dir := recordWorld(t, cats, true)
	if _, err := replay(dir, cats, 0, 0); err == nil || !strings.Contains(err.Error(), "seq 3") {
		t.Fatalf("expected mismatch at seq 3, got %v", err)
	}
	res, err := replay(dir, cats, 0, 2)
	if err != nil {
		t.Fatalf("replay up to seq 2: %v", err)
	}
	if res.Breaks != 2 {
		t.Fatalf("expected 2 breaks before stop, got %+v", res)
	}
}
