package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"prospector.ai/internal/sim/world"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

func TestBreakLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewBreakLogger(dir)
	base := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	step := 0
	l.w.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * 30 * time.Second)
	}

	in := []world.BreakLogEntry{
		{Seq: 1, PlayerID: "P1", Pos: world.Vec3i{X: 1, Y: 2, Z: 3}, Block: "rock-granite", Held: "temporalprospectingpick",
			Report: &prospecting.Report{Scanned: true, Radius: 15, Resource: "nativecopper", Found: 4}},
		{Seq: 2, PlayerID: "P1", Pos: world.Vec3i{X: 4, Y: 5, Z: 6}, Block: "soil-medium-normal"},
		{Seq: 3, PlayerID: "P2", Pos: world.Vec3i{X: -7, Y: 8, Z: 9}, Block: "ore-rich-galena-granite"},
	}
	for _, e := range in {
		if err := l.WriteBreak(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "prospects", "*.jsonl.zst"))
	if len(files) != 2 {
		t.Fatalf("expected rotation into 2 hourly files, got %v", files)
	}

	var got []world.BreakLogEntry
	if err := ReadBreaks(dir, func(e world.BreakLogEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("expected %d entries, got %d", len(in), len(got))
	}
	for i := range in {
		if got[i].Seq != in[i].Seq || got[i].Pos != in[i].Pos || got[i].Block != in[i].Block {
			t.Fatalf("entry %d mismatch: %+v", i, got[i])
		}
	}
	if got[0].Report == nil || got[0].Report.Found != 4 {
		t.Fatalf("expected report to survive, got %+v", got[0].Report)
	}
}

func TestBreakLogger_AppendsAcrossSessions(t *testing.T) {
	dir := t.TempDir()
	fixed := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	for i := 1; i <= 2; i++ {
		l := NewBreakLogger(dir)
		l.w.now = fixed
		if err := l.WriteBreak(world.BreakLogEntry{Seq: uint64(i)}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	n := 0
	if err := ReadBreaks(dir, func(world.BreakLogEntry) error { n++; return nil }); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 entries across appended frames, got %d", n)
	}
}

func TestReadBreaks_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "prospects"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := ReadBreaks(dir, func(world.BreakLogEntry) error {
		t.Fatalf("unexpected entry")
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestCraftLogger_RecordCraft(t *testing.T) {
	dir := t.TempDir()
	var errs []error
	l := NewCraftLogger(dir, func(err error) { errs = append(errs, err) })
	l.RecordCraft(world.CraftLogEntry{PlayerID: "P1", RecipeID: "temporalpick_from_nugget", Output: "temporalprospectingpick", Resource: "galena"})
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	var got []world.CraftLogEntry
	if err := ReadCrafts(dir, func(e world.CraftLogEntry) error { got = append(got, e); return nil }); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Resource != "galena" {
		t.Fatalf("unexpected crafts: %+v", got)
	}
}
