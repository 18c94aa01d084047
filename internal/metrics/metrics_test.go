package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"prospector.ai/internal/sim/world"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

type fakeQueue struct {
	depth   int
	dropped uint64
}

func (q fakeQueue) QueueDepth() int { return q.depth }
func (q fakeQueue) Dropped() uint64 { return q.dropped }

func TestMetrics_RecordBreak(t *testing.T) {
	m := New()
	m.RecordBreak(world.BreakLogEntry{Held: "temporalprospectingpick",
		Report: &prospecting.Report{Scanned: true, Mode: prospecting.ToolModeShort, Resource: "galena", Found: 4, Cells: 29791}})
	m.RecordBreak(world.BreakLogEntry{Held: "temporalprospectingpick",
		Report: &prospecting.Report{Mode: prospecting.ToolModeLong, Skip: prospecting.SkipNoResource}})
	m.RecordBreak(world.BreakLogEntry{})

	if got := testutil.ToFloat64(m.breaks.WithLabelValues("pick")); got != 2 {
		t.Fatalf("expected 2 pick breaks, got %v", got)
	}
	if got := testutil.ToFloat64(m.breaks.WithLabelValues("hand")); got != 1 {
		t.Fatalf("expected 1 hand break, got %v", got)
	}
	if got := testutil.ToFloat64(m.scans.WithLabelValues("2", "no_resource")); got != 1 {
		t.Fatalf("expected one no_resource scan, got %v", got)
	}
	if got := testutil.ToFloat64(m.nodesFound.WithLabelValues("galena")); got != 4 {
		t.Fatalf("expected 4 galena nodes, got %v", got)
	}
	if got := testutil.ToFloat64(m.cellsVisited); got != 29791 {
		t.Fatalf("expected 29791 cells, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordCraft(world.CraftLogEntry{RecipeID: "temporalpick_from_ore"})
	m.SessionOpened()
	m.WatchQueue("index", fakeQueue{depth: 3, dropped: 7})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	body := string(b)
	for _, want := range []string{
		`prospector_crafts_total{recipe="temporalpick_from_ore"} 1`,
		`prospector_sessions 1`,
		`prospector_queue_depth{queue="index"} 3`,
		`prospector_queue_dropped_total{queue="index"} 7`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
