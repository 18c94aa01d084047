package world

import (
	"fmt"

	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

// ReplayBreak reapplies a logged break to a freshly generated world and
// re-runs its scan. It returns the recomputed node count, or ok=false when
// the logged entry did not scan. Not safe while Run is active.
func (w *World) ReplayBreak(e BreakLogEntry) (found int, ok bool) {
	w.chunks.SetBlock(e.Pos, w.chunks.gen.Air)
	if e.Report == nil || !e.Report.Scanned {
		return 0, false
	}
	return prospecting.Scan(w, e.Pos, e.Report.Radius, e.Report.Resource, nil), true
}

// RestoreBreak reapplies a logged break without scanning and resumes break
// sequence and player numbering after it. Entries must arrive in log order.
// Must be called before Run.
func (w *World) RestoreBreak(e BreakLogEntry) error {
	if e.Seq != w.seq+1 {
		return fmt.Errorf("restore: seq gap: want=%d got=%d", w.seq+1, e.Seq)
	}
	w.chunks.SetBlock(e.Pos, w.chunks.gen.Air)
	w.seq = e.Seq
	var n uint64
	if _, err := fmt.Sscanf(e.PlayerID, "P%d", &n); err == nil && n > w.nextPlayer {
		w.nextPlayer = n
	}
	return nil
}

// LastSeq is the seq of the most recent break.
func (w *World) LastSeq() uint64 { return w.seq }
