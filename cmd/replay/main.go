package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	persistlog "prospector.ai/internal/persistence/log"
	"prospector.ai/internal/sim/catalogs"
	"prospector.ai/internal/sim/tuning"
	"prospector.ai/internal/sim/world"
)

func main() {
	var (
		worldDir  = flag.String("world_dir", "", "world data dir containing meta.json and prospects/")
		configDir = flag.String("configs", "./configs", "config directory")
		fromSeq   = flag.Uint64("from_seq", 0, "start verifying at seq (inclusive, optional)")
		toSeq     = flag.Uint64("to_seq", 0, "stop at seq (inclusive, optional)")
	)
	flag.Parse()

	if *worldDir == "" {
		fmt.Fprintln(os.Stderr, "missing -world_dir")
		os.Exit(2)
	}
	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	res, err := replay(*worldDir, cats, *fromSeq, *toSeq)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: breaks=%d scans_checked=%d nodes=%d\n", res.Breaks, res.Checked, res.Nodes)
}

type result struct {
	Breaks  int
	Checked int
	Nodes   int
}

type worldMeta struct {
	WorldID string        `json:"world_id"`
	Tuning  tuning.Tuning `json:"tuning"`
}

var errStop = errors.New("stop")

// replay regenerates the world from its recorded tuning, reapplies every
// logged break in order and checks each logged scan count.
func replay(worldDir string, cats *catalogs.Catalogs, fromSeq, toSeq uint64) (result, error) {
	var res result
	b, err := os.ReadFile(filepath.Join(worldDir, "meta.json"))
	if err != nil {
		return res, err
	}
	var meta worldMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		return res, fmt.Errorf("meta.json: %w", err)
	}
	w, err := world.New(world.ConfigFromTuning(meta.WorldID, meta.Tuning), cats)
	if err != nil {
		return res, err
	}

	var lastSeq uint64
	err = persistlog.ReadBreaks(worldDir, func(e world.BreakLogEntry) error {
		if toSeq != 0 && e.Seq > toSeq {
			return errStop
		}
		if e.Seq != lastSeq+1 {
			return fmt.Errorf("seq gap: want=%d got=%d", lastSeq+1, e.Seq)
		}
		lastSeq = e.Seq
		res.Breaks++

		found, scanned := w.ReplayBreak(e)
		if !scanned || e.Seq < fromSeq {
			return nil
		}
		res.Checked++
		res.Nodes += found
		if found != e.Report.Found {
			return fmt.Errorf("seq %d at %+v: found %d %s nodes, log says %d", e.Seq, e.Pos, found, e.Report.Resource, e.Report.Found)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return res, err
	}
	return res, nil
}
