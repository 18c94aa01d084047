package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	persistlog "prospector.ai/internal/persistence/log"
	"prospector.ai/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "logs":
			logsCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

// logsCmd dumps the compressed break or craft log as plain JSONL.
func logsCmd(args []string) {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required)")
	kind := fs.String("kind", "prospects", "log kind: prospects|crafts")
	player := fs.String("player", "", "player_id filter (optional)")
	scansOnly := fs.Bool("scans_only", false, "prospects: only breaks that ran a scan")
	_ = fs.Parse(args)

	if strings.TrimSpace(*worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}
	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := dumpLogs(os.Stdout, worldDir, *kind, *player, *scansOnly); err != nil {
		fmt.Fprintln(os.Stderr, "logs:", err)
		os.Exit(1)
	}
}

func dumpLogs(out io.Writer, worldDir, kind, player string, scansOnly bool) error {
	enc := json.NewEncoder(out)
	switch kind {
	case "prospects":
		return persistlog.ReadBreaks(worldDir, func(e world.BreakLogEntry) error {
			if player != "" && e.PlayerID != player {
				return nil
			}
			if scansOnly && (e.Report == nil || !e.Report.Scanned) {
				return nil
			}
			return enc.Encode(e)
		})
	case "crafts":
		return persistlog.ReadCrafts(worldDir, func(e world.CraftLogEntry) error {
			if player != "" && e.PlayerID != player {
				return nil
			}
			return enc.Encode(e)
		})
	default:
		return fmt.Errorf("unknown log kind: %s", kind)
	}
}
