package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"prospector.ai/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	player := fs.String("player", "", "player_id (reports)")
	catalog := fs.String("catalog", "blocks_palette", "catalog name (digest): blocks_palette|items_palette|blocks_defs|items_defs|recipes|tuning")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "totals"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}

	r, err := indexdb.OpenReader(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := runQuery(ctx, os.Stdout, r, q, dbQueryArgs{Player: *player, Catalog: *catalog, Limit: *limit}); err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
}

type dbQueryArgs struct {
	Player  string
	Catalog string
	Limit   int
}

func runQuery(ctx context.Context, out io.Writer, r *indexdb.Reader, q string, a dbQueryArgs) error {
	var v any
	switch q {
	case "reports":
		if strings.TrimSpace(a.Player) == "" {
			return fmt.Errorf("reports needs -player")
		}
		rows, err := r.ReportsByPlayer(ctx, a.Player, a.Limit)
		if err != nil {
			return err
		}
		v = rows
	case "totals":
		rows, err := r.ResourceTotals(ctx)
		if err != nil {
			return err
		}
		v = rows
	case "digest":
		d, err := r.CatalogDigest(ctx, a.Catalog)
		if err != nil {
			return err
		}
		v = map[string]string{"name": a.Catalog, "digest": d}
	default:
		return fmt.Errorf("unknown query: %s (want reports|totals|digest)", q)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
