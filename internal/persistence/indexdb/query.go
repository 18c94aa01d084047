package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// Reader runs read-only queries against an index file, typically from the
// admin tool while the server keeps writing.
type Reader struct {
	db *sql.DB
}

func OpenReader(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

type BreakRow struct {
	Seq      uint64 `json:"seq"`
	Tick     uint64 `json:"tick"`
	PlayerID string `json:"player_id"`
	Pos      [3]int `json:"pos"`
	Block    string `json:"block"`
	Held     string `json:"held,omitempty"`
	Scanned  bool   `json:"scanned"`
	Mode     int    `json:"mode"`
	Radius   int    `json:"radius"`
	Resource string `json:"resource,omitempty"`
	Found    int    `json:"found"`
	Damage   int    `json:"damage"`
	Skip     string `json:"skip,omitempty"`
	At       string `json:"at"`
}

// ReportsByPlayer returns the newest breaks of playerID first.
func (r *Reader) ReportsByPlayer(ctx context.Context, playerID string, limit int) ([]BreakRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT seq,tick,player_id,x,y,z,block,held,scanned,mode,radius,resource,found,damage,skip,at
		FROM breaks WHERE player_id = ? ORDER BY seq DESC LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BreakRow
	for rows.Next() {
		var b BreakRow
		var scanned int
		if err := rows.Scan(&b.Seq, &b.Tick, &b.PlayerID, &b.Pos[0], &b.Pos[1], &b.Pos[2], &b.Block, &b.Held,
			&scanned, &b.Mode, &b.Radius, &b.Resource, &b.Found, &b.Damage, &b.Skip, &b.At); err != nil {
			return nil, err
		}
		b.Scanned = scanned != 0
		out = append(out, b)
	}
	return out, rows.Err()
}

type ResourceTotal struct {
	Resource string `json:"resource"`
	Scans    int    `json:"scans"`
	Found    int    `json:"found"`
}

// ResourceTotals aggregates completed scans per resource, most found first.
func (r *Reader) ResourceTotals(ctx context.Context) ([]ResourceTotal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT resource, COUNT(*), COALESCE(SUM(found),0)
		FROM breaks WHERE scanned = 1 GROUP BY resource ORDER BY 3 DESC, 1 ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResourceTotal
	for rows.Next() {
		var t ResourceTotal
		if err := rows.Scan(&t.Resource, &t.Scans, &t.Found); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CatalogDigest returns the stored digest for a catalog row.
func (r *Reader) CatalogDigest(ctx context.Context, name string) (string, error) {
	var d string
	err := r.db.QueryRowContext(ctx, `SELECT digest FROM catalogs WHERE name = ?`, name).Scan(&d)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("catalog %q not indexed", name)
	}
	return d, err
}
