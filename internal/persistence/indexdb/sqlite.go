package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"prospector.ai/internal/sim/catalogs"
	"prospector.ai/internal/sim/tuning"
	"prospector.ai/internal/sim/world"
)

// SQLiteIndex is a queryable secondary index of breaks and crafts. Writes are
// queued to a single writer goroutine; the JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropBreak atomic.Uint64
	dropCraft atomic.Uint64
	written   atomic.Uint64
	failed    atomic.Uint64
}

var errNoStmt = errors.New("indexdb: statement not prepared")

type reqKind int

const (
	reqBreak reqKind = iota + 1
	reqCraft
)

type req struct {
	kind reqKind

	brk   world.BreakLogEntry
	craft world.CraftLogEntry
}

type Stats struct {
	QueueDepth     int
	QueueCapacity  int
	DropBreakTotal uint64
	DropCraftTotal uint64
	WrittenTotal   uint64
	WriteFailTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	return openSQLite(path, 65536)
}

func openSQLite(path string, queue int) (*SQLiteIndex, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, queue),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func openDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only workload of a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS breaks (
			seq INTEGER PRIMARY KEY,
			tick INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			block TEXT NOT NULL,
			held TEXT NOT NULL,
			scanned INTEGER NOT NULL,
			mode INTEGER NOT NULL,
			radius INTEGER NOT NULL,
			resource TEXT NOT NULL,
			found INTEGER NOT NULL,
			cells INTEGER NOT NULL,
			damage INTEGER NOT NULL,
			skip TEXT NOT NULL,
			at TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_breaks_player_seq ON breaks(player_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_breaks_resource ON breaks(resource, scanned);`,
		`CREATE TABLE IF NOT EXISTS crafts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			recipe_id TEXT NOT NULL,
			output TEXT NOT NULL,
			resource TEXT NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_crafts_player ON crafts(player_id, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordBreak queues entry without blocking; it is dropped when the queue is full.
func (s *SQLiteIndex) RecordBreak(entry world.BreakLogEntry) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqBreak, brk: entry}:
	default:
		s.dropBreak.Add(1)
	}
}

func (s *SQLiteIndex) RecordCraft(entry world.CraftLogEntry) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqCraft, craft: entry}:
	default:
		s.dropCraft.Add(1)
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropBreakTotal: s.dropBreak.Load(),
		DropCraftTotal: s.dropCraft.Load(),
		WrittenTotal:   s.written.Load(),
		WriteFailTotal: s.failed.Load(),
	}
}

// UpsertCatalogs stores the catalogs and tuning in effect, keyed by digest.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil || cats == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	read := func(name, file, digest string) {
		if configDir == "" {
			return
		}
		b, err := os.ReadFile(filepath.Join(configDir, file))
		if err != nil {
			return
		}
		rows = append(rows, kv{name: name, digest: digest, json: b})
	}
	read("blocks_defs", "blocks.json", cats.Blocks.DefsDigest)
	read("items_defs", "items.json", cats.Items.DefsDigest)
	read("recipes", "recipes.json", cats.Recipes.Digest)
	if b, _ := json.Marshal(cats.Blocks.Palette); len(b) > 0 {
		rows = append(rows, kv{name: "blocks_palette", digest: cats.Blocks.PaletteDigest, json: b})
	}
	if b, _ := json.Marshal(cats.Items.Palette); len(b) > 0 {
		rows = append(rows, kv{name: "items_palette", digest: cats.Items.PaletteDigest, json: b})
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertBreak, _ := s.db.Prepare(`INSERT OR REPLACE INTO breaks(seq,tick,player_id,x,y,z,block,held,scanned,mode,radius,resource,found,cells,damage,skip,at,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertCraft, _ := s.db.Prepare(`INSERT INTO crafts(tick,player_id,recipe_id,output,resource,at) VALUES(?,?,?,?,?,?)`)
	defer func() {
		if insertBreak != nil {
			_ = insertBreak.Close()
		}
		if insertCraft != nil {
			_ = insertCraft.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 1000
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.failed.Add(uint64(opCount))
		} else {
			s.written.Add(uint64(opCount))
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		s.failed.Add(uint64(opCount) + 1)
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	// An idle queue must not hold the write transaction open indefinitely.
	ticker := time.NewTicker(commitMaxWait)
	defer ticker.Stop()

	for {
		var r req
		select {
		case rr, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			r = rr
		case <-ticker.C:
			commit()
			continue
		}

		begin()
		if tx == nil {
			s.failed.Add(1)
			continue
		}
		var err error
		switch r.kind {
		case reqBreak:
			if insertBreak == nil {
				err = errNoStmt
				break
			}
			err = execBreak(tx.Stmt(insertBreak), r.brk)
		case reqCraft:
			if insertCraft == nil {
				err = errNoStmt
				break
			}
			c := r.craft
			_, err = tx.Stmt(insertCraft).Exec(int64(c.Tick), c.PlayerID, c.RecipeID, c.Output, c.Resource, c.At.UTC().Format(time.RFC3339Nano))
		}
		if err != nil {
			rollback()
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}
}

func execBreak(stmt *sql.Stmt, e world.BreakLogEntry) error {
	raw, _ := json.Marshal(e)
	var (
		scanned                            int
		mode, radius, found, cells, damage int
		resource, skip                     string
	)
	if rep := e.Report; rep != nil {
		if rep.Scanned {
			scanned = 1
		}
		mode, radius, found, cells, damage = int(rep.Mode), rep.Radius, rep.Found, rep.Cells, rep.Damage
		resource, skip = rep.Resource, string(rep.Skip)
	}
	_, err := stmt.Exec(
		int64(e.Seq), int64(e.Tick), e.PlayerID,
		e.Pos.X, e.Pos.Y, e.Pos.Z,
		e.Block, e.Held,
		scanned, mode, radius, resource, found, cells, damage, skip,
		e.At.UTC().Format(time.RFC3339Nano),
		string(raw),
	)
	return err
}

func (s *SQLiteIndex) QueueDepth() int { return len(s.ch) }

func (s *SQLiteIndex) Dropped() uint64 { return s.dropBreak.Load() + s.dropCraft.Load() }
