package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"prospector.ai/internal/metrics"
	persistlog "prospector.ai/internal/persistence/log"
	"prospector.ai/internal/sim/catalogs"
	"prospector.ai/internal/sim/tuning"
	"prospector.ai/internal/sim/world"
	"prospector.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 0, "world seed override (0 keeps the tuning seed)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite prospect index")
		disableLog = flag.Bool("disable_log", false, "disable the compressed break/craft logs")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	tune, existing, err := worldTuning(worldDir, tune, *seed)
	if err != nil {
		logger.Fatalf("world meta: %v", err)
	}

	w, err := world.New(world.ConfigFromTuning(*worldID, tune), cats)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	w.SetLogf(logger.Printf)
	if existing {
		n, err := resumeWorld(w, worldDir)
		if err != nil {
			logger.Fatalf("resume: %v", err)
		}
		logger.Printf("resumed world=%s breaks=%d last_seq=%d", *worldID, n, w.LastSeq())
	} else if err := writeWorldMeta(worldDir, *worldID, tune); err != nil {
		logger.Printf("world meta: %v", err)
	}

	m := metrics.New()
	w.AddRecorder(m)

	if !*disableLog {
		bl := persistlog.NewBreakLogger(worldDir)
		defer bl.Close()
		w.SetBreakLogger(bl)
		cl := persistlog.NewCraftLogger(worldDir, func(err error) { logger.Printf("craft log: %v", err) })
		defer cl.Close()
		w.AddRecorder(cl)
	}

	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		w.AddRecorder(idx)
		m.WatchQueue("index", idx)
	}

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, logger)
	wsSrv.SetHooks(m)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			WorldID string `json:"world_id"`
			Tick    uint64 `json:"tick"`
			Seed    int64  `json:"seed"`
		}{
			WorldID: *worldID,
			Tick:    w.CurrentTick(),
			Seed:    tune.Seed,
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s world=%s seed=%d", *addr, *worldID, tune.Seed)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	<-worldDone
}

// worldMeta lets the replay tool regenerate the same terrain.
type worldMeta struct {
	WorldID string        `json:"world_id"`
	Tuning  tuning.Tuning `json:"tuning"`
}

func writeWorldMeta(worldDir, worldID string, tune tuning.Tuning) error {
	b, err := json.MarshalIndent(worldMeta{WorldID: worldID, Tuning: tune}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(worldDir, "meta.json"), b, 0o644)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
