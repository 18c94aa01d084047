package world

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"prospector.ai/internal/protocol"
	"prospector.ai/internal/sim/catalogs"
	"prospector.ai/internal/sim/tuning"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

type Vec3i = prospecting.Pos

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64
	Height     int
	BoundaryR  int
	SeaLevel   int
	MaxSlots   int

	Terrain     tuning.Terrain
	Ores        []tuning.OreGen
	Prospecting tuning.Prospecting
	Starter     map[string]int
}

func ConfigFromTuning(id string, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:          id,
		TickRateHz:  t.TickRateHz,
		Seed:        t.Seed,
		Height:      t.Height,
		BoundaryR:   t.BoundaryR,
		SeaLevel:    t.SeaLevel,
		MaxSlots:    t.MaxSlots,
		Terrain:     t.Terrain,
		Ores:        t.Ores,
		Prospecting: t.Prospecting,
		Starter:     t.Starter,
	}
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome   protocol.WelcomeMsg
	Inventory protocol.InventoryMsg
}

type ActionEnvelope struct {
	PlayerID string
	Act      protocol.ActMsg
}

// BreakLogger persists every accepted BREAK. Implemented in internal/persistence/log.
type BreakLogger interface {
	WriteBreak(entry BreakLogEntry) error
}

// Recorder observes breaks and crafts off the persistence path (index, metrics).
// Calls happen on the world goroutine and must not block.
type Recorder interface {
	RecordBreak(entry BreakLogEntry)
	RecordCraft(entry CraftLogEntry)
}

type BreakLogEntry struct {
	Seq      uint64              `json:"seq"`
	Tick     uint64              `json:"tick"`
	PlayerID string              `json:"player_id"`
	Pos      Vec3i               `json:"pos"`
	Block    string              `json:"block"`
	Held     string              `json:"held,omitempty"`
	Report   *prospecting.Report `json:"report,omitempty"`
	At       time.Time           `json:"at"`
}

type CraftLogEntry struct {
	Tick     uint64    `json:"tick"`
	PlayerID string    `json:"player_id"`
	RecipeID string    `json:"recipe_id"`
	Output   string    `json:"output"`
	Resource string    `json:"resource,omitempty"`
	At       time.Time `json:"at"`
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs

	tick atomic.Uint64
	seq  uint64

	chunks *ChunkStore
	pick   *prospecting.Pick

	players    map[string]*Player
	nextPlayer uint64

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	// Optional (may be nil / empty).
	breakLogger BreakLogger
	recorders   []Recorder
	logf        func(format string, args ...any)
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("world: nil catalogs")
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	if cfg.MaxSlots <= 0 {
		cfg.MaxSlots = 16
	}
	gen, err := NewTerrainGen(cfg.Seed, cfg.SeaLevel, cfg.Terrain, cfg.Ores, cats.Blocks)
	if err != nil {
		return nil, err
	}
	w := &World{
		cfg:      cfg,
		catalogs: cats,
		chunks:   NewChunkStore(gen, cfg.Height, cfg.BoundaryR),
		players:  map[string]*Player{},
		inbox:    make(chan ActionEnvelope, 1024),
		join:     make(chan JoinRequest, 64),
		leave:    make(chan string, 64),
		stop:     make(chan struct{}),
	}
	p := cfg.Prospecting
	w.pick = &prospecting.Pick{
		World:   w,
		Effects: w,
		Notify:  w,
		Damager: w,
		Rand:    rand.New(rand.NewSource(cfg.Seed)),
		Style: prospecting.ParticleStyle{
			Quantity:   p.ParticleQuantity,
			LifeLength: p.ParticleLife,
			AddLife:    p.ParticleAddLife,
		},
		Channel:       prospecting.Channel(p.Channel),
		DamageDivisor: p.DamageDivisor,
	}
	return w, nil
}

func (w *World) SetBreakLogger(l BreakLogger)               { w.breakLogger = l }
func (w *World) AddRecorder(r Recorder)                     { w.recorders = append(w.recorders, r) }
func (w *World) SetLogf(f func(format string, args ...any)) { w.logf = f }
func (w *World) Inbox() chan<- ActionEnvelope               { return w.inbox }
func (w *World) Join() chan<- JoinRequest                   { return w.join }
func (w *World) Leave() chan<- string                       { return w.leave }
func (w *World) CurrentTick() uint64                        { return w.tick.Load() }
func (w *World) Config() WorldConfig                        { return w.cfg }
func (w *World) Catalogs() *catalogs.Catalogs               { return w.catalogs }

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingActions)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingActions = pendingActions[:0]
		}
	}
}

func (w *World) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}

// step applies one tick: joins, then actions in arrival order, then leaves.
func (w *World) step(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	nowTick := w.tick.Load()
	for _, req := range joins {
		resp := w.joinPlayer(req)
		if req.Resp != nil {
			req.Resp <- resp
		}
	}
	for _, env := range actions {
		p := w.players[env.PlayerID]
		if p == nil {
			continue
		}
		ack := w.applyAct(nowTick, p, env.Act)
		w.sendTo(p, ack)
	}
	for _, id := range leaves {
		delete(w.players, id)
	}
	w.tick.Add(1)
}

func (w *World) debugf(format string, args ...any) {
	if w.logf != nil {
		w.logf(format, args...)
	}
}

// StepOnce runs a single tick synchronously. It must not be called while Run is active.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, actions []ActionEnvelope) uint64 {
	w.step(joins, leaves, actions)
	return w.tick.Load()
}

// DebugSetBlock places a catalog block at pos. Tests only; not safe while Run is active.
func (w *World) DebugSetBlock(pos Vec3i, code string) error {
	id, ok := w.catalogs.Blocks.Index[code]
	if !ok {
		return fmt.Errorf("unknown block: %s", code)
	}
	if !w.chunks.SetBlock(pos, id) {
		return fmt.Errorf("out of bounds: %+v", pos)
	}
	return nil
}

func (w *World) DebugGetBlock(pos Vec3i) (string, error) {
	if !w.chunks.inBounds(pos) {
		return "", fmt.Errorf("out of bounds: %+v", pos)
	}
	return w.catalogs.Blocks.Palette[w.chunks.GetBlock(pos)], nil
}

// DebugFill sets every cell of the inclusive box [min, max] to code.
func (w *World) DebugFill(min, max Vec3i, code string) error {
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				if err := w.DebugSetBlock(Vec3i{X: x, Y: y, Z: z}, code); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
