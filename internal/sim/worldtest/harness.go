package worldtest

import (
	"encoding/json"
	"testing"

	"prospector.ai/internal/protocol"
	"prospector.ai/internal/sim/catalogs"
	"prospector.ai/internal/sim/tuning"
	world "prospector.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Join() issues JoinRequest via StepOnce()
// - Act() issues one ACT via StepOnce() and returns its ACK
// - Per-player Out channels carry server messages, collected into Session
//
// It avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	W    *world.World

	DefaultPlayerID string

	sessions map[string]*Session
}

// Session is everything a player has received since the last Reset.
type Session struct {
	PlayerID  string
	Out       chan []byte
	Acks      []protocol.AckMsg
	Notifies  []protocol.NotifyMsg
	Particles []protocol.ParticlesMsg
	Inventory protocol.InventoryMsg
}

func (s *Session) Reset() {
	s.Acks = nil
	s.Notifies = nil
	s.Particles = nil
}

func LoadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

// TestConfig is the default tuning with a fixed seed and a small boundary.
func TestConfig() world.WorldConfig {
	cfg := world.ConfigFromTuning("test", tuning.Defaults())
	cfg.Seed = 7
	cfg.BoundaryR = 256
	return cfg
}

func NewHarness(t *testing.T, cfg world.WorldConfig, cats *catalogs.Catalogs, playerName string) *Harness {
	t.Helper()

	w, err := world.New(cfg, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	h := &Harness{
		T:        t,
		Cats:     cats,
		W:        w,
		sessions: map[string]*Session{},
	}
	h.DefaultPlayerID = h.Join(playerName)
	return h
}

func (h *Harness) Join(name string) string {
	h.T.Helper()

	// Long scans emit one particle per match; keep the buffer large enough.
	out := make(chan []byte, 1<<16)
	resp := make(chan world.JoinResponse, 1)
	h.W.StepOnce([]world.JoinRequest{{Name: name, Out: out, Resp: resp}}, nil, nil)
	jr := <-resp
	if jr.Welcome.PlayerID == "" {
		h.T.Fatalf("join returned empty player id")
	}
	s := &Session{PlayerID: jr.Welcome.PlayerID, Out: out, Inventory: jr.Inventory}
	h.sessions[s.PlayerID] = s
	return s.PlayerID
}

func (h *Harness) Session(playerID string) *Session {
	h.T.Helper()
	s := h.sessions[playerID]
	if s == nil {
		h.T.Fatalf("unknown player id: %q", playerID)
	}
	return s
}

func (h *Harness) Default() *Session { return h.Session(h.DefaultPlayerID) }

// Act applies act for playerID in one tick and returns the ACK.
func (h *Harness) Act(playerID string, act protocol.ActMsg) protocol.AckMsg {
	h.T.Helper()
	act.Type = protocol.TypeAct
	act.ProtocolVersion = protocol.Version
	h.W.StepOnce(nil, nil, []world.ActionEnvelope{{PlayerID: playerID, Act: act}})
	h.drainAll()

	s := h.Session(playerID)
	for i := len(s.Acks) - 1; i >= 0; i-- {
		if s.Acks[i].AckFor == act.ID {
			return s.Acks[i]
		}
	}
	h.T.Fatalf("no ACK for %q", act.ID)
	return protocol.AckMsg{}
}

func (h *Harness) drainAll() {
	for _, s := range h.sessions {
		h.drain(s)
	}
}

func (h *Harness) drain(s *Session) {
	for {
		select {
		case b := <-s.Out:
			h.route(s, b)
		default:
			return
		}
	}
}

func (h *Harness) route(s *Session, b []byte) {
	base, err := protocol.DecodeBase(b)
	if err != nil {
		h.T.Fatalf("decode: %v", err)
	}
	var target any
	switch base.Type {
	case protocol.TypeAck:
		var m protocol.AckMsg
		target = &m
		defer func() { s.Acks = append(s.Acks, m) }()
	case protocol.TypeNotify:
		var m protocol.NotifyMsg
		target = &m
		defer func() { s.Notifies = append(s.Notifies, m) }()
	case protocol.TypeParticles:
		var m protocol.ParticlesMsg
		target = &m
		defer func() { s.Particles = append(s.Particles, m) }()
	case protocol.TypeInventory:
		target = &s.Inventory
	default:
		h.T.Fatalf("unexpected message type %q", base.Type)
	}
	if err := json.Unmarshal(b, target); err != nil {
		h.T.Fatalf("unmarshal %s: %v", base.Type, err)
	}
}

// SlotOf returns the first slot holding item, or -1.
func (s *Session) SlotOf(item string) int {
	for _, v := range s.Inventory.Slots {
		if v.Item == item {
			return v.Slot
		}
	}
	return -1
}

func (s *Session) SlotView(slot int) (protocol.SlotView, bool) {
	for _, v := range s.Inventory.Slots {
		if v.Slot == slot {
			return v, true
		}
	}
	return protocol.SlotView{}, false
}
