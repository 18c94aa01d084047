package worldtest

import (
	"strings"
	"testing"

	"prospector.ai/internal/protocol"
	world "prospector.ai/internal/sim/world"
)

func intp(v int) *int { return &v }

func posp(p world.Vec3i) *[3]int { return &[3]int{p.X, p.Y, p.Z} }

// craftTemporalPick crafts a temporal pick from the default starter items and
// returns its slot.
func craftTemporalPick(t *testing.T, h *Harness) int {
	t.Helper()
	s := h.Default()
	pick := s.SlotOf("prospectingpick-copper")
	gear := s.SlotOf("temporalgear")
	nugget := s.SlotOf("nugget-nativecopper")
	if pick < 0 || gear < 0 || nugget < 0 {
		t.Fatalf("missing starter items: %+v", s.Inventory.Slots)
	}
	a := h.Act(h.DefaultPlayerID, protocol.ActMsg{
		ID:       "craft",
		Action:   protocol.ActionCraft,
		RecipeID: "temporalpick_from_nugget",
		Slots:    []int{pick, gear, nugget},
	})
	if !a.Accepted {
		t.Fatalf("craft rejected: %+v", a)
	}
	slot := s.SlotOf("temporalprospectingpick")
	if slot < 0 {
		t.Fatalf("crafted pick missing from inventory: %+v", s.Inventory.Slots)
	}
	return slot
}

func hold(t *testing.T, h *Harness, slot, mode int) {
	t.Helper()
	if a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "hold", Action: protocol.ActionSelectSlot, Slot: intp(slot)}); !a.Accepted {
		t.Fatalf("select slot rejected: %+v", a)
	}
	if a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "mode", Action: protocol.ActionSetToolMode, Mode: intp(mode)}); !a.Accepted {
		t.Fatalf("set tool mode rejected: %+v", a)
	}
}

func TestCraft_TemporalPickInheritsDurabilityAndResource(t *testing.T) {
	h := NewHarness(t, TestConfig(), LoadCatalogs(t), "crafter")
	slot := craftTemporalPick(t, h)

	v, _ := h.Default().SlotView(slot)
	if v.Durability != 200 {
		t.Fatalf("expected durability 200 from the copper pick, got %d", v.Durability)
	}
	if v.Resource != "nativecopper" {
		t.Fatalf("expected resource nativecopper, got %q", v.Resource)
	}
	if want := "Resource: nativecopper, Mode: Short radius (15 blocks)"; v.Description != want {
		t.Fatalf("expected description %q, got %q", want, v.Description)
	}
	if h.Default().SlotOf("prospectingpick-copper") >= 0 || h.Default().SlotOf("nugget-nativecopper") >= 0 {
		t.Fatalf("expected inputs to be consumed: %+v", h.Default().Inventory.Slots)
	}
	gear, _ := h.Default().SlotView(h.Default().SlotOf("temporalgear"))
	if gear.Count != 1 {
		t.Fatalf("expected one temporal gear left, got %d", gear.Count)
	}
}

func TestCraft_RejectsWrongIngredient(t *testing.T) {
	h := NewHarness(t, TestConfig(), LoadCatalogs(t), "crafter")
	s := h.Default()
	a := h.Act(h.DefaultPlayerID, protocol.ActMsg{
		ID:       "bad",
		Action:   protocol.ActionCraft,
		RecipeID: "temporalpick_from_nugget",
		Slots:    []int{s.SlotOf("temporalgear"), s.SlotOf("prospectingpick-copper"), s.SlotOf("nugget-nativecopper")},
	})
	if a.Accepted || a.Code != protocol.ErrNoResource {
		t.Fatalf("expected E_NO_RESOURCE, got %+v", a)
	}
}

func TestBreak_ReportsMatchingNodesWithinRadius(t *testing.T) {
	h := NewHarness(t, TestConfig(), LoadCatalogs(t), "prospector")
	slot := craftTemporalPick(t, h)
	hold(t, h, slot, 0)

	o := world.Vec3i{X: 0, Y: 60, Z: 0}
	if err := h.W.DebugFill(o.Add(-16, -16, -16), o.Add(16, 16, 16), "rock-granite"); err != nil {
		t.Fatalf("fill: %v", err)
	}
	for _, p := range []world.Vec3i{o.Add(3, 0, 0), o.Add(-5, 2, 7), o.Add(15, 15, 15), o.Add(16, 0, 0)} {
		if err := h.W.DebugSetBlock(p, "ore-poor-nativecopper-granite"); err != nil {
			t.Fatalf("set ore: %v", err)
		}
	}
	if err := h.W.DebugSetBlock(o.Add(1, 1, 1), "ore-poor-cassiterite-granite"); err != nil {
		t.Fatalf("set ore: %v", err)
	}
	h.Default().Reset()

	a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "b1", Action: protocol.ActionBreak, Pos: posp(o)})
	if !a.Accepted {
		t.Fatalf("break rejected: %+v", a)
	}
	s := h.Default()
	if len(s.Notifies) != 1 {
		t.Fatalf("expected one notification, got %+v", s.Notifies)
	}
	if want := "Found 3 nativecopper nodes within 15 blocks"; s.Notifies[0].Text != want {
		t.Fatalf("expected %q, got %q", want, s.Notifies[0].Text)
	}
	if s.Notifies[0].Channel != "general" || s.Notifies[0].ChatType != "notification" {
		t.Fatalf("unexpected notify routing: %+v", s.Notifies[0])
	}
	if len(s.Particles) != 3 {
		t.Fatalf("expected 3 particles, got %d", len(s.Particles))
	}
	for _, p := range s.Particles {
		if p.Pos != [3]float64{0.5, 60.5, 0.5} {
			t.Fatalf("expected particles to start at the break site center, got %v", p.Pos)
		}
	}
	v, _ := s.SlotView(slot)
	if v.Durability != 195 {
		t.Fatalf("expected durability 195 after a 15-block scan, got %d", v.Durability)
	}
	if got, _ := h.W.DebugGetBlock(o); got != "air" {
		t.Fatalf("expected break site to be air, got %q", got)
	}
}

func TestBreak_NoResourceSelected(t *testing.T) {
	cfg := TestConfig()
	cfg.Starter = map[string]int{"temporalprospectingpick": 1}
	h := NewHarness(t, cfg, LoadCatalogs(t), "prospector")
	hold(t, h, h.Default().SlotOf("temporalprospectingpick"), 1)

	o := world.Vec3i{X: 10, Y: 40, Z: 10}
	if err := h.W.DebugSetBlock(o, "rock-andesite"); err != nil {
		t.Fatalf("set: %v", err)
	}
	h.Default().Reset()
	if a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "b1", Action: protocol.ActionBreak, Pos: posp(o)}); !a.Accepted {
		t.Fatalf("break rejected: %+v", a)
	}
	s := h.Default()
	if len(s.Notifies) != 1 || s.Notifies[0].Text != "No resource selected for this pick" {
		t.Fatalf("expected no-resource notification, got %+v", s.Notifies)
	}
	if len(s.Particles) != 0 {
		t.Fatalf("expected no particles, got %d", len(s.Particles))
	}
	v, _ := s.SlotView(s.SlotOf("temporalprospectingpick"))
	if v.Durability != 990 {
		t.Fatalf("expected medium radius damage of 10, got durability %d", v.Durability)
	}
	if !strings.HasPrefix(v.Description, "Resource: none") {
		t.Fatalf("unexpected description %q", v.Description)
	}
}

func TestBreak_SoilDoesNotProspect(t *testing.T) {
	h := NewHarness(t, TestConfig(), LoadCatalogs(t), "prospector")
	slot := craftTemporalPick(t, h)
	hold(t, h, slot, 0)

	o := world.Vec3i{X: -3, Y: 50, Z: 4}
	if err := h.W.DebugSetBlock(o, "soil-medium-normal"); err != nil {
		t.Fatalf("set: %v", err)
	}
	h.Default().Reset()
	if a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "b1", Action: protocol.ActionBreak, Pos: posp(o)}); !a.Accepted {
		t.Fatalf("break rejected: %+v", a)
	}
	if n := len(h.Default().Notifies); n != 0 {
		t.Fatalf("expected no notification for soil, got %d", n)
	}
	v, _ := h.Default().SlotView(slot)
	if v.Durability != 195 {
		t.Fatalf("expected durability still charged, got %d", v.Durability)
	}
}

func TestBreak_Rejections(t *testing.T) {
	cfg := TestConfig()
	cfg.Starter = map[string]int{}
	h := NewHarness(t, cfg, LoadCatalogs(t), "hands")

	stone := world.Vec3i{X: 0, Y: 30, Z: 0}
	if err := h.W.DebugSetBlock(stone, "rock-granite"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "b1", Action: protocol.ActionBreak, Pos: posp(stone)}); a.Accepted || a.Code != protocol.ErrBlocked {
		t.Fatalf("expected E_BLOCKED breaking stone by hand, got %+v", a)
	}
	air := world.Vec3i{X: 0, Y: 31, Z: 0}
	if err := h.W.DebugSetBlock(air, "air"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "b2", Action: protocol.ActionBreak, Pos: posp(air)}); a.Accepted || a.Code != protocol.ErrInvalidTarget {
		t.Fatalf("expected E_INVALID_TARGET breaking air, got %+v", a)
	}
	out := world.Vec3i{X: 0, Y: -1, Z: 0}
	if a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "b3", Action: protocol.ActionBreak, Pos: posp(out)}); a.Accepted || a.Code != protocol.ErrInvalidTarget {
		t.Fatalf("expected E_INVALID_TARGET out of bounds, got %+v", a)
	}
	if a := h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "m1", Action: protocol.ActionSetToolMode, Mode: intp(1)}); a.Accepted {
		t.Fatalf("expected tool mode to be rejected with an empty hand")
	}
}

func TestSetToolMode_Clamps(t *testing.T) {
	h := NewHarness(t, TestConfig(), LoadCatalogs(t), "prospector")
	slot := h.Default().SlotOf("prospectingpick-copper")
	hold(t, h, slot, 9)
	v, _ := h.Default().SlotView(slot)
	if v.ToolMode == nil || *v.ToolMode != 2 {
		t.Fatalf("expected mode clamped to 2, got %v", v.ToolMode)
	}
	hold(t, h, slot, -4)
	v, _ = h.Default().SlotView(slot)
	if v.ToolMode == nil || *v.ToolMode != 0 {
		t.Fatalf("expected mode clamped to 0, got %v", v.ToolMode)
	}
}

type recordingLogger struct {
	breaks []world.BreakLogEntry
	crafts []world.CraftLogEntry
}

func (r *recordingLogger) WriteBreak(e world.BreakLogEntry) error {
	r.breaks = append(r.breaks, e)
	return nil
}
func (r *recordingLogger) RecordBreak(world.BreakLogEntry)   {}
func (r *recordingLogger) RecordCraft(e world.CraftLogEntry) { r.crafts = append(r.crafts, e) }

func TestBreak_LogsReport(t *testing.T) {
	h := NewHarness(t, TestConfig(), LoadCatalogs(t), "prospector")
	rec := &recordingLogger{}
	h.W.SetBreakLogger(rec)
	h.W.AddRecorder(rec)

	slot := craftTemporalPick(t, h)
	hold(t, h, slot, 0)
	o := world.Vec3i{X: 5, Y: 20, Z: 5}
	if err := h.W.DebugSetBlock(o, "rock-granite"); err != nil {
		t.Fatalf("set: %v", err)
	}
	h.Act(h.DefaultPlayerID, protocol.ActMsg{ID: "b1", Action: protocol.ActionBreak, Pos: posp(o)})

	if len(rec.crafts) != 1 || rec.crafts[0].Resource != "nativecopper" {
		t.Fatalf("expected one craft with resource, got %+v", rec.crafts)
	}
	if len(rec.breaks) != 1 {
		t.Fatalf("expected one logged break, got %d", len(rec.breaks))
	}
	e := rec.breaks[0]
	if e.Seq != 1 || e.Block != "rock-granite" || e.Report == nil {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if !e.Report.Scanned || e.Report.Radius != 15 || e.Report.Cells != 31*31*31 {
		t.Fatalf("unexpected report: %+v", e.Report)
	}
}
