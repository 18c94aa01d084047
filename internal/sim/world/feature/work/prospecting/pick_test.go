package prospecting

import (
	"strings"
	"testing"
)

func newTestPick(w *fakeWorld) (*Pick, *recordingEffects, *recordingNotify, *recordingDamager) {
	fx := &recordingEffects{}
	nt := &recordingNotify{}
	dm := &recordingDamager{}
	return &Pick{World: w, Effects: fx, Notify: nt, Damager: dm, Rand: fixedRand{n: 3}}, fx, nt, dm
}

func granite() CellDescriptor {
	return CellDescriptor{Code: "rock-granite", Material: MaterialStone, Variant: map[string]string{"rock": "granite"}}
}

func TestPick_ReportsMatchesAndCharges(t *testing.T) {
	w := newFakeWorld()
	w.players["P1"] = PlayerIdentity{ID: "P1", Name: "alice"}
	w.cells[Pos{X: 5, Y: 5, Z: 5}] = oreCell("NativeCopper")
	w.cells[Pos{X: 3, Y: 3, Z: 3}] = granite()
	p, fx, nt, dm := newTestPick(w)

	item := newFakeItem("temporalprospectingpick", nil)
	item.attrs.SetString(AttrResource, "copper")

	rep := p.OnBlockBroken(BlockBrokenContext{EntityID: "P1", Block: granite(), Item: item, DamagedByBreaking: true})
	if !rep.Scanned || rep.Found != 1 || rep.Radius != 15 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Cells != CubeVolume(15) {
		t.Fatalf("expected %d cells, got %d", CubeVolume(15), rep.Cells)
	}
	if len(fx.got) != 1 {
		t.Fatalf("expected 1 particle, got %d", len(fx.got))
	}
	ps := fx.got[0]
	end := Vec3{X: ps.Pos.X + ps.Velocity.X, Y: ps.Pos.Y + ps.Velocity.Y, Z: ps.Pos.Z + ps.Velocity.Z}
	if end != (Vec3{X: 5.5, Y: 5.5, Z: 5.5}) {
		t.Fatalf("expected particle to target (5.5,5.5,5.5), got %+v", end)
	}
	if ps.Model != ParticleQuad || ps.RGBA[3] != 150 {
		t.Fatalf("unexpected particle style: %+v", ps)
	}
	if len(nt.got) != 1 || nt.got[0].msg != "Found 1 copper nodes within 15 blocks" {
		t.Fatalf("unexpected notifications: %+v", nt.got)
	}
	if nt.got[0].channel != ChannelGeneral || nt.got[0].player.ID != "P1" {
		t.Fatalf("unexpected notification target: %+v", nt.got[0])
	}
	if dm.calls != 1 || dm.amount != 5 || dm.entity != "P1" {
		t.Fatalf("expected 5 durability damage to P1, got %+v", dm)
	}
}

func TestPick_MediumModeReachesFurther(t *testing.T) {
	w := newFakeWorld()
	w.players["P1"] = PlayerIdentity{ID: "P1"}
	w.cells[Pos{X: 20, Y: 0, Z: 0}] = oreCell("copper")
	w.cells[Pos{X: 3, Y: 3, Z: 3}] = granite()
	p, _, nt, _ := newTestPick(w)

	item := newFakeItem("temporalprospectingpick", nil)
	item.attrs.SetString(AttrResource, "copper")
	WriteToolMode(item.attrs, 1)

	rep := p.OnBlockBroken(BlockBrokenContext{EntityID: "P1", Block: granite(), Item: item})
	if rep.Found != 1 || rep.Radius != 30 {
		t.Fatalf("expected 1 match within 30, got %+v", rep)
	}
	if !strings.Contains(nt.got[0].msg, "within 30 blocks") {
		t.Fatalf("unexpected message: %q", nt.got[0].msg)
	}
}

func TestPick_NoResourceSkipsScan(t *testing.T) {
	w := newFakeWorld()
	w.players["P1"] = PlayerIdentity{ID: "P1"}
	w.cells[Pos{X: 1, Y: 1, Z: 1}] = oreCell("copper")
	p, fx, nt, dm := newTestPick(w)

	item := newFakeItem("temporalprospectingpick", nil)
	rep := p.OnBlockBroken(BlockBrokenContext{EntityID: "P1", Block: granite(), Item: item, DamagedByBreaking: true})

	if rep.Scanned || rep.Skip != SkipNoResource {
		t.Fatalf("expected no-resource skip, got %+v", rep)
	}
	if w.reads != 0 {
		t.Fatalf("expected no cells read, got %d", w.reads)
	}
	if len(fx.got) != 0 {
		t.Fatalf("expected no particles, got %d", len(fx.got))
	}
	if len(nt.got) != 1 || !strings.Contains(nt.got[0].msg, "No resource selected") {
		t.Fatalf("expected a no-resource notification, got %+v", nt.got)
	}
	if dm.calls != 1 {
		t.Fatalf("expected durability still charged, got %d calls", dm.calls)
	}
}

func TestPick_SkipsNonPlayerAndSoftGround(t *testing.T) {
	w := newFakeWorld()
	w.players["P1"] = PlayerIdentity{ID: "P1"}
	p, _, nt, _ := newTestPick(w)
	item := newFakeItem("temporalprospectingpick", nil)
	item.attrs.SetString(AttrResource, "copper")

	rep := p.OnBlockBroken(BlockBrokenContext{EntityID: "E42", Block: granite(), Item: item})
	if rep.Skip != SkipNotPlayer || rep.Scanned {
		t.Fatalf("expected non-player skip, got %+v", rep)
	}

	soil := CellDescriptor{Code: "soil-medium-normal", Material: MaterialSoil}
	rep = p.OnBlockBroken(BlockBrokenContext{EntityID: "P1", Block: soil, Item: item})
	if rep.Skip != SkipNotGround || rep.Scanned {
		t.Fatalf("expected not-ground skip, got %+v", rep)
	}
	if len(nt.got) != 0 || w.reads != 0 {
		t.Fatalf("expected no notifications or reads, got %d notes %d reads", len(nt.got), w.reads)
	}
}

func TestPick_OreOriginIsBreakableGround(t *testing.T) {
	w := newFakeWorld()
	w.players["P1"] = PlayerIdentity{ID: "P1"}
	p, _, _, _ := newTestPick(w)
	item := newFakeItem("temporalprospectingpick", nil)
	item.attrs.SetString(AttrResource, "gold")

	rep := p.OnBlockBroken(BlockBrokenContext{EntityID: "P1", Block: oreCell("quartz"), Item: item})
	if !rep.Scanned || rep.Found != 0 {
		t.Fatalf("expected an empty scan from an ore origin, got %+v", rep)
	}
}

func TestPick_OnCrafted(t *testing.T) {
	p := &Pick{}
	pick := newFakeItem("prospectingpick-copper", nil)
	pick.attrs.SetInt(AttrDurability, 12)
	nugget := newFakeItem("nugget-nativecopper", map[string]string{"ore": "nativecopper"})
	out := newFakeItem("temporalprospectingpick", nil)

	p.OnCrafted([]ItemRef{nugget, pick}, out)
	if out.attrs.GetInt(AttrDurability, 0) != 12 || ResourceTag(out.attrs) != "nativecopper" {
		t.Fatalf("unexpected output attrs: %+v", out.attrs)
	}
}

func TestNewTrailParticle_ColourRange(t *testing.T) {
	m := Match{From: Vec3{X: 0.5, Y: 0.5, Z: 0.5}, To: Vec3{X: 2.5, Y: 0.5, Z: 0.5}}
	ps := NewTrailParticle(ParticleStyle{}, fixedRand{n: 0}, m)
	if ps.Quantity != 1 || ps.LifeLength != 0.5 {
		t.Fatalf("expected default style, got %+v", ps)
	}
	if ps.Velocity != (Vec3{X: 2}) {
		t.Fatalf("expected velocity (2,0,0), got %+v", ps.Velocity)
	}
	r, g, b := int(ps.RGBA[0]), int(ps.RGBA[1]), int(ps.RGBA[2])
	if g <= r || g <= b {
		t.Fatalf("expected a green-dominant hue, got rgb(%d,%d,%d)", r, g, b)
	}
}
