package world

import (
	"sort"
	"time"

	"prospector.ai/internal/protocol"
	"prospector.ai/internal/sim/world/feature/work/mining"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

const (
	temporalPickCode = "temporalprospectingpick"
	damageBlockBreak = "block_breaking"
)

func ack(act protocol.ActMsg) protocol.AckMsg {
	return protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          act.ID,
		Accepted:        true,
	}
}

func reject(act protocol.ActMsg, code, msg string) protocol.AckMsg {
	a := ack(act)
	a.Accepted = false
	a.Code = code
	a.Message = msg
	return a
}

func (w *World) applyAct(nowTick uint64, p *Player, act protocol.ActMsg) protocol.AckMsg {
	switch act.Action {
	case protocol.ActionSelectSlot:
		return w.actSelectSlot(p, act)
	case protocol.ActionSetToolMode:
		return w.actSetToolMode(p, act)
	case protocol.ActionBreak:
		return w.actBreak(nowTick, p, act)
	case protocol.ActionCraft:
		return w.actCraft(nowTick, p, act)
	default:
		return reject(act, protocol.ErrBadRequest, "unknown action")
	}
}

func (w *World) actSelectSlot(p *Player, act protocol.ActMsg) protocol.AckMsg {
	if act.Slot == nil || *act.Slot < 0 || *act.Slot >= len(p.Inv.Slots) {
		return reject(act, protocol.ErrBadRequest, "slot out of range")
	}
	p.Held = *act.Slot
	w.sendInventory(p)
	return ack(act)
}

func (w *World) actSetToolMode(p *Player, act protocol.ActMsg) protocol.AckMsg {
	if act.Mode == nil {
		return reject(act, protocol.ErrBadRequest, "missing mode")
	}
	st := p.HeldStack()
	if st == nil || prospecting.ClassifyItem(st.Item) != prospecting.FamilyPick {
		return reject(act, protocol.ErrInvalidTarget, "held item has no tool modes")
	}
	prospecting.WriteToolMode(st.Attrs, *act.Mode)
	w.sendInventory(p)
	return ack(act)
}

func (w *World) actBreak(nowTick uint64, p *Player, act protocol.ActMsg) protocol.AckMsg {
	if act.Pos == nil {
		return reject(act, protocol.ErrBadRequest, "missing pos")
	}
	pos := Vec3i{X: act.Pos[0], Y: act.Pos[1], Z: act.Pos[2]}
	if !w.chunks.inBounds(pos) {
		return reject(act, protocol.ErrInvalidTarget, "out of bounds")
	}
	desc := w.CellDescriptor(pos)
	held := p.HeldStack()
	heldCode := ""
	if held != nil {
		heldCode = held.Item
	}
	if !mining.CanBreak(string(desc.Material), heldCode) {
		if desc.Material == prospecting.MaterialAir {
			return reject(act, protocol.ErrInvalidTarget, "nothing to break")
		}
		return reject(act, protocol.ErrBlocked, "needs a pick")
	}
	if !w.chunks.SetBlock(pos, w.chunks.gen.Air) {
		return reject(act, protocol.ErrInternal, "set block failed")
	}

	entry := BreakLogEntry{
		Tick:     nowTick,
		PlayerID: p.ID,
		Pos:      pos,
		Block:    desc.Code,
		Held:     heldCode,
		At:       time.Now().UTC(),
	}
	switch {
	case held != nil && held.Item == temporalPickCode:
		rep := w.pick.OnBlockBroken(prospecting.BlockBrokenContext{
			EntityID:          p.ID,
			Pos:               pos,
			Block:             desc,
			Item:              held,
			DamagedByBreaking: held.def.DamagedFrom(damageBlockBreak),
		})
		entry.Report = &rep
	case held != nil && held.def.DamagedFrom(damageBlockBreak):
		if n := mining.WearForBreak(string(desc.Material), heldCode); n > 0 {
			w.wear(p, held, n)
			w.sendInventory(p)
		}
	}
	w.recordBreak(entry)
	return ack(act)
}

func (w *World) recordBreak(entry BreakLogEntry) {
	w.seq++
	entry.Seq = w.seq
	if w.breakLogger != nil {
		if err := w.breakLogger.WriteBreak(entry); err != nil {
			w.debugf("world: break log: %v", err)
		}
	}
	for _, r := range w.recorders {
		r.RecordBreak(entry)
	}
}

// actCraft matches act.Slots positionally against the recipe inputs.
func (w *World) actCraft(nowTick uint64, p *Player, act protocol.ActMsg) protocol.AckMsg {
	rec, ok := w.catalogs.Recipes.ByID[act.RecipeID]
	if !ok {
		return reject(act, protocol.ErrBadRequest, "unknown recipe")
	}
	if len(act.Slots) != len(rec.Inputs) {
		return reject(act, protocol.ErrBadRequest, "slot count does not match recipe")
	}
	seen := map[int]bool{}
	inputs := make([]prospecting.ItemRef, 0, len(rec.Inputs))
	stacks := make([]*ItemStack, 0, len(rec.Inputs))
	freed := false
	for i, in := range rec.Inputs {
		slot := act.Slots[i]
		if seen[slot] {
			return reject(act, protocol.ErrBadRequest, "duplicate slot")
		}
		seen[slot] = true
		st := p.Inv.Get(slot)
		if st == nil || !in.Accepts(st.Item) {
			return reject(act, protocol.ErrNoResource, "missing ingredient "+in.Item)
		}
		if st.Count < in.N() {
			return reject(act, protocol.ErrNoResource, "not enough "+st.Item)
		}
		if st.Count == in.N() {
			freed = true
		}
		inputs = append(inputs, st)
		stacks = append(stacks, st)
	}
	if !freed && p.Inv.FirstFree() < 0 {
		return reject(act, protocol.ErrBlocked, "inventory full")
	}

	outDef, ok := w.catalogs.Items.Defs[rec.Output.Item]
	if !ok {
		return reject(act, protocol.ErrInternal, "unknown output item")
	}
	out := NewItemStack(outDef, rec.Output.N())
	if outDef.Durability > 0 {
		out.Attrs.SetInt(prospecting.AttrDurability, outDef.Durability)
	}
	if outDef.Code == temporalPickCode {
		w.pick.OnCrafted(inputs, out)
	}

	for i, st := range stacks {
		st.Count -= rec.Inputs[i].N()
		if st.Count <= 0 {
			p.Inv.Remove(st)
		}
	}
	p.Inv.Slots[p.Inv.FirstFree()] = out

	entry := CraftLogEntry{
		Tick:     nowTick,
		PlayerID: p.ID,
		RecipeID: rec.RecipeID,
		Output:   out.Item,
		At:       time.Now().UTC(),
	}
	if outDef.Code == temporalPickCode {
		entry.Resource = prospecting.ResourceTag(out.Attrs)
	}
	for _, r := range w.recorders {
		r.RecordCraft(entry)
	}
	w.sendInventory(p)
	return ack(act)
}

func (w *World) sortedPlayers() []*Player {
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
