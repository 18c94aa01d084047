package world

import (
	"prospector.ai/internal/protocol"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

// CellDescriptor exposes a block to the prospecting scan. Positions outside
// the world bounds yield the zero descriptor.
func (w *World) CellDescriptor(pos Vec3i) prospecting.CellDescriptor {
	if !w.chunks.inBounds(pos) {
		return prospecting.CellDescriptor{}
	}
	return w.describeBlock(w.chunks.GetBlock(pos))
}

func (w *World) describeBlock(id uint16) prospecting.CellDescriptor {
	pal := w.catalogs.Blocks.Palette
	if int(id) >= len(pal) {
		return prospecting.CellDescriptor{}
	}
	def := w.catalogs.Blocks.Defs[pal[id]]
	return prospecting.CellDescriptor{
		Code:     def.Code,
		Material: prospecting.Material(def.Material),
		Variant:  def.Variant,
	}
}

// Emit broadcasts a particle to every connected player.
func (w *World) Emit(p prospecting.ParticleSpec) {
	msg := protocol.ParticlesMsg{
		Type:            protocol.TypeParticles,
		ProtocolVersion: protocol.Version,
		Quantity:        p.Quantity,
		Pos:             [3]float64{p.Pos.X, p.Pos.Y, p.Pos.Z},
		Velocity:        [3]float64{p.Velocity.X, p.Velocity.Y, p.Velocity.Z},
		RGBA:            p.RGBA,
		MinSize:         p.MinSize,
		LifeLength:      p.LifeLength,
		AddLife:         p.AddLife,
		SizeEvolve:      p.SizeEvolve,
		OpacityFade:     p.OpacityFade,
		Model:           string(p.Model),
		SelfPropelled:   p.SelfPropelled,
	}
	for _, pl := range w.sortedPlayers() {
		w.sendTo(pl, msg)
	}
}

// Send delivers a notification line to a single player.
func (w *World) Send(player prospecting.PlayerIdentity, message string, channel prospecting.Channel) {
	p := w.players[player.ID]
	if p == nil {
		return
	}
	w.sendTo(p, protocol.NotifyMsg{
		Type:            protocol.TypeNotify,
		ProtocolVersion: protocol.Version,
		Channel:         string(channel),
		ChatType:        "notification",
		Text:            message,
	})
}

// DamageItem reduces durability of item in the player's inventory and
// destroys it at zero.
func (w *World) DamageItem(entityID string, item prospecting.ItemRef, amount int) {
	p := w.players[entityID]
	st, ok := item.(*ItemStack)
	if p == nil || !ok || amount <= 0 {
		return
	}
	w.wear(p, st, amount)
	w.sendInventory(p)
}

func (w *World) wear(p *Player, st *ItemStack, amount int) {
	if st.def.Durability <= 0 {
		return
	}
	left := st.Durability() - amount
	if left <= 0 {
		p.Inv.Remove(st)
		return
	}
	st.Attrs.SetInt(prospecting.AttrDurability, left)
}
