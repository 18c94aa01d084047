package world

import (
	"encoding/json"
	"fmt"

	"prospector.ai/internal/protocol"
	"prospector.ai/internal/sim/world/feature/session/welcome"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

type Player struct {
	ID   string
	Name string

	Inv  *Inventory
	Held int

	out chan []byte
}

func (p *Player) HeldStack() *ItemStack { return p.Inv.Get(p.Held) }

func (w *World) joinPlayer(req JoinRequest) JoinResponse {
	w.nextPlayer++
	id := fmt.Sprintf("P%d", w.nextPlayer)
	p := &Player{
		ID:   id,
		Name: req.Name,
		Inv:  NewInventory(w.cfg.MaxSlots),
		out:  req.Out,
	}
	p.Inv.grantStarter(w.catalogs.Items, w.cfg.Starter)
	w.players[id] = p

	cats := w.catalogs
	return JoinResponse{
		Welcome: welcome.Build(welcome.Input{
			PlayerID:           id,
			Seed:               w.cfg.Seed,
			Height:             w.cfg.Height,
			BoundaryR:          w.cfg.BoundaryR,
			BlockPaletteDigest: cats.Blocks.PaletteDigest,
			BlockPaletteCount:  len(cats.Blocks.Palette),
			ItemPaletteDigest:  cats.Items.PaletteDigest,
			ItemPaletteCount:   len(cats.Items.Palette),
			RecipesDigest:      cats.Recipes.Digest,
		}),
		Inventory: w.inventoryMsg(p),
	}
}

// ResolvePlayer maps an acting entity to a connected player.
func (w *World) ResolvePlayer(entityID string) (prospecting.PlayerIdentity, bool) {
	p, ok := w.players[entityID]
	if !ok {
		return prospecting.PlayerIdentity{}, false
	}
	return prospecting.PlayerIdentity{ID: p.ID, Name: p.Name}, true
}

func (w *World) inventoryMsg(p *Player) protocol.InventoryMsg {
	msg := protocol.InventoryMsg{
		Type:            protocol.TypeInventory,
		ProtocolVersion: protocol.Version,
		Held:            p.Held,
		Slots:           []protocol.SlotView{},
	}
	for i, st := range p.Inv.Slots {
		if st == nil {
			continue
		}
		v := protocol.SlotView{Slot: i, Item: st.Item, Count: st.Count}
		if st.def.Durability > 0 {
			v.Durability = st.Durability()
		}
		if prospecting.ClassifyItem(st.Item) == prospecting.FamilyPick {
			mode := int(prospecting.ReadToolMode(st.Attrs))
			v.ToolMode = &mode
			if st.Item == temporalPickCode {
				v.Resource = prospecting.ResourceTag(st.Attrs)
				v.Description = prospecting.Describe(st.Attrs)
			}
		}
		msg.Slots = append(msg.Slots, v)
	}
	return msg
}

func (w *World) sendInventory(p *Player) {
	w.sendTo(p, w.inventoryMsg(p))
}

func (w *World) sendTo(p *Player, msg any) {
	if p == nil || p.out == nil {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		w.debugf("world: marshal %T: %v", msg, err)
		return
	}
	sendLatest(p.out, b)
}

// sendLatest never blocks the world loop; on a full queue it drops the oldest frame.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
