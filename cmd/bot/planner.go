package main

import (
	"fmt"
	"strings"

	"prospector.ai/internal/protocol"
)

type phase int

const (
	phaseCraft phase = iota
	phaseHold
	phaseMode
	phaseDig
	phaseDone
)

// planner crafts a temporal pick from the starter kit, equips it and digs a
// column downwards, one BREAK per ACK.
type planner struct {
	phase phase
	seq   int
	inv   protocol.InventoryMsg

	mode    int
	x, z, y int
}

func (p *planner) nextID(kind string) string {
	p.seq++
	return fmt.Sprintf("%s_%d", kind, p.seq)
}

func (p *planner) onInventory(inv protocol.InventoryMsg) *protocol.ActMsg {
	first := p.inv.Slots == nil
	p.inv = inv
	if first && p.phase == phaseCraft {
		return p.step()
	}
	return nil
}

func (p *planner) onAck(ack protocol.AckMsg) *protocol.ActMsg {
	if p.phase == phaseDig {
		p.y--
	} else if ack.Accepted {
		p.phase++
	} else if p.phase == phaseCraft {
		// Already holding a temporal pick from an earlier session.
		p.phase = phaseHold
	}
	return p.step()
}

func (p *planner) step() *protocol.ActMsg {
	switch p.phase {
	case phaseCraft:
		if slotOf(p.inv, "temporalprospectingpick") >= 0 {
			p.phase = phaseHold
			return p.step()
		}
		pick := slotWithPrefix(p.inv, "prospectingpick-")
		gear := slotOf(p.inv, "temporalgear")
		sample, recipe := -1, ""
		for prefix, r := range map[string]string{
			"nugget-": "temporalpick_from_nugget",
			"ore-":    "temporalpick_from_ore",
			"gem-":    "temporalpick_from_gem",
		} {
			if s := slotWithPrefix(p.inv, prefix); s >= 0 && (sample < 0 || s < sample) {
				sample, recipe = s, r
			}
		}
		if pick < 0 || gear < 0 || sample < 0 {
			p.phase = phaseDone
			return nil
		}
		return &protocol.ActMsg{ID: p.nextID("craft"), Action: protocol.ActionCraft, RecipeID: recipe, Slots: []int{pick, gear, sample}}
	case phaseHold:
		slot := slotOf(p.inv, "temporalprospectingpick")
		if slot < 0 {
			p.phase = phaseDone
			return nil
		}
		return &protocol.ActMsg{ID: p.nextID("hold"), Action: protocol.ActionSelectSlot, Slot: &slot}
	case phaseMode:
		mode := p.mode
		return &protocol.ActMsg{ID: p.nextID("mode"), Action: protocol.ActionSetToolMode, Mode: &mode}
	case phaseDig:
		if p.y < 0 || slotOf(p.inv, "temporalprospectingpick") < 0 {
			p.phase = phaseDone
			return nil
		}
		return &protocol.ActMsg{ID: p.nextID("break"), Action: protocol.ActionBreak, Pos: &[3]int{p.x, p.y, p.z}}
	default:
		return nil
	}
}

func slotOf(inv protocol.InventoryMsg, item string) int {
	for _, s := range inv.Slots {
		if s.Item == item {
			return s.Slot
		}
	}
	return -1
}

func slotWithPrefix(inv protocol.InventoryMsg, prefix string) int {
	for _, s := range inv.Slots {
		if strings.HasPrefix(s.Item, prefix) {
			return s.Slot
		}
	}
	return -1
}
