package world

import (
	"sort"

	"prospector.ai/internal/sim/catalogs"
	"prospector.ai/internal/sim/world/feature/work/prospecting"
)

// Attributes is the loosely typed attribute bag of one item instance.
type Attributes struct {
	Ints    map[string]int    `json:"ints,omitempty"`
	Strings map[string]string `json:"strings,omitempty"`
}

func NewAttributes() *Attributes {
	return &Attributes{Ints: map[string]int{}, Strings: map[string]string{}}
}

func (a *Attributes) GetInt(key string, def int) int {
	if v, ok := a.Ints[key]; ok {
		return v
	}
	return def
}

func (a *Attributes) SetInt(key string, v int) {
	if a.Ints == nil {
		a.Ints = map[string]int{}
	}
	a.Ints[key] = v
}

func (a *Attributes) GetString(key string, def string) string {
	if v, ok := a.Strings[key]; ok {
		return v
	}
	return def
}

func (a *Attributes) SetString(key string, v string) {
	if a.Strings == nil {
		a.Strings = map[string]string{}
	}
	a.Strings[key] = v
}

// ItemStack is one inventory slot's content.
type ItemStack struct {
	Item  string
	Count int
	Attrs *Attributes

	def catalogs.ItemDef
}

func NewItemStack(def catalogs.ItemDef, count int) *ItemStack {
	return &ItemStack{Item: def.Code, Count: count, Attrs: NewAttributes(), def: def}
}

func (s *ItemStack) Code() string { return s.Item }

func (s *ItemStack) Variant(key string) (string, bool) {
	v, ok := s.def.Variant[key]
	return v, ok
}

func (s *ItemStack) Attributes() prospecting.ItemAttributeStore { return s.Attrs }

// Durability is the remaining durability; an unset attribute means full.
func (s *ItemStack) Durability() int {
	return s.Attrs.GetInt(prospecting.AttrDurability, s.def.Durability)
}

// Inventory is a fixed-size slot array.
type Inventory struct {
	Slots []*ItemStack
}

func NewInventory(n int) *Inventory {
	return &Inventory{Slots: make([]*ItemStack, n)}
}

func (inv *Inventory) Get(slot int) *ItemStack {
	if slot < 0 || slot >= len(inv.Slots) {
		return nil
	}
	return inv.Slots[slot]
}

func (inv *Inventory) FirstFree() int {
	for i, s := range inv.Slots {
		if s == nil {
			return i
		}
	}
	return -1
}

// Remove drops the stack from whatever slot holds it.
func (inv *Inventory) Remove(stack *ItemStack) bool {
	for i, s := range inv.Slots {
		if s == stack {
			inv.Slots[i] = nil
			return true
		}
	}
	return false
}

// grantStarter fills the inventory from a code->count map in code order.
func (inv *Inventory) grantStarter(items catalogs.ItemCatalog, starter map[string]int) {
	codes := make([]string, 0, len(starter))
	for code := range starter {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		def, ok := items.Defs[code]
		if !ok || starter[code] <= 0 {
			continue
		}
		slot := inv.FirstFree()
		if slot < 0 {
			return
		}
		st := NewItemStack(def, starter[code])
		if def.Durability > 0 {
			st.Attrs.SetInt(prospecting.AttrDurability, def.Durability)
		}
		inv.Slots[slot] = st
	}
}
