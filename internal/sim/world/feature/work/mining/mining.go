package mining

import "strings"

type ToolFamily int

const (
	ToolFamilyNone ToolFamily = iota
	ToolFamilyPick
	ToolFamilyShovel
)

// ToolFamilyForMaterial is the family required to break a block of material.
func ToolFamilyForMaterial(material string) ToolFamily {
	switch material {
	case "soil", "gravel":
		return ToolFamilyShovel
	case "stone", "ore":
		return ToolFamilyPick
	default:
		return ToolFamilyNone
	}
}

// HeldFamily classifies the held item code; "" is an empty hand.
func HeldFamily(code string) ToolFamily {
	switch {
	case strings.HasPrefix(code, "prospectingpick"), strings.HasPrefix(code, "temporalprospectingpick"):
		return ToolFamilyPick
	case strings.HasPrefix(code, "shovel"):
		return ToolFamilyShovel
	default:
		return ToolFamilyNone
	}
}

// CanBreak reports whether a block of material can be broken with held.
// Soft ground breaks by hand; stone and ore need a pick.
func CanBreak(material, held string) bool {
	need := ToolFamilyForMaterial(material)
	switch need {
	case ToolFamilyPick:
		return HeldFamily(held) == ToolFamilyPick
	case ToolFamilyShovel:
		return true
	default:
		return false
	}
}

// WearForBreak is the durability a plain tool loses per broken block.
func WearForBreak(material, held string) int {
	if material == "air" || material == "" {
		return 0
	}
	if HeldFamily(held) == ToolFamilyNone {
		return 0
	}
	return 1
}
