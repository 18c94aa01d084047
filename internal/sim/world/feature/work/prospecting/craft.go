package prospecting

import "strings"

// ItemFamily is the crafting-relevant classification of an item.
type ItemFamily int

const (
	FamilyOther ItemFamily = iota
	FamilyPick
	FamilySample
)

var pickPrefixes = []string{"prospectingpick", "temporalprospectingpick"}

var samplePrefixes = []string{"nugget", "ore", "gem"}

// ClassifyItem maps an item code path to its family.
func ClassifyItem(code string) ItemFamily {
	code = strings.ToLower(code)
	for _, p := range pickPrefixes {
		if strings.HasPrefix(code, p) {
			return FamilyPick
		}
	}
	for _, p := range samplePrefixes {
		if strings.HasPrefix(code, p) {
			return FamilySample
		}
	}
	return FamilyOther
}

// DeriveOutputAttributes copies durability from the first pick input that has
// any, and the resource type from the first sample input carrying an "ore"
// variant. Unmatched output attributes are left untouched.
func DeriveOutputAttributes(inputs []ItemRef, output ItemRef) {
	if output == nil {
		return
	}
	out := output.Attributes()
	if out == nil {
		return
	}
	var haveDurability, haveResource bool
	for _, in := range inputs {
		if in == nil {
			continue
		}
		switch ClassifyItem(in.Code()) {
		case FamilyPick:
			if haveDurability {
				continue
			}
			attrs := in.Attributes()
			if attrs == nil {
				continue
			}
			if d := attrs.GetInt(AttrDurability, 0); d > 0 {
				out.SetInt(AttrDurability, d)
				haveDurability = true
			}
		case FamilySample:
			if haveResource {
				continue
			}
			if ore, ok := in.Variant("ore"); ok && ore != "" {
				out.SetString(AttrResource, ore)
				haveResource = true
			}
		}
		if haveDurability && haveResource {
			return
		}
	}
}
