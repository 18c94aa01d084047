package prospecting

import "fmt"

// Attribute keys stored on a pick's item instance.
const (
	AttrToolMode   = "toolMode"
	AttrDurability = "durability"
	AttrResource   = "resource"
)

// ResourceNone is reported when no resource type is bound to an item.
const ResourceNone = "none"

// ItemAttributeStore is the typed view over an item instance's persisted attributes.
// Reads and writes are single-field and treated as atomic by callers.
type ItemAttributeStore interface {
	GetInt(key string, def int) int
	SetInt(key string, v int)
	GetString(key string, def string) string
	SetString(key string, v string)
}

// ItemRef is one item instance as seen by crafting and the pick handler.
type ItemRef interface {
	// Code is the item code path, e.g. "nugget-nativecopper".
	Code() string
	Variant(key string) (string, bool)
	Attributes() ItemAttributeStore
}

// ResourceTag returns the resource bound to attrs, or ResourceNone.
func ResourceTag(attrs ItemAttributeStore) string {
	if attrs == nil {
		return ResourceNone
	}
	v := attrs.GetString(AttrResource, "")
	if v == "" {
		return ResourceNone
	}
	return v
}

// Describe builds the held-item description line.
func Describe(attrs ItemAttributeStore) string {
	mode := ReadToolMode(attrs)
	return fmt.Sprintf("Resource: %s, Mode: %s (%d blocks)", ResourceTag(attrs), mode.Name(), ResolveRadius(mode))
}
