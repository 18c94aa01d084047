package prospecting

// ToolMode selects the scan radius tier of a pick.
type ToolMode int

const (
	ToolModeShort ToolMode = iota
	ToolModeMedium
	ToolModeLong
)

// ModesCount is the number of selectable tool modes.
const ModesCount = 3

var modeRadius = [ModesCount]int{15, 30, 60}

var modeCodes = [ModesCount]string{"shortradius", "mediumradius", "longradius"}

var modeNames = [ModesCount]string{"Short radius", "Medium radius", "Long radius"}

// ClampToolMode maps any stored integer onto a valid mode.
func ClampToolMode(v int) ToolMode {
	if v < 0 {
		return ToolModeShort
	}
	if v > ModesCount-1 {
		return ToolMode(ModesCount - 1)
	}
	return ToolMode(v)
}

// ResolveRadius maps a (clamped) mode to its scan radius in blocks.
func ResolveRadius(m ToolMode) int {
	return modeRadius[ClampToolMode(int(m))]
}

// Code is the stable identifier of the mode, as sent to clients.
func (m ToolMode) Code() string { return modeCodes[ClampToolMode(int(m))] }

// Name is the display name used in the held-item description.
func (m ToolMode) Name() string { return modeNames[ClampToolMode(int(m))] }

// ToolModes lists every mode in selector order.
func ToolModes() []ToolMode {
	out := make([]ToolMode, ModesCount)
	for i := range out {
		out[i] = ToolMode(i)
	}
	return out
}

// ReadToolMode reads and clamps the stored tool mode.
func ReadToolMode(attrs ItemAttributeStore) ToolMode {
	if attrs == nil {
		return ToolModeShort
	}
	return ClampToolMode(attrs.GetInt(AttrToolMode, 0))
}

// WriteToolMode stores a mode selector; out-of-range values are clamped before writing.
func WriteToolMode(attrs ItemAttributeStore, v int) ToolMode {
	m := ClampToolMode(v)
	if attrs != nil {
		attrs.SetInt(AttrToolMode, int(m))
	}
	return m
}
