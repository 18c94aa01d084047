package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello     = "HELLO"
	TypeWelcome   = "WELCOME"
	TypeAct       = "ACT"
	TypeAck       = "ACK"
	TypeNotify    = "NOTIFY"
	TypeParticles = "PARTICLES"
	TypeInventory = "INVENTORY"
)

// Player actions carried by ACT.
const (
	ActionSelectSlot  = "SELECT_SLOT"
	ActionSetToolMode = "SET_TOOL_MODE"
	ActionBreak       = "BREAK"
	ActionCraft       = "CRAFT"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
