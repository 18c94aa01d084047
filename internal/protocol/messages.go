package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	PlayerName      string            `json:"player_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	PlayerID        string         `json:"player_id"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
	ToolModes       []ToolModeRef  `json:"tool_modes"`
}

type WorldParams struct {
	Seed      int64 `json:"seed"`
	Height    int   `json:"height"`
	BoundaryR int   `json:"boundary_r"`
}

type CatalogDigests struct {
	BlockPalette  DigestRef `json:"block_palette"`
	ItemPalette   DigestRef `json:"item_palette"`
	RecipesDigest string    `json:"recipes_digest"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

type ToolModeRef struct {
	Mode   int    `json:"mode"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Radius int    `json:"radius"`
}

// ACT (client -> server): one player action.
type ActMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	ID              string  `json:"id"`
	Action          string  `json:"action"`
	Pos             *[3]int `json:"pos,omitempty"`
	Slot            *int    `json:"slot,omitempty"`
	Mode            *int    `json:"mode,omitempty"`
	RecipeID        string  `json:"recipe_id,omitempty"`
	Slots           []int   `json:"slots,omitempty"`
}

type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// NOTIFY (server -> client): a chat line for one player.
type NotifyMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Channel         string `json:"channel"`
	ChatType        string `json:"chat_type"`
	Text            string `json:"text"`
}

// PARTICLES (server -> client): cosmetic effect request.
type ParticlesMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Quantity        float64    `json:"quantity"`
	Pos             [3]float64 `json:"pos"`
	Velocity        [3]float64 `json:"velocity"`
	RGBA            [4]uint8   `json:"rgba"`
	MinSize         float64    `json:"min_size"`
	LifeLength      float64    `json:"life_length"`
	AddLife         float64    `json:"add_life,omitempty"`
	SizeEvolve      float64    `json:"size_evolve,omitempty"`
	OpacityFade     float64    `json:"opacity_fade,omitempty"`
	Model           string     `json:"model"`
	SelfPropelled   bool       `json:"self_propelled,omitempty"`
}

// INVENTORY (server -> client)
type InventoryMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Held            int        `json:"held"`
	Slots           []SlotView `json:"slots"`
}

type SlotView struct {
	Slot        int    `json:"slot"`
	Item        string `json:"item"`
	Count       int    `json:"count"`
	Durability  int    `json:"durability,omitempty"`
	Resource    string `json:"resource,omitempty"`
	ToolMode    *int   `json:"tool_mode,omitempty"`
	Description string `json:"description,omitempty"`
}
