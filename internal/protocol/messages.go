package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	EntityID        uint64      `json:"entity_id"`
	UUID            string      `json:"uuid"`
	Tick            uint64      `json:"tick"`
	TickRateHz      int         `json:"tick_rate_hz"`
	Pos             [3]float64  `json:"pos"`
	Inventory       []ItemStack `json:"inventory"`
}

// ItemStack lists one non-empty inventory slot.
type ItemStack struct {
	Slot  int    `json:"slot"`
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// INTENT (client -> server). Pos/Yaw/Pitch are optional; nil keeps the current value.
type IntentMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Kind            string      `json:"kind"`
	Pos             *[3]float64 `json:"pos,omitempty"`
	Yaw             *float64    `json:"yaw,omitempty"`
	Pitch           *float64    `json:"pitch,omitempty"`
	Item            string      `json:"item,omitempty"`
}

// EVENTS (server -> client), one per tick with at least one event.
type EventsMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Events          []Event `json:"events"`
}

// Event is a flat union keyed by Kind.
type Event struct {
	Kind string `json:"kind"`

	Entity     uint64      `json:"entity,omitempty"`
	EntityKind string      `json:"entity_kind,omitempty"`
	UUID       string      `json:"uuid,omitempty"`
	Owner      uint64      `json:"owner,omitempty"`
	Pos        *[3]float64 `json:"pos,omitempty"`
	Vel        *[3]float64 `json:"vel,omitempty"`
	Yaw        float64     `json:"yaw,omitempty"`
	Pitch      float64     `json:"pitch,omitempty"`
	Reason     string      `json:"reason,omitempty"`

	Origin uint64  `json:"origin,omitempty"`
	Target uint64  `json:"target,omitempty"`
	Damage float64 `json:"damage,omitempty"`

	HP    *float64 `json:"hp,omitempty"`
	MaxHP float64  `json:"max_hp,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
