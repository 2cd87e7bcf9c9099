package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeIntent  = "INTENT"
	TypeEvents  = "EVENTS"
	TypeError   = "ERROR"
)

// Intent kinds.
const (
	IntentMove           = "MOVE"
	IntentStartUseItem   = "START_USE_ITEM"
	IntentReleaseUseItem = "RELEASE_USE_ITEM"
)

// Event kinds carried in EVENTS.
const (
	EventSpawnEntity   = "SPAWN_ENTITY"
	EventDestroyEntity = "DESTROY_ENTITY"
	EventAttackEntity  = "ATTACK_ENTITY"
	EventHealth        = "HEALTH"
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

func IsIntentKind(kind string) bool {
	switch kind {
	case IntentMove, IntentStartUseItem, IntentReleaseUseItem:
		return true
	}
	return false
}
