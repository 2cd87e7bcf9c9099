package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"arrowcraft.ai/internal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// roundTrip marshals a Go message and decodes it as a generic document so the
// schema sees exactly what goes on the wire.
func roundTrip(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return doc
}

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compileSchema(t, "hello.schema.json")
	welcomeSchema := compileSchema(t, "welcome.schema.json")
	intentSchema := compileSchema(t, "intent.schema.json")
	eventsSchema := compileSchema(t, "events.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{"type":"HELLO","protocol_version":"1.0","name":"archer1"}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "world_id":"arena",
	  "entity_id":1,
	  "uuid":"0b6f7b4e-7d5c-4b8e-9a47-3e0f1c2d4a5b",
	  "tick":12,
	  "tick_rate_hz":20,
	  "pos":[0,64,0],
	  "inventory":[{"slot":0,"kind":"ARROW","count":16},{"slot":1,"kind":"BOW","count":1}]
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var intent any
	_ = json.Unmarshal([]byte(`{"type":"INTENT","protocol_version":"1.0","kind":"RELEASE_USE_ITEM","item":"BOW"}`), &intent)
	validate(intentSchema, intent)

	var events any
	_ = json.Unmarshal([]byte(`{
	  "type":"EVENTS",
	  "protocol_version":"1.0",
	  "tick":13,
	  "events":[
	    {"kind":"SPAWN_ENTITY","entity":7,"entity_kind":"ARROW","owner":1,"pos":[0,65.62,0.5],"vel":[0,0,3]},
	    {"kind":"ATTACK_ENTITY","origin":1,"target":2,"damage":1},
	    {"kind":"HEALTH","entity":2,"hp":19,"max_hp":20},
	    {"kind":"DESTROY_ENTITY","entity":7,"reason":"hit"}
	  ]
	}`), &events)
	validate(eventsSchema, events)
}

func TestSchemas_RejectMalformed(t *testing.T) {
	intentSchema := compileSchema(t, "intent.schema.json")

	var missingItem any
	_ = json.Unmarshal([]byte(`{"type":"INTENT","protocol_version":"1.0","kind":"START_USE_ITEM"}`), &missingItem)
	if err := intentSchema.Validate(missingItem); err == nil {
		t.Fatalf("expected START_USE_ITEM without item to be rejected")
	}

	var badKind any
	_ = json.Unmarshal([]byte(`{"type":"INTENT","protocol_version":"1.0","kind":"JUMP"}`), &badKind)
	if err := intentSchema.Validate(badKind); err == nil {
		t.Fatalf("expected unknown intent kind to be rejected")
	}
}

func TestSchemas_GoMessagesConform(t *testing.T) {
	eventsSchema := compileSchema(t, "events.schema.json")
	intentSchema := compileSchema(t, "intent.schema.json")

	hp := 0.0
	pos := [3]float64{1, 65.62, 2.5}
	vel := [3]float64{0, 0, 3}
	msg := protocol.EventsMsg{
		Type:            protocol.TypeEvents,
		ProtocolVersion: protocol.Version,
		Tick:            4,
		Events: []protocol.Event{
			{Kind: protocol.EventSpawnEntity, Entity: 3, EntityKind: "ARROW", Owner: 1, Pos: &pos, Vel: &vel},
			{Kind: protocol.EventHealth, Entity: 2, HP: &hp, MaxHP: 20},
			{Kind: protocol.EventDestroyEntity, Entity: 3, Reason: "expired"},
		},
	}
	if err := eventsSchema.Validate(roundTrip(t, msg)); err != nil {
		t.Fatalf("events: %v", err)
	}

	yaw, pitch := 90.0, -10.0
	move := protocol.IntentMsg{
		Type:            protocol.TypeIntent,
		ProtocolVersion: protocol.Version,
		Kind:            protocol.IntentMove,
		Pos:             &pos,
		Yaw:             &yaw,
		Pitch:           &pitch,
	}
	if err := intentSchema.Validate(roundTrip(t, move)); err != nil {
		t.Fatalf("intent: %v", err)
	}
}
