package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Message types accepted from agent connections.
const (
	TypeRegisterAgent = "register-agent"
	TypeTelemetryData = "telemetry-data"
)

const schemaJSON = `{
	"type": "object",
	"required": ["type", "data"],
	"properties": {
		"type": {"type": "string", "enum": ["register-agent", "telemetry-data"]},
		"data": {"type": "object"}
	}
}`

var schema = mustCompile(schemaJSON)

func mustCompile(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("envelope schema: %v", err))
	}
	return s
}

// Envelope is one inbound frame from an agent connection. Data stays raw;
// the hub decodes it per message type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Parse validates a raw frame against the message schema and decodes the
// envelope. A failure here is connection-local: the hub reports it back to
// the sender and touches no shared state.
func Parse(raw []byte) (Envelope, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Envelope{}, fmt.Errorf("malformed message: %w", err)
	}
	if !result.Valid() {
		return Envelope{}, fmt.Errorf("invalid message: %s", result.Errors()[0])
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed message: %w", err)
	}
	return env, nil
}
