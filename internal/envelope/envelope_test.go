package envelope

import (
	"encoding/json"
	"testing"
)

func TestParseRegisterAgent(t *testing.T) {
	env, err := Parse([]byte(`{"type":"register-agent","data":{"driverName":"Alice"}}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if env.Type != TypeRegisterAgent {
		t.Fatalf("unexpected type %q", env.Type)
	}

	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["driverName"] != "Alice" {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestParseTelemetryKeepsExtraFields(t *testing.T) {
	env, err := Parse([]byte(`{"type":"telemetry-data","data":{"lapTime":95.3,"rpm":7200,"gear":4}}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if env.Type != TypeTelemetryData {
		t.Fatalf("unexpected type %q", env.Type)
	}

	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["rpm"] != 7200.0 {
		t.Fatalf("expected extra fields preserved, got %v", data)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{}`,
		`{"type":"register-agent"}`,
		`{"type":"unknown-type","data":{}}`,
		`{"type":"telemetry-data","data":"not an object"}`,
		`{"type":42,"data":{}}`,
		`[]`,
	}
	for _, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
