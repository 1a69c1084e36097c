package record

import (
	"encoding/json"
	"fmt"
)

// decodeAny unmarshals raw JSON into the generic shape (map[string]any /
// []any / primitives) that jsonschema.Schema.Validate expects — it does not
// accept Go structs or json.RawMessage directly.
func decodeAny(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// PayloadID extracts the "id" field from a raw payload without needing to
// know its concrete Go type — used by the Store (C5) to key records by id
// before the full typed decode.
func PayloadID(payload []byte) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", fmt.Errorf("record: decode id: %w", err)
	}
	return probe.ID, nil
}

// DecodePayload unmarshals raw payload JSON into the concrete Go type for
// t. Callers that need type-specific fields (e.g. the workflow adapter
// reading TaskPayload.Status) use this after
// SchemaCache.ValidatePayloadJSON has already confirmed schema conformance.
func DecodePayload(t Type, payload []byte) (any, error) {
	switch t {
	case TypeActor:
		var p ActorPayload
		err := json.Unmarshal(payload, &p)
		return p, err
	case TypeAgent:
		var p AgentPayload
		err := json.Unmarshal(payload, &p)
		return p, err
	case TypeCycle:
		var p CyclePayload
		err := json.Unmarshal(payload, &p)
		return p, err
	case TypeTask:
		var p TaskPayload
		err := json.Unmarshal(payload, &p)
		return p, err
	case TypeExecution:
		var p ExecutionPayload
		err := json.Unmarshal(payload, &p)
		return p, err
	case TypeFeedback:
		var p FeedbackPayload
		err := json.Unmarshal(payload, &p)
		return p, err
	case TypeChangelog:
		var p ChangelogPayload
		err := json.Unmarshal(payload, &p)
		return p, err
	default:
		return nil, fmt.Errorf("record: unknown type %q", t)
	}
}

// EncodeEnvelope renders an envelope as the pretty-printed, 2-space-indent,
// trailing-newline form the store writes to disk (spec §6 record file
// format). Parsing stays tolerant of the minified form since it goes
// through the ordinary encoding/json decoder.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	buf, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}
