package overlay

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// PayloadField reads a dotted-path field out of an overlay's payload
// (e.g. "message" or "related.0.uri"), without unmarshaling the whole
// payload into a Go struct — overlays from different sources (a
// highlighter, a diagnostics feed, a plugin) each own their own payload
// shape, so the manager only ever needs to read or patch one field at a
// time.
func PayloadField(payload json.RawMessage, path string) (gjson.Result, bool) {
	if len(payload) == 0 {
		return gjson.Result{}, false
	}
	r := gjson.GetBytes(payload, path)
	return r, r.Exists()
}

// SetPayloadField returns payload with path set to value, creating the
// payload document if it was empty.
func SetPayloadField(payload json.RawMessage, path string, value any) (json.RawMessage, error) {
	base := string(payload)
	if base == "" {
		base = "{}"
	}
	out, err := sjson.Set(base, path, value)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

// diagnosticPayload builds the payload an AddDiagnostic overlay carries, so
// a host rendering a gutter indicator or hover tooltip can recover the
// message and source without the overlay manager needing a Diagnostic
// type of its own at the render layer.
func diagnosticPayload(d Diagnostic) (json.RawMessage, error) {
	payload, err := SetPayloadField(nil, "message", d.Message)
	if err != nil {
		return nil, err
	}
	payload, err = SetPayloadField(payload, "severity", int(d.Severity))
	if err != nil {
		return nil, err
	}
	if d.Source != "" {
		payload, err = SetPayloadField(payload, "source", d.Source)
		if err != nil {
			return nil, err
		}
	}
	return payload, nil
}
