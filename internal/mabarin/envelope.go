package mabarin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Envelope is the normalized form of every upstream reply.  The API answers
// with {success, message, data}, {success, message, result} or a bare
// {result: ...}; all of them collapse into this struct.
type Envelope struct {
	Success bool
	Message string
	Payload json.RawMessage
}

type rawEnvelope struct {
	Success *bool           `json:"success"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

// ParseEnvelope normalizes body.  It fails only if body is not a JSON object.
func ParseEnvelope(body []byte) (Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, err
	}
	env := Envelope{Success: true, Message: text(raw.Message)}
	if truthy(raw.Error) {
		env.Success = false
		if env.Message == "" {
			env.Message = text(raw.Error)
		}
	}
	if raw.Success != nil {
		env.Success = *raw.Success
	}
	switch {
	case present(raw.Data):
		env.Payload = raw.Data
	case present(raw.Result):
		env.Payload = raw.Result
	}
	// Some endpoints tuck the failure inside the payload: {result: {error: ...}}.
	if obj := objectOf(env.Payload); obj != nil && truthy(obj["error"]) {
		env.Success = false
		if env.Message == "" {
			env.Message = firstText(obj["message"], obj["error"])
		}
	}
	return env, nil
}

// decodeInto unmarshals the payload into out.  An empty payload is an error:
// the caller asked for data and the reply carried none.
func decodeInto(payload json.RawMessage, out any) error {
	if !present(payload) {
		return errors.New("empty payload")
	}
	return json.Unmarshal(payload, out)
}

// decodeList accepts a bare array or an object wrapping it under "data".
func decodeList[T any](payload json.RawMessage) ([]T, error) {
	p := bytes.TrimSpace(payload)
	if !present(p) {
		return nil, errors.New("empty payload")
	}
	if p[0] == '{' {
		var inner struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(p, &inner); err != nil {
			return nil, err
		}
		if !present(inner.Data) {
			return nil, errors.New("object payload without data list")
		}
		p = bytes.TrimSpace(inner.Data)
	}
	if len(p) == 0 || p[0] != '[' {
		return nil, fmt.Errorf("expected a list, got %.20s", p)
	}
	var out []T
	if err := json.Unmarshal(p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func present(b json.RawMessage) bool {
	t := bytes.TrimSpace(b)
	return len(t) > 0 && !bytes.Equal(t, []byte("null"))
}

func truthy(b json.RawMessage) bool {
	t := bytes.TrimSpace(b)
	if !present(t) {
		return false
	}
	switch string(t) {
	case "false", "0", `""`, "{}", "[]":
		return false
	}
	return true
}

func objectOf(b json.RawMessage) map[string]json.RawMessage {
	t := bytes.TrimSpace(b)
	if len(t) == 0 || t[0] != '{' {
		return nil
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(t, &m) != nil {
		return nil
	}
	return m
}

// text flattens a message field.  Validation failures arrive as
// {"email": ["taken"]}; those are joined into one line.
func text(b json.RawMessage) string {
	if !present(b) {
		return ""
	}
	var s string
	if json.Unmarshal(b, &s) == nil {
		return s
	}
	var fields map[string][]string
	if json.Unmarshal(b, &fields) == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, fields[k]...)
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func firstText(candidates ...json.RawMessage) string {
	for _, c := range candidates {
		if s := text(c); s != "" {
			return s
		}
	}
	return ""
}
