package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wippyai/remote-object/wire"
)

// parseArgs decodes a JSON array into script values.
func parseArgs(s string) ([]wire.Value, error) {
	if s == "" {
		return nil, nil
	}
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("args must be a JSON array: %w", err)
	}
	out := make([]wire.Value, len(raw))
	for i, r := range raw {
		v, err := toValue(r)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseField reads one TUI input. Valid JSON is decoded; anything else is
// taken as a string. An empty field is undefined.
func parseField(s string) wire.Value {
	if s == "" {
		return wire.UndefinedValue()
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	if err := dec.Decode(&raw); err != nil || dec.More() {
		return wire.String(s)
	}
	v, err := toValue(raw)
	if err != nil {
		return wire.String(s)
	}
	return v
}

func toValue(r any) (wire.Value, error) {
	switch x := r.(type) {
	case nil:
		return wire.UndefinedValue(), nil
	case float64:
		return wire.Number(x), nil
	case bool:
		return wire.Boolean(x), nil
	case string:
		return wire.String(x), nil
	case []any:
		elems := make([]wire.Value, len(x))
		for i, e := range x {
			v, err := toValue(e)
			if err != nil {
				return wire.Value{}, err
			}
			elems[i] = v
		}
		return wire.Array(elems...), nil
	default:
		return wire.Value{}, fmt.Errorf("unsupported JSON value %T", r)
	}
}
