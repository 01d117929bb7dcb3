package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeDefinitions parses a stored metafields column. Empty and "null" values
// decode to an empty list, and a JSON string wrapping the array is unwrapped
// once. Anything else that fails to parse returns an empty list and an error
// so callers can log and continue.
func DecodeDefinitions(raw string) ([]MetafieldDefinition, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []MetafieldDefinition{}, nil
	}

	var defs []MetafieldDefinition
	if err := json.Unmarshal([]byte(raw), &defs); err == nil {
		if defs == nil {
			defs = []MetafieldDefinition{}
		}
		return defs, nil
	}

	var wrapped string
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		return DecodeDefinitions(wrapped)
	}

	return []MetafieldDefinition{}, fmt.Errorf("models: malformed metafields column: %.64q", raw)
}

// EncodeDefinitions serializes definitions for the metafields column. A nil
// list is stored as "[]".
func EncodeDefinitions(defs []MetafieldDefinition) (string, error) {
	if defs == nil {
		return "[]", nil
	}
	b, err := json.Marshal(defs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
