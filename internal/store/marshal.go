package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/ir"
)

// marshalResult converts an ActionResult to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so equal results store identical bytes.
func marshalResult(r engine.ActionResult) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	data, err := ir.MarshalCanonicalAny(generic)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// unmarshalResult parses stored JSON TEXT back to an ActionResult.
func unmarshalResult(data string) (engine.ActionResult, error) {
	var r engine.ActionResult
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return engine.ActionResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return r, nil
}
