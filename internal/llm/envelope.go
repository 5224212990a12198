package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseEnvelope extracts the candidate array from a reasoning-service reply.
// The model occasionally drifts from the requested shape, so a fixed priority
// order of envelopes is accepted:
//
//  1. an object with an array-valued "products" field
//  2. an object with an array-valued "matches" field
//  3. the first array-valued field of the object, in document order
//  4. a bare top-level array
//
// Anything else (including invalid JSON) is an error; callers treat it as
// zero matches rather than a batch failure.
func ParseEnvelope(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	if trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, fmt.Errorf("decode top-level array: %w", err)
		}
		return arr, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("response is neither object nor array")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var products, matches, first []json.RawMessage
	var haveProducts, haveMatches, haveFirst bool
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode envelope key: %w", err)
		}
		key, _ := keyTok.(string)

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("decode envelope value for %q: %w", key, err)
		}

		v := bytes.TrimSpace(val)
		if len(v) == 0 || v[0] != '[' {
			continue
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err != nil {
			return nil, fmt.Errorf("decode %q array: %w", key, err)
		}
		switch key {
		case "products":
			products, haveProducts = arr, true
		case "matches":
			matches, haveMatches = arr, true
		}
		if !haveFirst {
			first, haveFirst = arr, true
		}
	}

	switch {
	case haveProducts:
		return products, nil
	case haveMatches:
		return matches, nil
	case haveFirst:
		return first, nil
	}
	return nil, fmt.Errorf("no array-valued field in response")
}
