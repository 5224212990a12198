package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildCandidateJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is embedded in the prompt as the output contract and used
// locally to validate each decoded candidate. Optional fields accept an
// explicit null: models emit them despite the prompt forbidding it, and a
// null optional field means "absent", never "invalid candidate".
func BuildCandidateJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":           map[string]any{"type": "string", "minLength": 1},
			"brand":          map[string]any{"type": "string", "minLength": 1},
			"product_type":   map[string]any{"type": []string{"string", "null"}},
			"sub_type":       map[string]any{"type": []string{"string", "null"}},
			"bom_layer":      map[string]any{"type": []string{"string", "null"}},
			"vendor_name":    map[string]any{"type": []string{"string", "null"}},
			"page":           map[string]any{"type": []string{"integer", "null"}, "minimum": 1},
			"price":          map[string]any{"type": []string{"number", "null"}},
			"component_type": map[string]any{"type": []string{"string", "null"}},
		},
		"required": []string{"name", "brand"},
	}
}

// CompileCandidateSchema compiles the candidate schema once for reuse across
// every document in a run.
func CompileCandidateSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildCandidateJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("candidate.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("candidate.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateCandidate validates one raw candidate object against the compiled
// schema.
func ValidateCandidate(schema *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal candidate: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("candidate does not match schema: %w", err)
	}
	return nil
}
