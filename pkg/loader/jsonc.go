package loader

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

// DecodeJSONC strips // line comments, /* block comments */ and trailing
// commas from input, then parses the remainder as a single JSON document.
// Catalog files are often authored by hand in JSONC so entries can carry
// annotations without breaking strict JSON consumers.
func DecodeJSONC(input string) (interface{}, error) {
	stripped := jsonc.ToJSON([]byte(input))

	var data interface{}
	if err := json.Unmarshal(stripped, &data); err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}
	return data, nil
}

// loadJSONC parses a JSONC string and returns it wrapped in []interface{}.
func loadJSONC(input string) ([]interface{}, error) {
	decoded, err := DecodeJSONC(input)
	if err != nil {
		return nil, err
	}
	return []interface{}{decoded}, nil
}
