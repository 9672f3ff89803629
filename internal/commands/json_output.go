package commands

import (
	"encoding/json"
	"fmt"
)

// jsonFailure is printed in place of a --json result that could not be encoded.
type jsonFailure struct {
	Error string `json:"error"`
}

// marshalJSONOrFallback renders v as indented JSON for --json output. When v
// cannot be encoded the output is a jsonFailure object naming the Go type, so
// stdout still parses as JSON.
func marshalJSONOrFallback(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// A single string field always encodes.
		data, _ = json.MarshalIndent(jsonFailure{Error: fmt.Sprintf("encoding %T as JSON: %v", v, err)}, "", "  ")
	}
	return string(data) + "\n"
}
