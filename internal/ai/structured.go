package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

var fenceRe = regexp.MustCompile("(?m)^\\s*```[A-Za-z]*[ \\t]*\\r?\\n?|```")

// ParseStructured decodes the JSON object a model was asked to answer with.
// Markdown code fences and any prose before the first '{' or '[' (or after
// the matching last '}' or ']') are ignored. Failure matches ErrMalformedOutput.
func ParseStructured(raw string, v any) error {
	cleaned := bytes.TrimSpace(fenceRe.ReplaceAll([]byte(raw), nil))
	body := extractJSON(cleaned)
	if len(body) == 0 {
		return fmt.Errorf("%w: no JSON value in response", ErrMalformedOutput)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// extractJSON trims text outside the outermost object or array.
func extractJSON(b []byte) []byte {
	start := bytes.IndexAny(b, "{[")
	if start < 0 {
		return nil
	}
	closer := byte('}')
	if b[start] == '[' {
		closer = ']'
	}
	end := bytes.LastIndexByte(b, closer)
	if end < start {
		return nil
	}
	return b[start : end+1]
}
