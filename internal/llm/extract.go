package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
)

var markdownFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// cleanMarkdownWrapper strips a ```json fence around a response.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if m := markdownFence.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return content
}

// ExtractJSON returns the JSON object carried by a model reply. The whole reply
// is tried first, then the outermost {...} substring.
func ExtractJSON(content string) ([]byte, error) {
	content = cleanMarkdownWrapper(content)
	if strings.HasPrefix(content, "{") && json.Valid([]byte(content)) {
		return []byte(content), nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in reply", common.ErrUnparsableOutput)
	}

	candidate := content[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("%w: malformed JSON object in reply", common.ErrUnparsableOutput)
	}
	return []byte(candidate), nil
}

// Schema is a compiled JSON schema for one agent's reply.
type Schema struct {
	schema *gojsonschema.Schema
}

// NewSchema compiles a JSON schema document.
func NewSchema(src string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustSchema is NewSchema for package-level schema literals.
func MustSchema(src string) *Schema {
	s, err := NewSchema(src)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks raw JSON against the schema.
func (s *Schema) Validate(raw []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: validation error: %w", common.ErrUnparsableOutput, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: schema validation failed: %s", common.ErrUnparsableOutput, strings.Join(errs, "; "))
	}
	return nil
}

// DecodeJSON extracts the JSON object from a reply, validates it against
// schema when one is given, and unmarshals it into out.
func DecodeJSON(content string, schema *Schema, out any) error {
	raw, err := ExtractJSON(content)
	if err != nil {
		return err
	}

	if schema != nil {
		if err := schema.Validate(raw); err != nil {
			return err
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnparsableOutput, err)
	}
	return nil
}
