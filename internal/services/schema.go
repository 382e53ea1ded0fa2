package services

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	criteriaSchema = mustLoadSchema("criteria.schema.json")
	matchSchema    = mustLoadSchema("match.schema.json")
)

func mustLoadSchema(name string) *gojsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

func validateJSON(schema *gojsonschema.Schema, doc []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, re := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{Field: re.Field(), Description: re.Description()})
	}
	return verr
}

// decodeLLMJSON strips fences from a model reply, validates it against
// schema and decodes it into target. Numbers and booleans sent as strings
// are accepted.
func decodeLLMJSON(stage, raw string, schema *gojsonschema.Schema, target any) error {
	body := extractJSON(raw)

	var generic map[string]any
	if err := json.Unmarshal([]byte(body), &generic); err != nil {
		return &MalformedResponseError{Stage: stage, Cause: fmt.Errorf("invalid json: %w", err)}
	}

	if err := validateJSON(schema, []byte(body)); err != nil {
		return &MalformedResponseError{Stage: stage, Cause: err}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(generic); err != nil {
		return &MalformedResponseError{Stage: stage, Cause: err}
	}
	return nil
}

// extractJSON pulls the outermost JSON object out of text that may carry
// markdown fences or prose around it.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}
