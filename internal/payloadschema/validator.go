package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	translateRequestSchema    = "translate_request.schema.json"
	translateURLRequestSchema = "translate_url_request.schema.json"
)

//go:embed translate_request.schema.json
var translateRequestSchemaJSON string

//go:embed translate_url_request.schema.json
var translateURLRequestSchemaJSON string

// TranslateRequest is the body of POST /api/v1/translate.
type TranslateRequest struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Text       string `json:"text"`
	Backend    string `json:"backend,omitempty"`
}

// TranslateURLRequest is the body of POST /api/v1/translate/url.
type TranslateURLRequest struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	URL        string `json:"url"`
	MaxChars   int    `json:"max_chars,omitempty"`
	Backend    string `json:"backend,omitempty"`
}

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

// ValidateTranslateRequest checks payload against the translate request schema.
// An empty or whitespace-only text is valid; the orchestrator short-circuits it.
func ValidateTranslateRequest(payload json.RawMessage) (*TranslateRequest, error) {
	var req TranslateRequest
	if err := validateInto(translateRequestSchema, payload, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ValidateTranslateURLRequest checks payload against the translate-by-URL schema.
func ValidateTranslateURLRequest(payload json.RawMessage) (*TranslateURLRequest, error) {
	var req TranslateURLRequest
	if err := validateInto(translateURLRequestSchema, payload, &req); err != nil {
		return nil, err
	}
	if err := validateHTTPURL("url", req.URL); err != nil {
		return nil, err
	}
	return &req, nil
}

func validateInto(schemaName string, payload json.RawMessage, out any) error {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema(schemaName)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("normalize payload JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

func loadSchema(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		sources := map[string]string{
			translateRequestSchema:    translateRequestSchemaJSON,
			translateURLRequestSchema: translateURLRequestSchemaJSON,
		}
		compiled := make(map[string]*jsonschema.Schema, len(sources))
		for resource, source := range sources {
			if err := compiler.AddResource(resource, strings.NewReader(source)); err != nil {
				compileErr = fmt.Errorf("add schema resource %s: %w", resource, err)
				return
			}
		}
		for resource := range sources {
			schema, err := compiler.Compile(resource)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", resource, err)
				return
			}
			compiled[resource] = schema
		}
		compiledSchemas = compiled
	})

	if compileErr != nil {
		return nil, compileErr
	}
	schema, ok := compiledSchemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %s not initialized", name)
	}
	return schema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateHTTPURL(fieldName, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	parsed, err := url.ParseRequestURI(trimmed)
	if err != nil {
		return fmt.Errorf("%s is not a valid URI: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", fieldName)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}
	return nil
}
