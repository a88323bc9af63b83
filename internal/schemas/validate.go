// Package schemas provides JSON Schema validation for interaction event
// payloads before they enter the append-only log. The log itself treats
// payloads as opaque; validating at the boundary keeps garbage out of the
// audit trail without coupling the log to event shapes.
package schemas

import (
	"embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.json
var schemaFiles embed.FS

// eventSchemas maps event types to their schema files. Event types without
// an entry are passed through unvalidated; the log stores them as-is.
var eventSchemas = map[string]string{
	"qualification":  "qualification_event.json",
	"reply_analyzed": "reply_analyzed_event.json",
}

var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

// ValidationError reports the field-level failures of a payload validation.
type ValidationError struct {
	EventType string
	Failures  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload for %s event failed schema validation: %v", e.EventType, e.Failures)
}

// ValidatePayload checks an event payload against the schema registered for
// its event type, if any. A nil return means the payload may be appended.
func ValidatePayload(eventType string, payload map[string]any) error {
	filename, ok := eventSchemas[eventType]
	if !ok {
		return nil
	}

	schema, err := loadSchema(filename)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("failed to validate %s payload: %w", eventType, err)
	}
	if result.Valid() {
		return nil
	}

	failures := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		failures = append(failures, desc.String())
	}
	return &ValidationError{EventType: eventType, Failures: failures}
}

// loadSchema compiles and caches an embedded schema file.
func loadSchema(filename string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[filename]; ok {
		return schema, nil
	}

	data, err := schemaFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", filename, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", filename, err)
	}

	compiled[filename] = schema
	return schema, nil
}
