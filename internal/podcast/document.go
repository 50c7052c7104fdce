package podcast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed artifacts_schema.json
var artifactsSchemaRaw []byte

var (
	artifactsSchemaOnce sync.Once
	artifactsSchema     *jsonschema.Schema
	artifactsSchemaErr  error
)

func compiledArtifactsSchema() (*jsonschema.Schema, error) {
	artifactsSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("artifacts_schema.json", bytes.NewReader(artifactsSchemaRaw)); err != nil {
			artifactsSchemaErr = fmt.Errorf("failed to load artifacts schema: %w", err)
			return
		}
		artifactsSchema, artifactsSchemaErr = compiler.Compile("artifacts_schema.json")
	})
	return artifactsSchema, artifactsSchemaErr
}

// ReadArtifactsFile loads a persisted artifact document, validating it
// against the document schema before decoding. Hand-edited or truncated
// files are rejected rather than decoded into a half-empty struct.
func ReadArtifactsFile(path string) (*ArtifactsDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schema, err := compiledArtifactsSchema()
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("artifact document is not valid JSON: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("artifact document failed schema validation: %w", err)
	}

	var doc ArtifactsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
