package automation

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed all:schemas
var schemaFS embed.FS

// SchemaError is a single violation of the definition schema.
type SchemaError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e SchemaError) String() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// schemaValidator checks the definition envelope against the embedded
// JSON schemas before any expression is decoded.
type schemaValidator struct {
	schema *jsonschema.Schema
}

func newSchemaValidator() (*schemaValidator, error) {
	c := jsonschema.NewCompiler()

	// Resource IDs are paths relative to schemas/v1/ so that "$ref":
	// "expression.json" resolves against the embedded file.
	const schemaRoot = "schemas/v1/"
	err := fs.WalkDir(schemaFS, "schemas", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		data, err := schemaFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read embedded schema %s: %w", path, err)
		}

		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse embedded schema %s: %w", path, err)
		}

		id := strings.TrimPrefix(path, schemaRoot)
		if err := c.AddResource(id, doc); err != nil {
			return fmt.Errorf("add schema resource %s (id=%s): %w", path, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load embedded schemas: %w", err)
	}

	schema, err := c.Compile("definition.json")
	if err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}
	return &schemaValidator{schema: schema}, nil
}

// validate checks an already-decoded definition document.
func (v *schemaValidator) validate(doc any) []SchemaError {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []SchemaError{{Message: err.Error()}}
	}
	return collectErrors(ve)
}

// collectErrors flattens a validation error tree into its leaves.
func collectErrors(ve *jsonschema.ValidationError) []SchemaError {
	var errs []SchemaError

	instancePath := "/" + strings.Join(ve.InstanceLocation, "/")
	if len(ve.InstanceLocation) == 0 {
		instancePath = ""
	}

	if len(ve.Causes) == 0 {
		if msg := ve.Error(); msg != "" {
			errs = append(errs, SchemaError{Path: instancePath, Message: msg})
		}
		return errs
	}
	for _, cause := range ve.Causes {
		errs = append(errs, collectErrors(cause)...)
	}
	return errs
}
