package httpadapter

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

//go:embed openapi.yaml
var openAPIDocument []byte

type apiSpec struct {
	doc  *openapi3.T
	json []byte
}

func loadAPISpec() (*apiSpec, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	return &apiSpec{doc: doc, json: raw}, nil
}

// validateBody checks a JSON request body against a named component schema.
func (s *apiSpec) validateBody(schemaName string, body []byte) error {
	ref, ok := s.doc.Components.Schemas[schemaName]
	if !ok || ref.Value == nil {
		return fmt.Errorf("openapi schema %s is not defined", schemaName)
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request body", errors.New("request body must be valid JSON"))
	}
	if err := ref.Value.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate request body", err)
	}
	return nil
}
