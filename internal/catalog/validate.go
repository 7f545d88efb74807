package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const newModelSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name":        {"type": "string", "minLength": 1, "maxLength": 120},
    "brand":       {"type": "string", "maxLength": 80},
    "part_number": {"type": "string", "maxLength": 64, "pattern": "^[A-Za-z0-9 ._/-]*$"},
    "category":    {"type": "string", "maxLength": 80}
  }
}`

const newSKUSchema = `{
  "type": "object",
  "required": ["code", "title"],
  "properties": {
    "code":       {"type": "string", "minLength": 1, "maxLength": 32, "pattern": "^[A-Z0-9-]+$"},
    "title":      {"type": "string", "minLength": 1, "maxLength": 80},
    "model_name": {"type": "string", "maxLength": 120},
    "condition":  {"type": "string", "enum": ["", "new", "used", "refurbished", "for parts"]},
    "cost_cents": {"type": "integer", "minimum": 0}
  }
}`

var (
	schemasOnce sync.Once
	modelSchema *gojsonschema.Schema
	skuSchema   *gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() error {
	schemasOnce.Do(func() {
		modelSchema, schemasErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(newModelSchema))
		if schemasErr != nil {
			return
		}
		skuSchema, schemasErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(newSKUSchema))
	})
	return schemasErr
}

// ValidateNewModel checks m (after Normalize) and returns a *ValidationError
// listing every bad field.
func ValidateNewModel(m NewModel) error {
	if err := loadSchemas(); err != nil {
		return fmt.Errorf("load model schema: %w", err)
	}
	return validate(modelSchema, m.Normalize())
}

// ValidateNewSKU checks s (after Normalize) the same way.
func ValidateNewSKU(s NewSKU) error {
	if err := loadSchemas(); err != nil {
		return fmt.Errorf("load sku schema: %w", err)
	}
	return validate(skuSchema, s.Normalize())
}

func validate(schema *gojsonschema.Schema, doc any) error {
	res, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	verr := &ValidationError{Fields: make(map[string]string)}
	for _, re := range res.Errors() {
		field := re.Field()
		if field == "(root)" {
			if p, ok := re.Details()["property"].(string); ok {
				field = p
			}
		}
		if _, seen := verr.Fields[field]; !seen {
			verr.Fields[field] = strings.ToLower(re.Description())
		}
	}
	return verr
}
