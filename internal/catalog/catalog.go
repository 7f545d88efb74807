// Package catalog defines the parts-model and SKU records the dialogs work
// with, and the Catalog contract implemented by the REST client and the local
// sqlite service.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Model is a parts model a SKU can reference.
type Model struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	PartNumber string    `json:"part_number"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewModel is the payload for creating a model. RequestKey makes the create
// idempotent: repeating it returns the model created the first time.
type NewModel struct {
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	PartNumber string `json:"part_number"`
	Category   string `json:"category"`
	RequestKey string `json:"-"`
}

// Normalize trims surrounding whitespace from every field.
func (m NewModel) Normalize() NewModel {
	m.Name = strings.TrimSpace(m.Name)
	m.Brand = strings.TrimSpace(m.Brand)
	m.PartNumber = strings.TrimSpace(m.PartNumber)
	m.Category = strings.TrimSpace(m.Category)
	return m
}

// ModelQuery selects one page of models.
type ModelQuery struct {
	Search string
	Offset int
	Limit  int
}

// ModelPage is one page of a model listing.
type ModelPage struct {
	Models []Model `json:"models"`
	Total  int     `json:"total"`
	Offset int     `json:"offset"`
}

// HasNext reports whether more models follow this page.
func (p ModelPage) HasNext() bool { return p.Offset+len(p.Models) < p.Total }

// SKU is a stock keeping unit in inventory.
type SKU struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	ModelName string    `json:"model_name"`
	Condition string    `json:"condition"`
	CostCents int64     `json:"cost_cents"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSKU is the payload for creating a SKU.
type NewSKU struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	ModelName  string `json:"model_name"`
	Condition  string `json:"condition"`
	CostCents  int64  `json:"cost_cents"`
	RequestKey string `json:"-"`
}

// Normalize trims surrounding whitespace from text fields and upper-cases the code.
func (s NewSKU) Normalize() NewSKU {
	s.Code = strings.ToUpper(strings.TrimSpace(s.Code))
	s.Title = strings.TrimSpace(s.Title)
	s.ModelName = strings.TrimSpace(s.ModelName)
	s.Condition = strings.TrimSpace(s.Condition)
	return s
}

// Catalog is the backend the dialogs browse and create records in.
type Catalog interface {
	ListModels(ctx context.Context, q ModelQuery) (ModelPage, error)
	CreateModel(ctx context.Context, m NewModel) (Model, error)
	ListSKUs(ctx context.Context, limit int) ([]SKU, error)
	CreateSKU(ctx context.Context, s NewSKU) (SKU, error)
}

// ValidationError reports field-level problems with a payload.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError builds a ValidationError for a single field.
func FieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
