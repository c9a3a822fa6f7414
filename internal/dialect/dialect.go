// Package dialect provides a unified interface for dialect-specific schema
// annotation providers. A provider reads resolved model views and emits the
// vendor metadata that the generic model cannot represent, as namespaced
// (name, value) annotations consumed by design-time tooling.
package dialect

import (
	"fmt"

	"pganno/internal/model"
)

type Type string

const (
	PostgreSQL Type = "postgresql"
)

// AnnotationProvider extracts dialect-specific annotations from resolved
// schema object views. Each method is a pure, single-pass transformation:
// inputs are never mutated, identical inputs yield identical output, and the
// returned slice preserves the upstream declaration order of multi-entry
// families. When designTime is false every method returns an empty result;
// these annotations only matter for schema generation, never for query
// execution.
type AnnotationProvider interface {
	ForModel(m *model.Model, designTime bool) []model.Annotation
	ForTable(t *model.Table, designTime bool) []model.Annotation
	ForColumn(c *model.Column, designTime bool) []model.Annotation
	ForIndex(i *model.Index, designTime bool) []model.Annotation
}

var registry = map[Type]func() AnnotationProvider{}

// Register creates a new registry entry for the specified dialect.
func Register(d Type, ctor func() AnnotationProvider) {
	registry[d] = ctor
}

// Get returns the annotation provider for the specified dialect type.
func Get(d Type) (AnnotationProvider, error) {
	ctor, ok := registry[d]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", d)
	}
	return ctor(), nil
}
