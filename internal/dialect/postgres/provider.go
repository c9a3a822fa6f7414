// Package postgres provides the PostgreSQL annotation provider. It reads
// resolved model views and emits PostgreSQL-specific schema metadata
// (storage parameters, identity/serial generation, collations, index access
// methods, text-search configuration, extensions) as namespaced annotations
// for design-time tooling.
package postgres

import (
	"fmt"
	"strings"

	"pganno/internal/dialect"
	"pganno/internal/model"
)

func init() {
	dialect.Register(dialect.PostgreSQL, func() dialect.AnnotationProvider {
		return New()
	})
}

// Provider is a stateless PostgreSQL annotation provider. Every method is a
// pure read of the given view; a view referencing a property that cannot be
// resolved to a column indicates a model-consistency bug upstream and panics.
type Provider struct{}

// New creates a new PostgreSQL annotation provider.
func New() *Provider {
	return &Provider{}
}

// ForTable extracts table-level annotations: the unlogged flag, the
// interleave-in-parent marker, and every storage-parameter:* annotation on
// the representative entity, in declaration order. Co-mapped entities are
// validated upstream to agree on these facets, so the first is representative.
func (p *Provider) ForTable(t *model.Table, designTime bool) []model.Annotation {
	if !designTime {
		return nil
	}

	entity := t.Entities[0]
	var anns []model.Annotation

	if entity.Unlogged {
		anns = append(anns, model.Annotation{Name: NameUnlogged, Value: true})
	}
	if entity.InterleaveInParent != nil {
		anns = append(anns, model.Annotation{Name: NameInterleaveInParent, Value: entity.InterleaveInParent})
	}
	for _, a := range entity.Annotations {
		if strings.HasPrefix(a.Name, StorageParameterPrefix) {
			anns = append(anns, a)
		}
	}
	return anns
}

// ForColumn extracts column-level annotations: value-generation strategy and
// identity options, the default collation (only when no mapped property sets
// an explicit one; explicit collations are rendered by the generic layer),
// text-search configuration, resolved tsvector source columns, and the
// compression method.
func (p *Provider) ForColumn(c *model.Column, designTime bool) []model.Annotation {
	if !designTime {
		return nil
	}

	var anns []model.Annotation

	if property := valueGeneratedProperty(c); property != nil {
		anns = append(anns, model.Annotation{Name: NameValueGenerationStrategy, Value: property.ValueGeneration})
		if property.ValueGeneration.IsIdentity() && property.IdentityOptions != "" {
			anns = append(anns, model.Annotation{Name: NameIdentityOptions, Value: property.IdentityOptions})
		}
	}

	if collation := defaultCollation(c); collation != "" {
		anns = append(anns, model.Annotation{Name: NameDefaultColumnCollation, Value: collation})
	}

	for _, m := range c.PropertyMappings {
		if m.Property.TsVectorConfig != "" {
			anns = append(anns, model.Annotation{Name: NameTsVectorConfig, Value: m.Property.TsVectorConfig})
			break
		}
	}

	for _, m := range c.PropertyMappings {
		if len(m.Property.TsVectorProperties) == 0 {
			continue
		}
		columns := make([]string, 0, len(m.Property.TsVectorProperties))
		for _, name := range m.Property.TsVectorProperties {
			columns = append(columns, mustResolveColumn(c.Table, name, "tsvector source"))
		}
		anns = append(anns, model.Annotation{Name: NameTsVectorSourceColumns, Value: columns})
		break
	}

	if len(c.PropertyMappings) > 0 {
		// Compression is validated upstream to be consistent across all
		// mappings sharing the column.
		if compression := c.PropertyMappings[0].Property.Compression; compression != "" {
			anns = append(anns, model.Annotation{Name: NameCompressionMethod, Value: compression})
		}
	}

	return anns
}

// ForIndex extracts index-level annotations from the representative logical
// definition: collations, access method, operator classes, sort orders, null
// orderings, text-search configuration, resolved include columns, and the
// concurrent-creation flag when explicitly set.
func (p *Provider) ForIndex(i *model.Index, designTime bool) []model.Annotation {
	if !designTime {
		return nil
	}

	def := i.Definitions[0]
	var anns []model.Annotation

	if len(def.Collations) > 0 {
		anns = append(anns, model.Annotation{Name: NameIndexCollation, Value: def.Collations})
	}
	if def.Method != "" {
		anns = append(anns, model.Annotation{Name: NameIndexMethod, Value: def.Method})
	}
	if len(def.OperatorClasses) > 0 {
		anns = append(anns, model.Annotation{Name: NameIndexOperators, Value: def.OperatorClasses})
	}
	if len(def.SortOrders) > 0 {
		anns = append(anns, model.Annotation{Name: NameIndexSortOrder, Value: def.SortOrders})
	}
	if len(def.NullOrders) > 0 {
		anns = append(anns, model.Annotation{Name: NameIndexNullSortOrder, Value: def.NullOrders})
	}
	if def.TsVectorConfig != "" {
		anns = append(anns, model.Annotation{Name: NameIndexTsVectorConfig, Value: def.TsVectorConfig})
	}
	if len(def.IncludeProperties) > 0 {
		columns := make([]string, 0, len(def.IncludeProperties))
		for _, name := range def.IncludeProperties {
			columns = append(columns, mustResolveColumn(i.Table, name, "index include"))
		}
		anns = append(anns, model.Annotation{Name: NameIndexInclude, Value: columns})
	}
	if def.Concurrently != nil {
		anns = append(anns, model.Annotation{Name: NameCreatedConcurrently, Value: *def.Concurrently})
	}
	return anns
}

// ForModel returns the model annotations whose names carry one of the
// reserved prefixes (extension:, enum:, range:, collation-definition:),
// preserving declaration order.
func (p *Provider) ForModel(m *model.Model, designTime bool) []model.Annotation {
	if !designTime {
		return nil
	}

	var anns []model.Annotation
	for _, a := range m.Annotations {
		for _, prefix := range ModelPrefixes {
			if strings.HasPrefix(a.Name, prefix) {
				anns = append(anns, a)
				break
			}
		}
	}
	return anns
}

// valueGeneratedProperty finds the first property with a store-generated
// strategy among the mappings whose table mapping is the principal mapping of
// the (possibly shared) table and whose declaring entity is the mapping's
// entity. The second condition guards against picking up a property of a
// different entity sharing the column in table-splitting scenarios.
func valueGeneratedProperty(c *model.Column) *model.Property {
	for _, m := range c.PropertyMappings {
		if !m.TableMapping.IsSharedTablePrincipal || m.Property.Entity != m.TableMapping.Entity {
			continue
		}
		if m.Property.ValueGeneration.IsStoreGenerated() {
			return m.Property
		}
	}
	return nil
}

// defaultCollation returns the model default collation when no mapped
// property carries an explicit one. Explicit per-property collations are
// handled by the generic mechanism and must not be duplicated here.
func defaultCollation(c *model.Column) string {
	for _, m := range c.PropertyMappings {
		if m.Property.Collation != "" {
			return ""
		}
	}
	if len(c.PropertyMappings) == 0 {
		return ""
	}
	return c.Table.Model.DefaultCollation
}

// mustResolveColumn resolves a property name to its physical column within
// the table. A name that does not resolve indicates invalid upstream model
// state that must be fixed before schema generation can proceed, so this
// fails immediately instead of returning an error.
func mustResolveColumn(t *model.Table, property, kind string) string {
	column, ok := t.ColumnNameFor(property)
	if !ok {
		panic(fmt.Sprintf("postgres: %s property %q has no column in table %q", kind, property, t.ID))
	}
	return column
}
