// Package model contains the single source of truth for the resolved schema
// model. It provides read-only projections of logical entities, properties,
// and index definitions onto the physical tables, columns, and indexes they
// are mapped to. Views are fully resolved and validated by the model builder
// before anything here is read; nothing in this package mutates them.
package model

import "fmt"

// Annotation is a namespaced (name, value) pair describing PostgreSQL-specific
// behavior that the generic schema model cannot represent. Values are plain
// serializable scalars or string slices.
type Annotation struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// TableIdentifier identifies a physical table by name and schema.
type TableIdentifier struct {
	Name   string `json:"name"`
	Schema string `json:"schema,omitempty"`
}

// String renders the identifier as schema.name, or just name when the
// schema is empty.
func (t TableIdentifier) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return fmt.Sprintf("%s.%s", t.Schema, t.Name)
}

// SortOrder is the sort direction of an index column.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// NullOrder is the placement of NULLs within an index column's sort order.
type NullOrder string

const (
	NullsFirst NullOrder = "first"
	NullsLast  NullOrder = "last"
)

// ValueGeneration is the strategy used to generate values for a property.
type ValueGeneration string

const (
	GenerationNone              ValueGeneration = "none"
	GenerationIdentityByDefault ValueGeneration = "identity-by-default"
	GenerationIdentityAlways    ValueGeneration = "identity-always"
	GenerationSerial            ValueGeneration = "serial"
)

// IsIdentity reports whether the strategy is one of the two identity variants.
func (g ValueGeneration) IsIdentity() bool {
	return g == GenerationIdentityByDefault || g == GenerationIdentityAlways
}

// IsStoreGenerated reports whether the database generates values for this
// strategy.
func (g ValueGeneration) IsStoreGenerated() bool {
	return g.IsIdentity() || g == GenerationSerial
}

// Entity is a logical entity definition mapped onto a table. Several entities
// may share one table (table splitting); the model builder guarantees that
// co-mapped entities agree on every facet read off the first of them.
type Entity struct {
	Name string

	// Unlogged marks the mapped table as UNLOGGED (not WAL-logged).
	Unlogged bool

	// InterleaveInParent is an opaque vendor marker carried through to the
	// table annotations verbatim when set.
	InterleaveInParent any

	// Annotations holds the entity's own namespaced annotations in
	// declaration order, including storage-parameter:* entries.
	Annotations []Annotation
}

// Property is a logical property definition mapped onto a column.
type Property struct {
	Name string

	// Entity is the declaring entity.
	Entity *Entity

	ValueGeneration ValueGeneration

	// IdentityOptions is the raw identity sequence options text (start,
	// increment, ...); only meaningful for the identity strategies.
	IdentityOptions string

	// Collation is an explicit per-property collation. When empty the
	// model-wide default collation applies.
	Collation string

	// TsVectorConfig is the text-search configuration name for a generated
	// tsvector property.
	TsVectorConfig string

	// TsVectorProperties names the source properties a generated tsvector
	// property is derived from, in order.
	TsVectorProperties []string

	// Compression is the column compression method (e.g. "lz4").
	Compression string
}

// TableMapping binds one entity to the table it is stored in. Exactly one
// mapping per shared table is the principal mapping.
type TableMapping struct {
	Entity *Entity
	Table  *Table

	// IsSharedTablePrincipal marks the mapping of the entity that owns the
	// (possibly shared) table.
	IsSharedTablePrincipal bool
}

// PropertyMapping binds one property to the column it is stored in.
type PropertyMapping struct {
	Property     *Property
	TableMapping *TableMapping
}

// Column is a physical column view aggregating every property mapped onto it.
type Column struct {
	Name  string
	Table *Table

	// PropertyMappings lists the mappings of all properties sharing this
	// column, in declaration order.
	PropertyMappings []*PropertyMapping
}

// IndexDef is a logical index definition. All slices with per-column facets
// (collations, operator classes, sort orders, null orders) are positional
// against Properties.
type IndexDef struct {
	Name       string
	Properties []string

	Collations      []string
	Method          string
	OperatorClasses []string
	SortOrders      []SortOrder
	NullOrders      []NullOrder
	TsVectorConfig  string

	// IncludeProperties names non-key properties covered by the index.
	IncludeProperties []string

	// Concurrently is tri-state: nil means "use the default" and is never
	// materialized as an annotation.
	Concurrently *bool
}

// Index is a physical index view aggregating every logical index definition
// mapped onto it. The model builder guarantees co-mapped definitions agree on
// all facets, so the first is representative.
type Index struct {
	Name        string
	Table       *Table
	Definitions []*IndexDef
}

// Table is a physical table view.
type Table struct {
	ID    TableIdentifier
	Model *Model

	// Entities lists all logical entities sharing this table in declaration
	// order; the first one is the principal.
	Entities []*Entity

	Columns []*Column
	Indexes []*Index

	// PropertyColumns maps logical property names to physical column names
	// for every property stored in this table.
	PropertyColumns map[string]string
}

// ColumnNameFor resolves a logical property name to the physical column name
// within this table.
func (t *Table) ColumnNameFor(property string) (string, bool) {
	name, ok := t.PropertyColumns[property]
	return name, ok
}

// Column returns the column with the given physical name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Index returns the index with the given physical name, or nil.
func (t *Table) Index(name string) *Index {
	for _, i := range t.Indexes {
		if i.Name == name {
			return i
		}
	}
	return nil
}

// Model is the whole-model view.
type Model struct {
	// DefaultCollation is the model-wide default column collation, applied
	// to every column without an explicit per-property collation.
	DefaultCollation string

	// Annotations holds model-level annotations in declaration order,
	// including extension:*, enum:*, range:*, and collation-definition:*
	// entries.
	Annotations []Annotation

	Tables []*Table
}

// Table returns the table with the given schema and name, or nil.
func (m *Model) Table(schema, name string) *Table {
	for _, t := range m.Tables {
		if t.ID.Schema == schema && t.ID.Name == name {
			return t
		}
	}
	return nil
}
