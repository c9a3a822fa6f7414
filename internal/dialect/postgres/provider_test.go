package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pganno/internal/dialect"
	"pganno/internal/model"
)

// newTable builds a model with one table owned by a single entity and
// returns the table together with the entity's principal mapping.
func newTable(name string, entity *model.Entity) (*model.Table, *model.TableMapping) {
	m := &model.Model{}
	table := &model.Table{
		ID:              model.TableIdentifier{Name: name, Schema: "public"},
		Model:           m,
		Entities:        []*model.Entity{entity},
		PropertyColumns: make(map[string]string),
	}
	m.Tables = append(m.Tables, table)
	mapping := &model.TableMapping{Entity: entity, Table: table, IsSharedTablePrincipal: true}
	return table, mapping
}

// addColumn maps the given properties onto a new column of the table. A
// property without a declaring entity is assigned the mapping's entity.
func addColumn(table *model.Table, mapping *model.TableMapping, name string, props ...*model.Property) *model.Column {
	column := &model.Column{Name: name, Table: table}
	for _, p := range props {
		if p.Entity == nil {
			p.Entity = mapping.Entity
		}
		table.PropertyColumns[p.Name] = name
		column.PropertyMappings = append(column.PropertyMappings, &model.PropertyMapping{
			Property:     p,
			TableMapping: mapping,
		})
	}
	table.Columns = append(table.Columns, column)
	return column
}

func addIndex(table *model.Table, def *model.IndexDef) *model.Index {
	index := &model.Index{Name: def.Name, Table: table, Definitions: []*model.IndexDef{def}}
	table.Indexes = append(table.Indexes, index)
	return index
}

func TestRegisteredWithDialectRegistry(t *testing.T) {
	provider, err := dialect.Get(dialect.PostgreSQL)
	require.NoError(t, err)
	require.IsType(t, &Provider{}, provider)
}

func TestRuntimeExtractionIsEmpty(t *testing.T) {
	p := New()

	entity := &model.Entity{
		Name:        "Event",
		Unlogged:    true,
		Annotations: []model.Annotation{{Name: StorageParameterPrefix + "fillfactor", Value: 70}},
	}
	table, mapping := newTable("events", entity)
	column := addColumn(table, mapping, "id", &model.Property{
		Name:            "Id",
		ValueGeneration: model.GenerationIdentityAlways,
	})
	index := addIndex(table, &model.IndexDef{Name: "ix_events_id", Properties: []string{"Id"}, Method: "hash"})
	m := &model.Model{Annotations: []model.Annotation{{Name: ExtensionPrefix + "uuid-ossp", Value: true}}}

	assert.Empty(t, p.ForTable(table, false))
	assert.Empty(t, p.ForColumn(column, false))
	assert.Empty(t, p.ForIndex(index, false))
	assert.Empty(t, p.ForModel(m, false))
}

func TestForTableUnlogged(t *testing.T) {
	p := New()

	table, _ := newTable("events", &model.Entity{Name: "Event", Unlogged: true})
	assert.Equal(t, []model.Annotation{{Name: NameUnlogged, Value: true}}, p.ForTable(table, true))

	logged, _ := newTable("orders", &model.Entity{Name: "Order"})
	assert.Empty(t, p.ForTable(logged, true))
}

func TestForTableInterleavePassThrough(t *testing.T) {
	p := New()

	marker := map[string]any{"parent": "customers", "prefix": int64(1)}
	table, _ := newTable("orders", &model.Entity{Name: "Order", InterleaveInParent: marker})

	anns := p.ForTable(table, true)
	require.Len(t, anns, 1)
	assert.Equal(t, NameInterleaveInParent, anns[0].Name)
	assert.Equal(t, marker, anns[0].Value)
}

func TestForTableStorageParameters(t *testing.T) {
	p := New()

	entity := &model.Entity{
		Name: "Event",
		Annotations: []model.Annotation{
			{Name: StorageParameterPrefix + "fillfactor", Value: 70},
			{Name: "comment", Value: "not a storage parameter"},
			{Name: StorageParameterPrefix + "autovacuum_enabled", Value: false},
		},
	}
	table, _ := newTable("events", entity)

	assert.Equal(t, []model.Annotation{
		{Name: StorageParameterPrefix + "fillfactor", Value: 70},
		{Name: StorageParameterPrefix + "autovacuum_enabled", Value: false},
	}, p.ForTable(table, true))
}

func TestForColumnIdentity(t *testing.T) {
	tests := []struct {
		name     string
		property *model.Property
		want     []model.Annotation
	}{
		{
			name: "identity always with options",
			property: &model.Property{
				Name:            "Id",
				ValueGeneration: model.GenerationIdentityAlways,
				IdentityOptions: "start: 10 increment: 5",
			},
			want: []model.Annotation{
				{Name: NameValueGenerationStrategy, Value: model.GenerationIdentityAlways},
				{Name: NameIdentityOptions, Value: "start: 10 increment: 5"},
			},
		},
		{
			name: "identity by default without options",
			property: &model.Property{
				Name:            "Id",
				ValueGeneration: model.GenerationIdentityByDefault,
			},
			want: []model.Annotation{
				{Name: NameValueGenerationStrategy, Value: model.GenerationIdentityByDefault},
			},
		},
		{
			name: "serial never carries identity options",
			property: &model.Property{
				Name:            "Id",
				ValueGeneration: model.GenerationSerial,
				IdentityOptions: "start: 10",
			},
			want: []model.Annotation{
				{Name: NameValueGenerationStrategy, Value: model.GenerationSerial},
			},
		},
		{
			name:     "no generation strategy",
			property: &model.Property{Name: "Id", ValueGeneration: model.GenerationNone},
			want:     nil,
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, mapping := newTable("orders", &model.Entity{Name: "Order"})
			column := addColumn(table, mapping, "id", tt.property)
			assert.Equal(t, tt.want, p.ForColumn(column, true))
		})
	}
}

func TestForColumnValueGenerationSharedTable(t *testing.T) {
	p := New()

	// An identity property reached through a non-principal mapping must not
	// produce a strategy annotation.
	owner := &model.Entity{Name: "Order"}
	table, principal := newTable("orders", owner)
	splitting := &model.Entity{Name: "OrderDetails"}
	table.Entities = append(table.Entities, splitting)
	secondary := &model.TableMapping{Entity: splitting, Table: table}

	column := addColumn(table, secondary, "id", &model.Property{
		Name:            "Id",
		ValueGeneration: model.GenerationIdentityAlways,
	})
	assert.Empty(t, p.ForColumn(column, true))

	// A property declared by a different entity than the principal mapping's
	// entity is skipped even on the principal mapping.
	foreign := addColumn(table, principal, "ref", &model.Property{
		Name:            "Ref",
		Entity:          splitting,
		ValueGeneration: model.GenerationSerial,
	})
	assert.Empty(t, p.ForColumn(foreign, true))
}

func TestForColumnCollationPrecedence(t *testing.T) {
	p := New()

	t.Run("explicit collation suppresses the default", func(t *testing.T) {
		table, mapping := newTable("users", &model.Entity{Name: "User"})
		table.Model.DefaultCollation = "en_US"
		column := addColumn(table, mapping, "name", &model.Property{Name: "Name", Collation: "de_DE"})
		assert.Empty(t, p.ForColumn(column, true))
	})

	t.Run("model default applies without an explicit collation", func(t *testing.T) {
		table, mapping := newTable("users", &model.Entity{Name: "User"})
		table.Model.DefaultCollation = "en_US"
		column := addColumn(table, mapping, "name", &model.Property{Name: "Name"})
		assert.Equal(t, []model.Annotation{
			{Name: NameDefaultColumnCollation, Value: "en_US"},
		}, p.ForColumn(column, true))
	})

	t.Run("no default and no explicit collation", func(t *testing.T) {
		table, mapping := newTable("users", &model.Entity{Name: "User"})
		column := addColumn(table, mapping, "name", &model.Property{Name: "Name"})
		assert.Empty(t, p.ForColumn(column, true))
	})
}

func TestForColumnTsVector(t *testing.T) {
	p := New()

	table, mapping := newTable("posts", &model.Entity{Name: "Post"})
	addColumn(table, mapping, "title", &model.Property{Name: "Title"})
	addColumn(table, mapping, "body", &model.Property{Name: "Body"})
	vector := addColumn(table, mapping, "search_vector", &model.Property{
		Name:               "SearchVector",
		TsVectorConfig:     "english",
		TsVectorProperties: []string{"Title", "Body"},
	})

	assert.Equal(t, []model.Annotation{
		{Name: NameTsVectorConfig, Value: "english"},
		{Name: NameTsVectorSourceColumns, Value: []string{"title", "body"}},
	}, p.ForColumn(vector, true))
}

func TestForColumnTsVectorUnresolvableSource(t *testing.T) {
	p := New()

	table, mapping := newTable("posts", &model.Entity{Name: "Post"})
	vector := addColumn(table, mapping, "search_vector", &model.Property{
		Name:               "SearchVector",
		TsVectorProperties: []string{"Missing"},
	})

	require.PanicsWithValue(t,
		`postgres: tsvector source property "Missing" has no column in table "public.posts"`,
		func() { p.ForColumn(vector, true) })
}

func TestForColumnCompression(t *testing.T) {
	p := New()

	table, mapping := newTable("posts", &model.Entity{Name: "Post"})
	compressed := addColumn(table, mapping, "body", &model.Property{Name: "Body", Compression: "lz4"})
	plain := addColumn(table, mapping, "title", &model.Property{Name: "Title"})

	assert.Equal(t, []model.Annotation{
		{Name: NameCompressionMethod, Value: "lz4"},
	}, p.ForColumn(compressed, true))
	assert.Empty(t, p.ForColumn(plain, true))
}

func TestForIndexFacets(t *testing.T) {
	p := New()

	table, mapping := newTable("posts", &model.Entity{Name: "Post"})
	addColumn(table, mapping, "title", &model.Property{Name: "Title"})
	index := addIndex(table, &model.IndexDef{
		Name:            "ix_posts_title",
		Properties:      []string{"Title"},
		Collations:      []string{"de_DE"},
		Method:          "gin",
		OperatorClasses: []string{"gin_trgm_ops"},
		SortOrders:      []model.SortOrder{model.SortDesc},
		NullOrders:      []model.NullOrder{model.NullsFirst},
		TsVectorConfig:  "english",
	})

	assert.Equal(t, []model.Annotation{
		{Name: NameIndexCollation, Value: []string{"de_DE"}},
		{Name: NameIndexMethod, Value: "gin"},
		{Name: NameIndexOperators, Value: []string{"gin_trgm_ops"}},
		{Name: NameIndexSortOrder, Value: []model.SortOrder{model.SortDesc}},
		{Name: NameIndexNullSortOrder, Value: []model.NullOrder{model.NullsFirst}},
		{Name: NameIndexTsVectorConfig, Value: "english"},
	}, p.ForIndex(index, true))
}

func TestForIndexNoFacets(t *testing.T) {
	p := New()

	table, mapping := newTable("posts", &model.Entity{Name: "Post"})
	addColumn(table, mapping, "title", &model.Property{Name: "Title"})
	index := addIndex(table, &model.IndexDef{Name: "ix_posts_title", Properties: []string{"Title"}})

	assert.Empty(t, p.ForIndex(index, true))
}

func TestForIndexIncludeColumns(t *testing.T) {
	p := New()

	table, mapping := newTable("orders", &model.Entity{Name: "Order"})
	addColumn(table, mapping, "id", &model.Property{Name: "Id"})
	addColumn(table, mapping, "created_at", &model.Property{Name: "CreatedAt"})
	index := addIndex(table, &model.IndexDef{
		Name:              "ix_orders_id",
		Properties:        []string{"Id"},
		IncludeProperties: []string{"CreatedAt"},
	})

	assert.Equal(t, []model.Annotation{
		{Name: NameIndexInclude, Value: []string{"created_at"}},
	}, p.ForIndex(index, true))
}

func TestForIndexUnresolvableIncludeColumn(t *testing.T) {
	p := New()

	table, mapping := newTable("orders", &model.Entity{Name: "Order"})
	addColumn(table, mapping, "id", &model.Property{Name: "Id"})
	index := addIndex(table, &model.IndexDef{
		Name:              "ix_orders_id",
		Properties:        []string{"Id"},
		IncludeProperties: []string{"Missing"},
	})

	require.PanicsWithValue(t,
		`postgres: index include property "Missing" has no column in table "public.orders"`,
		func() { p.ForIndex(index, true) })
}

func TestForIndexConcurrentlyTriState(t *testing.T) {
	p := New()

	table, mapping := newTable("orders", &model.Entity{Name: "Order"})
	addColumn(table, mapping, "id", &model.Property{Name: "Id"})

	unset := addIndex(table, &model.IndexDef{Name: "ix_unset", Properties: []string{"Id"}})
	assert.Empty(t, p.ForIndex(unset, true))

	explicitFalse := false
	disabled := addIndex(table, &model.IndexDef{
		Name:         "ix_disabled",
		Properties:   []string{"Id"},
		Concurrently: &explicitFalse,
	})
	assert.Equal(t, []model.Annotation{
		{Name: NameCreatedConcurrently, Value: false},
	}, p.ForIndex(disabled, true))

	explicitTrue := true
	enabled := addIndex(table, &model.IndexDef{
		Name:         "ix_enabled",
		Properties:   []string{"Id"},
		Concurrently: &explicitTrue,
	})
	assert.Equal(t, []model.Annotation{
		{Name: NameCreatedConcurrently, Value: true},
	}, p.ForIndex(enabled, true))
}

func TestForModelPrefixFilter(t *testing.T) {
	p := New()

	m := &model.Model{Annotations: []model.Annotation{
		{Name: ExtensionPrefix + "uuid-ossp", Value: true},
		{Name: "unrelated:foo", Value: 1},
		{Name: EnumPrefix + "mood", Value: []string{"happy", "sad"}},
		{Name: RangePrefix + "floatrange", Value: "float8"},
		{Name: CollationDefinitionPrefix + "german", Value: "de_DE"},
		{Name: "another-unrelated", Value: "x"},
	}}

	assert.Equal(t, []model.Annotation{
		{Name: ExtensionPrefix + "uuid-ossp", Value: true},
		{Name: EnumPrefix + "mood", Value: []string{"happy", "sad"}},
		{Name: RangePrefix + "floatrange", Value: "float8"},
		{Name: CollationDefinitionPrefix + "german", Value: "de_DE"},
	}, p.ForModel(m, true))
}

func TestExtractionIsIdempotent(t *testing.T) {
	p := New()

	entity := &model.Entity{
		Name:     "Event",
		Unlogged: true,
		Annotations: []model.Annotation{
			{Name: StorageParameterPrefix + "fillfactor", Value: 70},
		},
	}
	table, mapping := newTable("events", entity)
	table.Model.DefaultCollation = "en_US"
	table.Model.Annotations = []model.Annotation{{Name: ExtensionPrefix + "pgcrypto", Value: true}}
	column := addColumn(table, mapping, "id", &model.Property{
		Name:            "Id",
		ValueGeneration: model.GenerationIdentityByDefault,
		IdentityOptions: "start: 100",
	})
	index := addIndex(table, &model.IndexDef{Name: "ix_events_id", Properties: []string{"Id"}, Method: "hash"})

	assert.Equal(t, p.ForTable(table, true), p.ForTable(table, true))
	assert.Equal(t, p.ForColumn(column, true), p.ForColumn(column, true))
	assert.Equal(t, p.ForIndex(index, true), p.ForIndex(index, true))
	assert.Equal(t, p.ForModel(table.Model, true), p.ForModel(table.Model, true))
}
