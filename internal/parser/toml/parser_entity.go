package toml

import (
	"fmt"
	"reflect"

	"pganno/internal/model"
)

// convertEntities resolves every declared entity onto its physical table,
// creating the table on first mapping. The first entity mapped to a table
// holds the principal mapping; later entities sharing the table are
// table-splitting participants and must agree on the table-level facets.
func (c *converter) convertEntities() error {
	seen := make(map[string]bool, len(c.mf.Entities))
	for i := range c.mf.Entities {
		te := &c.mf.Entities[i]
		if te.Name == "" {
			return fmt.Errorf("toml: entity name is required")
		}
		if seen[te.Name] {
			return fmt.Errorf("toml: duplicate entity %q", te.Name)
		}
		seen[te.Name] = true
		if te.Table == "" {
			return fmt.Errorf("toml: entity %q: table is required", te.Name)
		}

		schema := te.Schema
		if schema == "" {
			schema = "public"
		}

		entity := &model.Entity{
			Name:               te.Name,
			Unlogged:           te.Unlogged,
			InterleaveInParent: te.Interleave,
			Annotations:        storageAnnotations(te.Storage),
		}

		id := model.TableIdentifier{Name: te.Table, Schema: schema}
		table, principal := c.tables[id.String()], false
		if table == nil {
			table = &model.Table{
				ID:              id,
				Model:           c.out,
				PropertyColumns: make(map[string]string),
			}
			c.tables[id.String()] = table
			c.out.Tables = append(c.out.Tables, table)
			principal = true
		} else if err := checkTableFacets(table, entity); err != nil {
			return err
		}

		table.Entities = append(table.Entities, entity)
		mapping := &model.TableMapping{Entity: entity, Table: table, IsSharedTablePrincipal: principal}
		c.mappings[entity.Name] = mapping

		if err := c.convertProperties(te, entity, table, mapping); err != nil {
			return err
		}
	}
	return nil
}

// checkTableFacets rejects entities that share a table but disagree on a
// facet the annotation provider reads off the representative entity only.
func checkTableFacets(table *model.Table, entity *model.Entity) error {
	first := table.Entities[0]
	if first.Unlogged != entity.Unlogged {
		return facetError(first, entity, table, "unlogged")
	}
	if !reflect.DeepEqual(first.InterleaveInParent, entity.InterleaveInParent) {
		return facetError(first, entity, table, "interleave_in_parent")
	}
	if !reflect.DeepEqual(first.Annotations, entity.Annotations) {
		return facetError(first, entity, table, "storage_parameters")
	}
	return nil
}

func facetError(a, b *model.Entity, table *model.Table, facet string) error {
	return fmt.Errorf("toml: entities %q and %q share table %q but disagree on %s",
		a.Name, b.Name, table.ID, facet)
}

func (c *converter) convertProperties(te *tomlEntity, entity *model.Entity, table *model.Table, mapping *model.TableMapping) error {
	seen := make(map[string]bool, len(te.Properties))
	for i := range te.Properties {
		tp := &te.Properties[i]
		if tp.Name == "" {
			return fmt.Errorf("toml: entity %q: property name is required", entity.Name)
		}
		if seen[tp.Name] {
			return fmt.Errorf("toml: entity %q: duplicate property %q", entity.Name, tp.Name)
		}
		seen[tp.Name] = true

		generation, err := parseValueGeneration(tp.ValueGeneration)
		if err != nil {
			return fmt.Errorf("toml: entity %q, property %q: %w", entity.Name, tp.Name, err)
		}

		columnName := tp.Column
		if columnName == "" {
			columnName = tp.Name
		}
		if existing, ok := table.PropertyColumns[tp.Name]; ok && existing != columnName {
			return fmt.Errorf("toml: property %q maps to both column %q and %q in table %q",
				tp.Name, existing, columnName, table.ID)
		}
		table.PropertyColumns[tp.Name] = columnName

		property := &model.Property{
			Name:               tp.Name,
			Entity:             entity,
			ValueGeneration:    generation,
			IdentityOptions:    tp.IdentityOptions,
			Collation:          tp.Collation,
			TsVectorConfig:     tp.TsVectorConfig,
			TsVectorProperties: tp.TsVectorSources,
			Compression:        tp.Compression,
		}

		column := table.Column(columnName)
		if column == nil {
			column = &model.Column{Name: columnName, Table: table}
			table.Columns = append(table.Columns, column)
		} else if first := column.PropertyMappings[0].Property; first.Compression != property.Compression {
			return fmt.Errorf("toml: properties %q and %q share column %q in table %q but disagree on compression",
				first.Name, property.Name, columnName, table.ID)
		}
		column.PropertyMappings = append(column.PropertyMappings, &model.PropertyMapping{
			Property:     property,
			TableMapping: mapping,
		})
	}
	return nil
}

func parseValueGeneration(s string) (model.ValueGeneration, error) {
	switch model.ValueGeneration(s) {
	case "", model.GenerationNone:
		return model.GenerationNone, nil
	case model.GenerationIdentityByDefault:
		return model.GenerationIdentityByDefault, nil
	case model.GenerationIdentityAlways:
		return model.GenerationIdentityAlways, nil
	case model.GenerationSerial:
		return model.GenerationSerial, nil
	default:
		return "", fmt.Errorf("unknown value_generation %q", s)
	}
}
