package toml

import (
	"fmt"
	"reflect"

	"pganno/internal/model"
)

// convertIndexes runs after all entities are resolved so that index key
// properties can be checked against the complete property-to-column map of
// each table. Logical index definitions carrying the same name on a shared
// table are co-mapped onto one physical index and must agree on all facets.
func (c *converter) convertIndexes() error {
	for i := range c.mf.Entities {
		te := &c.mf.Entities[i]
		mapping := c.mappings[te.Name]
		table := mapping.Table

		for j := range te.Indexes {
			def, err := convertIndexDef(&te.Indexes[j], te.Name, table)
			if err != nil {
				return err
			}

			index := table.Index(def.Name)
			if index == nil {
				table.Indexes = append(table.Indexes, &model.Index{
					Name:        def.Name,
					Table:       table,
					Definitions: []*model.IndexDef{def},
				})
				continue
			}
			if err := checkIndexFacets(index, def, table); err != nil {
				return err
			}
			index.Definitions = append(index.Definitions, def)
		}
	}
	return nil
}

func convertIndexDef(ti *tomlIndex, entityName string, table *model.Table) (*model.IndexDef, error) {
	if ti.Name == "" {
		return nil, fmt.Errorf("toml: entity %q: index name is required", entityName)
	}
	if len(ti.Properties) == 0 {
		return nil, fmt.Errorf("toml: index %q: at least one property is required", ti.Name)
	}
	for _, p := range ti.Properties {
		if _, ok := table.ColumnNameFor(p); !ok {
			return nil, fmt.Errorf("toml: index %q references unknown property %q in table %q",
				ti.Name, p, table.ID)
		}
	}

	// Per-column facet lists are positional against the key properties.
	keys := len(ti.Properties)
	for facet, got := range map[string]int{
		"collations":       len(ti.Collations),
		"operator_classes": len(ti.OperatorClasses),
		"sort_orders":      len(ti.SortOrders),
		"null_orders":      len(ti.NullOrders),
	} {
		if got != 0 && got != keys {
			return nil, fmt.Errorf("toml: index %q: %s has %d entries for %d properties",
				ti.Name, facet, got, keys)
		}
	}

	sortOrders, err := parseSortOrders(ti.SortOrders)
	if err != nil {
		return nil, fmt.Errorf("toml: index %q: %w", ti.Name, err)
	}
	nullOrders, err := parseNullOrders(ti.NullOrders)
	if err != nil {
		return nil, fmt.Errorf("toml: index %q: %w", ti.Name, err)
	}

	return &model.IndexDef{
		Name:              ti.Name,
		Properties:        ti.Properties,
		Collations:        ti.Collations,
		Method:            ti.Method,
		OperatorClasses:   ti.OperatorClasses,
		SortOrders:        sortOrders,
		NullOrders:        nullOrders,
		TsVectorConfig:    ti.TsVectorConfig,
		IncludeProperties: ti.Include,
		Concurrently:      ti.Concurrently,
	}, nil
}

func checkIndexFacets(index *model.Index, def *model.IndexDef, table *model.Table) error {
	if !reflect.DeepEqual(index.Definitions[0], def) {
		return fmt.Errorf("toml: index %q is declared twice on table %q with different definitions",
			def.Name, table.ID)
	}
	return nil
}

func parseSortOrders(in []string) ([]model.SortOrder, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]model.SortOrder, 0, len(in))
	for _, s := range in {
		switch model.SortOrder(s) {
		case model.SortAsc, model.SortDesc:
			out = append(out, model.SortOrder(s))
		default:
			return nil, fmt.Errorf("unknown sort order %q", s)
		}
	}
	return out, nil
}

func parseNullOrders(in []string) ([]model.NullOrder, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]model.NullOrder, 0, len(in))
	for _, s := range in {
		switch model.NullOrder(s) {
		case model.NullsFirst, model.NullsLast:
			out = append(out, model.NullOrder(s))
		default:
			return nil, fmt.Errorf("unknown null order %q", s)
		}
	}
	return out, nil
}
