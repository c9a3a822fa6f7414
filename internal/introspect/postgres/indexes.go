package postgres

import (
	"fmt"

	"pganno/internal/dialect/postgres"
	"pganno/internal/extract"
	"pganno/internal/model"
)

func introspectIndexes(ic *introspectCtx, tableOID uint32, tr *extract.TableReport) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT ci.oid, ci.relname, am.amname, i.indnkeyatts, i.indnatts
		FROM pg_index i
		JOIN pg_class ci ON ci.oid = i.indexrelid
		JOIN pg_am am ON am.oid = ci.relam
		WHERE i.indrelid = $1
		ORDER BY ci.relname
	`, tableOID)
	if err != nil {
		return fmt.Errorf("introspect: indexes of %s: %w", tr.Table, err)
	}
	defer rows.Close()

	type index struct {
		oid              uint32
		report           extract.ObjectReport
		keyAtts, allAtts int
	}
	var indexes []*index

	for rows.Next() {
		var (
			idx    index
			method string
		)
		if err := rows.Scan(&idx.oid, &idx.report.Name, &method, &idx.keyAtts, &idx.allAtts); err != nil {
			return fmt.Errorf("introspect: indexes of %s: %w", tr.Table, err)
		}
		// btree is the default access method and is never materialized as
		// an annotation at design time either.
		if method != "btree" {
			idx.report.Annotations = append(idx.report.Annotations, model.Annotation{
				Name:  postgres.NameIndexMethod,
				Value: method,
			})
		}
		indexes = append(indexes, &idx)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("introspect: indexes of %s: %w", tr.Table, err)
	}

	for _, idx := range indexes {
		if idx.allAtts > idx.keyAtts {
			include, err := indexIncludeColumns(ic, idx.oid, idx.keyAtts)
			if err != nil {
				return fmt.Errorf("introspect: indexes of %s: %w", tr.Table, err)
			}
			idx.report.Annotations = append(idx.report.Annotations, model.Annotation{
				Name:  postgres.NameIndexInclude,
				Value: include,
			})
		}
		tr.Indexes = append(tr.Indexes, idx.report)
	}
	return nil
}

// indexIncludeColumns returns the names of the non-key (covering) columns of
// an index, which occupy the attribute positions after the key columns.
func indexIncludeColumns(ic *introspectCtx, indexOID uint32, keyAtts int) ([]string, error) {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT attname FROM pg_attribute
		WHERE attrelid = $1 AND attnum > $2
		ORDER BY attnum
	`, indexOID, keyAtts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
