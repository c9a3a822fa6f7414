package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"pganno/internal/dialect/postgres"
	"pganno/internal/extract"
	"pganno/internal/model"
)

func introspectTables(ic *introspectCtx, report *extract.Report) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT c.oid, n.nspname, c.relname,
		       c.relpersistence = 'u' AS unlogged,
		       array_to_string(c.reloptions, ',')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p')
		  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
		ORDER BY n.nspname, c.relname
	`)
	if err != nil {
		return fmt.Errorf("introspect: tables: %w", err)
	}
	defer rows.Close()

	type table struct {
		oid    uint32
		report extract.TableReport
	}
	var tables []*table

	for rows.Next() {
		var (
			t        table
			unlogged bool
			options  sql.NullString
		)
		if err := rows.Scan(&t.oid, &t.report.Table.Schema, &t.report.Table.Name, &unlogged, &options); err != nil {
			return fmt.Errorf("introspect: tables: %w", err)
		}
		if unlogged {
			t.report.Annotations = append(t.report.Annotations, model.Annotation{Name: postgres.NameUnlogged, Value: true})
		}
		t.report.Annotations = append(t.report.Annotations, storageParameters(options.String)...)
		tables = append(tables, &t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("introspect: tables: %w", err)
	}

	for _, t := range tables {
		if err := introspectColumns(ic, t.oid, &t.report); err != nil {
			return err
		}
		if err := introspectIndexes(ic, t.oid, &t.report); err != nil {
			return err
		}
		report.Tables = append(report.Tables, t.report)
	}
	return nil
}

// storageParameters converts a flattened reloptions list
// ("fillfactor=70,autovacuum_enabled=false") into storage-parameter:*
// annotations. reloptions preserves the order parameters were set in.
func storageParameters(options string) []model.Annotation {
	if options == "" {
		return nil
	}
	var anns []model.Annotation
	for _, opt := range strings.Split(options, ",") {
		name, value, ok := strings.Cut(opt, "=")
		if !ok {
			continue
		}
		anns = append(anns, model.Annotation{
			Name:  postgres.StorageParameterPrefix + name,
			Value: value,
		})
	}
	return anns
}
