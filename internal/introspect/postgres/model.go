package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"pganno/internal/dialect/postgres"
	"pganno/internal/extract"
	"pganno/internal/model"
)

// introspectModel collects the model-level annotation families: installed
// extensions, user-defined enum and range types, and user-defined collations.
// Each query orders by name so snapshots are stable.
func introspectModel(ic *introspectCtx, report *extract.Report) error {
	if err := introspectExtensions(ic, report); err != nil {
		return err
	}
	if err := introspectEnums(ic, report); err != nil {
		return err
	}
	if err := introspectRanges(ic, report); err != nil {
		return err
	}
	return introspectCollations(ic, report)
}

func introspectExtensions(ic *introspectCtx, report *extract.Report) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT extname, extversion
		FROM pg_extension
		WHERE extname <> 'plpgsql'
		ORDER BY extname
	`)
	if err != nil {
		return fmt.Errorf("introspect: extensions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, version string
		if err := rows.Scan(&name, &version); err != nil {
			return fmt.Errorf("introspect: extensions: %w", err)
		}
		report.Model = append(report.Model, model.Annotation{
			Name:  postgres.ExtensionPrefix + name,
			Value: version,
		})
	}
	return rows.Err()
}

func introspectEnums(ic *introspectCtx, report *extract.Report) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT t.typname, string_agg(e.enumlabel, ',' ORDER BY e.enumsortorder)
		FROM pg_type t
		JOIN pg_enum e ON e.enumtypid = t.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname NOT IN ('pg_catalog', 'information_schema')
		GROUP BY t.typname
		ORDER BY t.typname
	`)
	if err != nil {
		return fmt.Errorf("introspect: enums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, labels string
		if err := rows.Scan(&name, &labels); err != nil {
			return fmt.Errorf("introspect: enums: %w", err)
		}
		report.Model = append(report.Model, model.Annotation{
			Name:  postgres.EnumPrefix + name,
			Value: strings.Split(labels, ","),
		})
	}
	return rows.Err()
}

func introspectRanges(ic *introspectCtx, report *extract.Report) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT t.typname, st.typname
		FROM pg_range r
		JOIN pg_type t ON t.oid = r.rngtypid
		JOIN pg_type st ON st.oid = r.rngsubtype
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname NOT IN ('pg_catalog', 'information_schema')
		ORDER BY t.typname
	`)
	if err != nil {
		return fmt.Errorf("introspect: ranges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, subtype string
		if err := rows.Scan(&name, &subtype); err != nil {
			return fmt.Errorf("introspect: ranges: %w", err)
		}
		report.Model = append(report.Model, model.Annotation{
			Name:  postgres.RangePrefix + name,
			Value: subtype,
		})
	}
	return rows.Err()
}

func introspectCollations(ic *introspectCtx, report *extract.Report) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT collname, collcollate
		FROM pg_collation c
		JOIN pg_namespace n ON n.oid = c.collnamespace
		WHERE n.nspname NOT IN ('pg_catalog', 'information_schema')
		ORDER BY collname
	`)
	if err != nil {
		return fmt.Errorf("introspect: collations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var locale sql.NullString
		if err := rows.Scan(&name, &locale); err != nil {
			return fmt.Errorf("introspect: collations: %w", err)
		}
		report.Model = append(report.Model, model.Annotation{
			Name:  postgres.CollationDefinitionPrefix + name,
			Value: locale.String,
		})
	}
	return rows.Err()
}
