// Package postgres contains the introspect implementation for PostgreSQL.
// It reads pg_catalog and reports the physical counterparts of the
// design-time annotations: storage parameters and persistence from pg_class,
// identity and compression settings from pg_attribute, index access methods
// and include columns from pg_index, and installed extensions and
// user-defined types from the shared catalogs.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pganno/internal/dialect"
	"pganno/internal/extract"
	"pganno/internal/introspect"
)

func init() {
	introspect.Register(dialect.PostgreSQL, New)
}

type introspecter struct{}

type introspectCtx struct {
	db  *sql.DB
	ctx context.Context
}

func New() introspect.Introspecter {
	return &introspecter{}
}

// Open connects to the database at the given DSN using the pgx stdlib driver
// and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("introspect: open connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("introspect: ping database: %w", err)
	}
	return db, nil
}

func (i *introspecter) Introspect(ctx context.Context, db *sql.DB) (*extract.Report, error) {
	ic := &introspectCtx{db: db, ctx: ctx}
	report := &extract.Report{}

	if err := introspectModel(ic, report); err != nil {
		return nil, err
	}
	if err := introspectTables(ic, report); err != nil {
		return nil, err
	}
	return report, nil
}
