package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"pganno/internal/dialect/postgres"
	"pganno/internal/extract"
	"pganno/internal/model"
)

func introspectColumns(ic *introspectCtx, tableOID uint32, tr *extract.TableReport) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT a.attname,
		       a.attidentity::text,
		       a.attcompression::text,
		       col.collname,
		       pg_get_expr(ad.adbin, ad.adrelid)
		FROM pg_attribute a
		LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
		LEFT JOIN pg_collation col ON col.oid = a.attcollation AND col.collname <> 'default'
		WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum
	`, tableOID)
	if err != nil {
		return fmt.Errorf("introspect: columns of %s: %w", tr.Table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name                   string
			identity, compression  string
			collation, defaultExpr sql.NullString
		)
		if err := rows.Scan(&name, &identity, &compression, &collation, &defaultExpr); err != nil {
			return fmt.Errorf("introspect: columns of %s: %w", tr.Table, err)
		}

		col := extract.ObjectReport{Name: name}
		if strategy := generationStrategy(identity, defaultExpr.String); strategy != model.GenerationNone {
			col.Annotations = append(col.Annotations, model.Annotation{
				Name:  postgres.NameValueGenerationStrategy,
				Value: strategy,
			})
		}
		if collation.Valid {
			col.Annotations = append(col.Annotations, model.Annotation{
				Name:  postgres.NameDefaultColumnCollation,
				Value: collation.String,
			})
		}
		if method := compressionMethod(compression); method != "" {
			col.Annotations = append(col.Annotations, model.Annotation{
				Name:  postgres.NameCompressionMethod,
				Value: method,
			})
		}
		tr.Columns = append(tr.Columns, col)
	}
	return rows.Err()
}

// generationStrategy maps pg_attribute.attidentity to the identity
// strategies. Pre-identity serial columns surface as a nextval() default on
// an owned sequence.
func generationStrategy(identity, defaultExpr string) model.ValueGeneration {
	switch identity {
	case "a":
		return model.GenerationIdentityAlways
	case "d":
		return model.GenerationIdentityByDefault
	}
	if strings.HasPrefix(defaultExpr, "nextval(") {
		return model.GenerationSerial
	}
	return model.GenerationNone
}

// compressionMethod maps pg_attribute.attcompression single-character codes
// to method names. An empty code means the column uses the server default.
func compressionMethod(code string) string {
	switch code {
	case "p":
		return "pglz"
	case "l":
		return "lz4"
	}
	return ""
}
