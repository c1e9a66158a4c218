package repositories

import (
	"context"
	"fmt"
	"strings"

	"admin_codegen/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaRepository reads table and column metadata from the Postgres catalog of
// the current schema.
type SchemaRepository struct {
	pool             *pgxpool.Pool
	reservedPrefixes []string
}

func NewSchemaRepository(pool *pgxpool.Pool, reservedPrefixes []string) *SchemaRepository {
	return &SchemaRepository{pool: pool, reservedPrefixes: reservedPrefixes}
}

const tableSelect = `
	SELECT c.relname,
		COALESCE(obj_description(c.oid, 'pg_class'), ''),
		GREATEST(s.last_vacuum, s.last_autovacuum, s.last_analyze, s.last_autoanalyze)
	FROM pg_class c
	JOIN pg_namespace n ON n.oid = c.relnamespace
	LEFT JOIN pg_stat_user_tables s ON s.relid = c.oid
`

// tableFilter collects the WHERE conditions and positional args of a catalog
// table query.
type tableFilter struct {
	conditions []string
	args       []interface{}
}

func (f *tableFilter) add(cond string, arg interface{}) {
	f.args = append(f.args, arg)
	f.conditions = append(f.conditions, fmt.Sprintf(cond, len(f.args)))
}

func (f *tableFilter) where() string {
	return "WHERE " + strings.Join(f.conditions, " AND ")
}

func (r *SchemaRepository) baseFilter() *tableFilter {
	f := &tableFilter{conditions: []string{
		"n.nspname = current_schema()",
		"c.relkind IN ('r', 'p')",
		"c.relname NOT IN (SELECT table_name FROM gen_table)",
	}}
	if len(r.reservedPrefixes) > 0 {
		f.add("NOT (c.relname LIKE ANY($%d::text[]))", prefixPatterns(r.reservedPrefixes))
	}
	return f
}

// ListTables returns the importable tables: tables of the current schema that are
// not managed yet and do not carry a reserved prefix. Newest tables come first.
func (r *SchemaRepository) ListTables(ctx context.Context, q models.DBTableQuery) ([]models.DBTable, int64, error) {
	q.Normalize()

	f := r.baseFilter()
	if q.TableName != "" {
		f.add("c.relname ILIKE '%%' || $%d || '%%'", q.TableName)
	}
	if q.TableComment != "" {
		f.add("COALESCE(obj_description(c.oid, 'pg_class'), '') ILIKE '%%' || $%d || '%%'", q.TableComment)
	}

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
	` + f.where()
	if err := r.pool.QueryRow(ctx, countQuery, f.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tables: %w", err)
	}

	args := append(f.args, q.PageSize, q.Offset())
	query := tableSelect + f.where() + fmt.Sprintf(`
		ORDER BY c.oid DESC, 3 DESC NULLS LAST
		LIMIT $%d OFFSET $%d
	`, len(f.args)+1, len(f.args)+2)

	tables, err := r.queryTables(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return tables, total, nil
}

// DescribeTablesByNames returns the named tables that exist in the current schema,
// are not managed yet and do not carry a reserved prefix.
func (r *SchemaRepository) DescribeTablesByNames(ctx context.Context, names []string) ([]models.DBTable, error) {
	if len(names) == 0 {
		return nil, nil
	}

	f := r.baseFilter()
	f.add("c.relname = ANY($%d::text[])", names)
	query := tableSelect + f.where() + " ORDER BY c.oid DESC"

	return r.queryTables(ctx, query, f.args...)
}

func (r *SchemaRepository) queryTables(ctx context.Context, query string, args ...interface{}) ([]models.DBTable, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []models.DBTable
	for rows.Next() {
		var t models.DBTable
		if err := rows.Scan(&t.TableName, &t.TableComment, &t.UpdateTime); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	return tables, nil
}

// ListColumns returns the columns of a table in ordinal order. Column types are
// the catalog type name with the declared length appended for character types,
// e.g. varchar(64), bpchar(1), int4.
func (r *SchemaRepository) ListColumns(ctx context.Context, tableName string) ([]models.RawColumn, error) {
	if strings.TrimSpace(tableName) == "" {
		return nil, nil
	}

	query := `
		SELECT a.attname,
			a.attnotnull AND pk.indexrelid IS NULL,
			pk.indexrelid IS NOT NULL,
			row_number() OVER (ORDER BY a.attnum),
			COALESCE(col_description(a.attrelid, a.attnum), ''),
			a.attidentity IN ('a', 'd') OR COALESCE(pg_get_expr(ad.adbin, ad.adrelid), '') LIKE 'nextval(%',
			t.typname || CASE
				WHEN t.typname IN ('varchar', 'bpchar') AND a.atttypmod > 4 THEN '(' || (a.atttypmod - 4)::text || ')'
				ELSE ''
			END
		FROM pg_attribute a
		JOIN pg_type t ON t.oid = a.atttypid
		LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
		LEFT JOIN pg_index pk ON pk.indrelid = a.attrelid AND pk.indisprimary AND a.attnum = ANY(pk.indkey)
		WHERE a.attrelid = to_regclass(quote_ident(current_schema()) || '.' || quote_ident($1))
			AND a.attnum > 0
			AND NOT a.attisdropped
		ORDER BY a.attnum
	`

	rows, err := r.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []models.RawColumn
	for rows.Next() {
		var col models.RawColumn
		var sort int64
		if err := rows.Scan(
			&col.ColumnName,
			&col.IsRequired,
			&col.IsPk,
			&sort,
			&col.ColumnComment,
			&col.IsIncrement,
			&col.ColumnType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Sort = int(sort)
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	return columns, nil
}

// prefixPatterns turns table prefixes into LIKE patterns, escaping the LIKE
// wildcards the prefixes themselves contain.
func prefixPatterns(prefixes []string) []string {
	escaper := strings.NewReplacer(`\`, `\\`, `_`, `\_`, `%`, `\%`)
	patterns := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		patterns = append(patterns, escaper.Replace(p)+"%")
	}
	return patterns
}
