package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// SQLService runs ad-hoc statements against the application database.
type SQLService struct {
	db *sql.DB
}

func NewSQLService(db *sql.DB) *SQLService {
	return &SQLService{db: db}
}

type ExecuteSQLRequest struct {
	SQL string `json:"sql" binding:"required"`
}

// StatementResult is the outcome of one statement of an Execute call.
type StatementResult struct {
	Statement    string                   `json:"statement"`
	Columns      []string                 `json:"columns,omitempty"`
	Rows         []map[string]interface{} `json:"rows,omitempty"`
	RowCount     int                      `json:"row_count"`
	RowsAffected int64                    `json:"rows_affected,omitempty"`
}

// SplitStatements splits script on ';' and drops blank statements.
func SplitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isSelect(stmt string) bool {
	return strings.Contains(strings.ToLower(stmt), "select")
}

// Execute runs every statement of script in one transaction. Statements
// mentioning select return rows, the rest return the affected row count.
func (s *SQLService) Execute(ctx context.Context, script string) ([]StatementResult, error) {
	statements := SplitStatements(script)
	if len(statements) == 0 {
		return nil, fmt.Errorf("%w: no statements to execute", ErrValidation)
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	results := make([]StatementResult, 0, len(statements))
	for i, stmt := range statements {
		var (
			res *StatementResult
			err error
		)
		if isSelect(stmt) {
			res, err = executeSelect(ctx, tx, stmt)
		} else {
			res, err = executeNonSelect(ctx, tx, stmt)
		}
		if err != nil {
			return nil, fmt.Errorf("statement %d failed: %w", i+1, err)
		}
		results = append(results, *res)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	log.Info().
		Int("statements", len(statements)).
		Dur("elapsed", time.Since(start)).
		Msg("SQL executed")
	return results, nil
}

func executeSelect(ctx context.Context, tx *sql.Tx, query string) (*StatementResult, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		rowMap := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case nil:
				rowMap[col] = nil
			case []byte:
				rowMap[col] = string(v)
			case time.Time:
				rowMap[col] = v.Format(time.RFC3339)
			default:
				rowMap[col] = v
			}
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &StatementResult{
		Statement: query,
		Columns:   columns,
		Rows:      resultRows,
		RowCount:  len(resultRows),
	}, nil
}

func executeNonSelect(ctx context.Context, tx *sql.Tx, stmt string) (*StatementResult, error) {
	result, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &StatementResult{Statement: stmt, RowsAffected: affected}, nil
}
