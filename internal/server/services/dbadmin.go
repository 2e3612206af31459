package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rasgroup/bagcapturer/internal/common"
)

// browse/query limits for the DB pages
const (
	maxBrowseRows = 200
	maxQueryRows  = 500
)

// QueryResult holds the column names and stringified rows of a browse or
// query operation, ready for table rendering.
type QueryResult struct {
	Columns []string
	Rows    [][]string
}

// DBAdminService backs the DB browser and query pages: it lists tables,
// pages through rows, and runs read-only ad-hoc statements.
type DBAdminService struct {
	db *sql.DB
}

// NewDBAdminService constructs a DBAdminService.
func NewDBAdminService(db *sql.DB) *DBAdminService {
	return &DBAdminService{db: db}
}

// ListTables returns the names of all ordinary tables in the public schema.
func (s *DBAdminService) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tables, nil
}

// BrowseTable returns up to maxBrowseRows rows of the named table. The name
// is checked against the live table list, never interpolated from raw input.
func (s *DBAdminService) BrowseTable(ctx context.Context, table string) (*QueryResult, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	known := false
	for _, t := range tables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return nil, common.ErrorUnknownTable
	}

	// table name is validated against information_schema above; embedded
	// double quotes are doubled per SQL identifier quoting
	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	query := fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, quoted, maxBrowseRows)
	return s.runSelect(ctx, query)
}

// RunQuery executes an ad-hoc read-only statement. Only SELECT and WITH
// statements are accepted; anything else is rejected before reaching the
// database.
func (s *DBAdminService) RunQuery(ctx context.Context, query string) (*QueryResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, common.ErrorInvalidQuery
	}
	head := strings.ToUpper(trimmed)
	if !strings.HasPrefix(head, "SELECT") && !strings.HasPrefix(head, "WITH") {
		return nil, common.ErrorInvalidQuery
	}
	if strings.Contains(trimmed, ";") {
		return nil, common.ErrorInvalidQuery
	}

	return s.runSelect(ctx, trimmed)
}

func (s *DBAdminService) runSelect(ctx context.Context, query string) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := &QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = stringifyValue(v)
		}
		result.Rows = append(result.Rows, row)

		if len(result.Rows) >= maxQueryRows {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func stringifyValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
