package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rasgroup/bagcapturer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listTablesPattern = `SELECT table_name FROM information_schema\.tables`

func TestDBAdminService_ListTables(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"table_name"}).
		AddRow("accounts").
		AddRow("recordings")
	mock.ExpectQuery(listTablesPattern).WillReturnRows(rows)

	s := NewDBAdminService(db)
	tables, err := s.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", "recordings"}, tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBAdminService_BrowseTable(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(listTablesPattern).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("recordings"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "recordings" LIMIT 200`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bag_name"}).
			AddRow("rec1", "run1.bag").
			AddRow("rec2", nil))

	s := NewDBAdminService(db)
	result, err := s.BrowseTable(context.Background(), "recordings")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "bag_name"}, result.Columns)
	assert.Equal(t, [][]string{
		{"rec1", "run1.bag"},
		{"rec2", "NULL"},
	}, result.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBAdminService_BrowseTable_QuotedName(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(listTablesPattern).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow(`odd"name`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "odd""name" LIMIT 200`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1"))

	s := NewDBAdminService(db)
	result, err := s.BrowseTable(context.Background(), `odd"name`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1"}}, result.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBAdminService_BrowseTable_Unknown(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(listTablesPattern).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("recordings"))

	s := NewDBAdminService(db)
	_, err := s.BrowseTable(context.Background(), "accounts; DROP TABLE accounts")
	assert.ErrorIs(t, err, common.ErrorUnknownTable)
}

func TestDBAdminService_RunQuery(t *testing.T) {
	t.Run("rejects non-select statements", func(t *testing.T) {
		db, _ := newSQLMockDB(t)
		defer db.Close()
		s := NewDBAdminService(db)

		for _, q := range []string{
			"",
			"   ",
			"UPDATE accounts SET user_name = 'x'",
			"DELETE FROM recordings",
			"SELECT 1; DROP TABLE accounts",
		} {
			_, err := s.RunQuery(context.Background(), q)
			assert.ErrorIs(t, err, common.ErrorInvalidQuery, "query: %q", q)
		}
	})

	t.Run("runs select", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM recordings")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

		s := NewDBAdminService(db)
		result, err := s.RunQuery(context.Background(), "  SELECT count(*) FROM recordings  ")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"7"}}, result.Rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs with-query", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		defer db.Close()

		query := "WITH r AS (SELECT id FROM recordings) SELECT id FROM r"
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rec1"))

		s := NewDBAdminService(db)
		result, err := s.RunQuery(context.Background(), query)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"rec1"}}, result.Rows)
	})
}
