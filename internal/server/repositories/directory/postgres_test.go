package directory

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

type passthroughConverter struct{}

func (passthroughConverter) ConvertValue(v any) (driver.Value, error) {
	return driver.Value(v), nil
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.ValueConverterOption(passthroughConverter{}),
	)
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestSelectByIDs_SingleBatchedQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ids := []string{"u1", "u2", "u3"}
	rows := sqlmock.NewRows([]string{"id", "email"}).
		AddRow("u1", "agent1@example.ch").
		AddRow("u2", "agent2@example.ch")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email FROM user_directory WHERE id = any($1);`)).
		WithArgs(ids).
		WillReturnRows(rows)

	got, err := repo.SelectByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// u3 is simply absent, not an error.
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSelectByIDs_EmptyInput(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	got, err := repo.SelectByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result for empty input, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSelectAll_OrderedByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email"}).
		AddRow("u2", "a@example.ch").
		AddRow("u1", "b@example.ch")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email FROM user_directory ORDER BY email;`)).
		WillReturnRows(rows)

	got, err := repo.SelectAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Email != "a@example.ch" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
