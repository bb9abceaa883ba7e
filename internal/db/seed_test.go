package db

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

func TestSeed_SkipsWhenCatalogExists(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	if err := Seed(context.Background(), dbMock, zap.NewNop()); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSeed_InsertsEverything(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for range seedProducts {
		mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for range seedGyms {
		mock.ExpectExec("INSERT INTO gyms").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for i := range seedCoaches {
		mock.ExpectQuery("INSERT INTO coaches").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(i + 10)))
	}
	for _, p := range seedPrograms {
		mock.ExpectExec("INSERT INTO programs").
			WithArgs(p.Title, p.Description, p.Level, p.DurationWeeks, int64(p.coach+10)).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := Seed(context.Background(), dbMock, zap.NewNop()); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSeed_RollsBackOnError(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = Seed(context.Background(), dbMock, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "seed product") {
		t.Fatalf("expected seed product error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
