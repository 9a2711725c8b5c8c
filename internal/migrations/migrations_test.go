package migrations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

type recordingLogger struct{ warnings []string }

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func TestApplyExecutesAllMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	for range tables {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("ALTER TABLE outfits ADD FULLTEXT").WillReturnResult(sqlmock.NewResult(0, 0))

	log := &recordingLogger{}
	if err := Apply(context.Background(), db, log); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if len(log.warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", log.warnings)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyIndexFailureIsWarning(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	for range tables {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("ALTER TABLE").WillReturnError(errors.New("Duplicate key name 'ft_outfits_text'"))

	log := &recordingLogger{}
	if err := Apply(context.Background(), db, log); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if len(log.warnings) != 1 {
		t.Fatalf("expected one warning, got %v", log.warnings)
	}
}

func TestApplyTableFailureIsFatal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS outfits").WillReturnError(errors.New("access denied"))

	if err := Apply(context.Background(), db, nil); err == nil {
		t.Fatal("expected error")
	}
}
