// Package migrate applies the embedded goose migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/and161185/zest/migrations"
)

// zapLogger routes goose output through zap.
type zapLogger struct{ s *zap.SugaredLogger }

func (l zapLogger) Printf(format string, v ...any) {
	l.s.Infof(strings.TrimRight(format, "\n"), v...)
}

func (l zapLogger) Fatalf(format string, v ...any) {
	l.s.Fatalf(strings.TrimRight(format, "\n"), v...)
}

func withDB(dsn string, log *zap.Logger, fn func(*sql.DB) error) error {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(zapLogger{s: log.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}

// Up brings the schema to the latest embedded version.
func Up(ctx context.Context, dsn string, log *zap.Logger) error {
	return withDB(dsn, log, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, ".")
	})
}

// Version reports the applied schema version.
func Version(ctx context.Context, dsn string, log *zap.Logger) (int64, error) {
	var v int64
	err := withDB(dsn, log, func(db *sql.DB) error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, db)
		return err
	})
	return v, err
}
