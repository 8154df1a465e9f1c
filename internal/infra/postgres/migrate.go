package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

// ErrMigrationFailed is returned when the schema could not be brought up to date
var ErrMigrationFailed = errors.New("failed to apply migrations")

// goose keeps its dialect, base FS and logger in package state
var gooseMu sync.Mutex

// Migrate applies every pending goose migration found at the root of fsys
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, log *logger.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close migration connection", "error", err)
		}
	}()

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: log.WithField("component", "migrate")})

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	log.Info("database schema up to date", "version", version)

	return nil
}

// gooseLogger routes goose's printf logging through the structured logger
type gooseLogger struct {
	log *logger.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
