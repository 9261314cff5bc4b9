package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/claims-extractor/internal/common"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	form_type TEXT,
	submission_date TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fields (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id),
	name TEXT NOT NULL,
	value TEXT,
	confidence REAL NOT NULL,
	source TEXT
);
`

// Open connects to the store named by the DSN: postgres URLs go through a
// pgx pool wrapped for database/sql, anything else is treated as a SQLite
// path (":memory:" included). Returns the handle and the dialect it speaks.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		logger.Info("connecting to database", "dialect", DialectPostgres)
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("parse postgres dsn: %w", err)
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "claims-extractor"
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return nil, "", fmt.Errorf("connect postgres: %w", err)
		}
		return stdlib.OpenDBFromPool(pool), DialectPostgres, nil
	}

	logger.Info("opening database", "dialect", DialectSQLite, "path", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, "", fmt.Errorf("open sqlite: %w", err)
	}
	return db, DialectSQLite, nil
}

// InitSchema creates the documents and fields tables if needed. The DDL is
// portable across both dialects.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return common.WrapError(err, "init schema")
	}
	return nil
}

// HealthCheck pings the store to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return common.WrapError(err, "ping database")
	}
	return nil
}

// rebind converts ? placeholders to the $n style postgres expects. SQLite
// queries pass through unchanged.
func rebind(dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
