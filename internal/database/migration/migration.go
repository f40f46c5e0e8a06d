package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"certapi/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is checked to decide whether the schema is already in place.
const sentinelTable = "public.certificates"

var steps = []migrationStep{
	{
		Name: "create_table_certificates",
		SQL: `CREATE TABLE IF NOT EXISTS certificates (
  filename_base TEXT        PRIMARY KEY,
  email         TEXT        NOT NULL,
  email_sent    BOOLEAN     NOT NULL,
  message_id    TEXT        NULL,
  pdf_url       TEXT        NULL,
  image_url     TEXT        NULL,
  warnings      JSONB       NOT NULL DEFAULT '[]'::jsonb,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_certificates_email",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_certificates_email ON certificates (email);`,
	},
	{
		Name: "create_index_certificates_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_certificates_created_at ON certificates (created_at);`,
	},
}

// EnsureMigrated checks if the certificates table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logging.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	log.Info(ctx, "db_migration_check", "status", "starting")

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists)
	if err != nil {
		log.Error(ctx, "db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info(ctx, "db_migration_skip",
			"status", "success",
			"reason", "schema already exists",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info(ctx, "db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error(ctx, "db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info(ctx, "db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info(ctx, "db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
