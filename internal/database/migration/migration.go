// Package migration applies the intake schema on startup when it is missing.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  client_id        TEXT        NOT NULL,
  document_type    TEXT        NOT NULL,
  filename         TEXT        NOT NULL,
  storage_path     TEXT        NOT NULL DEFAULT '',
  size             BIGINT      NOT NULL CHECK (size >= 0),
  content_type     TEXT        NOT NULL,
  status           TEXT        NOT NULL DEFAULT 'PENDING',
  rejection_reason TEXT        NOT NULL DEFAULT '',
  uploaded_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  reviewed_at      TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_documents_client",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_client ON documents (client_id, uploaded_at DESC);`,
	},
	{
		Name: "create_index_documents_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (status, uploaded_at);`,
	},
	{
		Name: "create_table_merchant_applications",
		SQL: `CREATE TABLE IF NOT EXISTS merchant_applications (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  client_id        TEXT        NOT NULL UNIQUE,
  status           TEXT        NOT NULL DEFAULT 'DRAFT',
  record           JSONB       NOT NULL DEFAULT '{}'::jsonb,
  rejection_reason TEXT        NOT NULL DEFAULT '',
  submitted_at     TIMESTAMPTZ,
  reviewed_at      TIMESTAMPTZ,
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_saved_at    TIMESTAMPTZ,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_applications_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_applications_status ON merchant_applications (status, submitted_at);`,
	},
	{
		Name: "create_table_audit_log",
		SQL: `CREATE TABLE IF NOT EXISTS audit_log (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  actor_id      TEXT        NOT NULL,
  action        TEXT        NOT NULL,
  resource_type TEXT        NOT NULL,
  resource_id   TEXT        NOT NULL,
  metadata      JSONB       NOT NULL DEFAULT '{}'::jsonb,
  ip_address    TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_resource",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_log (resource_type, resource_id, created_at DESC);`,
	},
	{
		Name: "create_index_audit_actor",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_log (actor_id, created_at DESC);`,
	},
	{
		// The trail is append-only. Updates and deletes are revoked from the
		// application role at the database level.
		Name: "revoke_audit_mutation",
		SQL:  `REVOKE UPDATE, DELETE ON audit_log FROM PUBLIC;`,
	},
}

// EnsureMigrated runs the schema steps when the sentinel table is missing.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	start := time.Now()

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error().Err(err).Msg("migration: sentinel table check failed")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().Dur("duration", time.Since(start)).Msg("migration: schema already exists, skipping")
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).Str("step", step.Name).Msg("migration: step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info().Str("step", step.Name).Dur("duration", time.Since(stepStart)).Msg("migration: step applied")
	}

	log.Info().Dur("duration", time.Since(start)).Msg("migration: schema created")
	return nil
}
