package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/fatimahgelora/korpri/config"
	"github.com/fatimahgelora/korpri/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// CreateTables creates all tables in dependency order. Run once at startup;
// race-day invariants (NIK uniqueness, bib uniqueness, one bib per
// registration) live here as database constraints, not in call sites.
func CreateTables(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		return fmt.Errorf("enabling pgcrypto: %w", err)
	}

	tables := []interface{}{
		(*models.User)(nil),
		(*models.AdminUser)(nil),
		(*models.Registration)(nil),
		(*models.RaceBib)(nil),
		(*models.RaceResult)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	constraints := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'registrations_nik_unique') THEN ALTER TABLE registrations ADD CONSTRAINT registrations_nik_unique UNIQUE (nik); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'race_bibs_number_unique') THEN ALTER TABLE race_bibs ADD CONSTRAINT race_bibs_number_unique UNIQUE (bib_number); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'race_bibs_one_per_registration') THEN ALTER TABLE race_bibs ADD CONSTRAINT race_bibs_one_per_registration UNIQUE (registration_id); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'race_results_bib_unique') THEN ALTER TABLE race_results ADD CONSTRAINT race_results_bib_unique UNIQUE (bib_number); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'race_bibs_status_check') THEN ALTER TABLE race_bibs ADD CONSTRAINT race_bibs_status_check CHECK (status IN ('available', 'assigned', 'collected')); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'race_results_status_check') THEN ALTER TABLE race_results ADD CONSTRAINT race_results_status_check CHECK (status IN ('registered', 'started', 'finished', 'dnf', 'dsq')); END IF; END $$`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("constraint: %v", err)
		}
	}

	return nil
}
