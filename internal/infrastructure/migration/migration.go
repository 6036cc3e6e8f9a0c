package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	for _, m := range Migrations() {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations lists the schema steps in order. Every step is idempotent.
func Migrations() []Migration {
	var out []Migration
	for _, t := range createTables {
		out = append(out, Migration{Name: "create_" + t.name, Up: exec(t.ddl)})
	}
	for _, c := range addedColumns {
		out = append(out, Migration{
			Name: fmt.Sprintf("add_%s_to_%s", c.column, c.table),
			Up:   addColumn(c.table, c.column, c.typ),
		})
	}
	out = append(out, Migration{Name: "seed_personal_info", Up: exec(seedPersonalInfo)})
	return out
}

type tableDDL struct {
	name string
	ddl  string
}

const entityColumns = `
		id BIGSERIAL PRIMARY KEY,
		sort_order INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()`

var createTables = []tableDDL{
	{"personal_info", `CREATE TABLE IF NOT EXISTS personal_info (
		id BIGSERIAL PRIMARY KEY,
		name TEXT,
		email TEXT,
		phone TEXT,
		location TEXT,
		linkedin_url TEXT,
		photo_url TEXT,
		objective TEXT,
		updated_at TIMESTAMPTZ
	)`},
	{"work_experience", `CREATE TABLE IF NOT EXISTS work_experience (` + entityColumns + `,
		title TEXT,
		company TEXT,
		location TEXT,
		start_date TEXT,
		end_date TEXT,
		responsibilities TEXT[],
		projects TEXT
	)`},
	{"education", `CREATE TABLE IF NOT EXISTS education (` + entityColumns + `,
		degree TEXT,
		field TEXT,
		school TEXT,
		location TEXT,
		start_date TEXT,
		end_date TEXT
	)`},
	{"skills", `CREATE TABLE IF NOT EXISTS skills (` + entityColumns + `,
		name TEXT,
		category TEXT
	)`},
	{"certificates", `CREATE TABLE IF NOT EXISTS certificates (` + entityColumns + `,
		name TEXT,
		issuer TEXT,
		date TEXT
	)`},
	{"languages", `CREATE TABLE IF NOT EXISTS languages (` + entityColumns + `,
		name TEXT,
		proficiency TEXT
	)`},
	{"strengths", `CREATE TABLE IF NOT EXISTS strengths (` + entityColumns + `,
		name TEXT
	)`},
}

// addedColumns were introduced after the first schema and may be missing
// from databases created by older deployments.
var addedColumns = []struct {
	table, column, typ string
}{
	{"personal_info", "title", "TEXT"},
	{"personal_info", "website_url", "TEXT"},
	{"personal_info", "summary", "TEXT"},
	{"personal_info", "leadership_points", "TEXT DEFAULT '[]'"},
	{"personal_info", "product_portfolio", "TEXT DEFAULT '[]'"},
	{"personal_info", "expertise_areas", "TEXT DEFAULT '[]'"},
}

const seedPersonalInfo = `
	INSERT INTO personal_info (name)
	SELECT '' WHERE NOT EXISTS (SELECT 1 FROM personal_info)`

func exec(query string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, query)
		return err
	}
}

// addColumn adds the column if it doesn't exist
func addColumn(table, column, typ string) func(context.Context, *pgxpool.Pool) error {
	query := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s`, table, column, typ)
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		if _, err := pool.Exec(ctx, query); err != nil {
			// Log the error but don't fail - the column may already exist
			slog.Warn("Error adding column (may already exist)", "table", table, "column", column, "error", err)
			return nil
		}
		slog.Info("Successfully added column", "table", table, "column", column)
		return nil
	}
}
