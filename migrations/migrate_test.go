package migrations_test

import (
	"context"
	"testing"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/testutil"
	"github.com/cimillas/ultimate-ticket/services/eticket/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestApply_CreatesSchemaOnce(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS tickets, events, schema_migrations`); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	for _, table := range []string{"events", "tickets"} {
		var exists bool
		if err := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
			t.Fatalf("check %s: %v", table, err)
		}
		if !exists {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	count := countMigrations(t, ctx, pool)
	if count != 2 {
		t.Fatalf("expected 2 recorded migrations, got %d", count)
	}

	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
	if again := countMigrations(t, ctx, pool); again != count {
		t.Fatalf("expected migration count unchanged, got %d vs %d", again, count)
	}
}

func countMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	return n
}
