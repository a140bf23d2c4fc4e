// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool from a Config populated by env tags
// (PG_CONN_URL and friends) and retries while the database starts up.
// Migrate runs goose migrations from any fs.FS, typically an embed.FS shipped
// with the package that owns the schema. Healthcheck returns a probe for
// readiness endpoints. IsNotFoundError and IsDuplicateKeyError classify pgx
// errors for repository code.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, pgstore.MigrationsDir, log); err != nil {
//	    return err
//	}
package pg
