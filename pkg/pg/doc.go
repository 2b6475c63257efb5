// Package pg bootstraps PostgreSQL access with the pgx/v5 driver.
//
//   - Config is populated from PG_* environment variables.
//   - Connect opens a *pgxpool.Pool, retrying with a growing delay until the
//     database answers a ping.
//   - Migrate applies goose migrations from an fs.FS, usually an embed.FS
//     owned by the package that defines the schema.
//   - Healthcheck returns a probe for the readiness endpoint.
//   - IsNotFoundError, IsDuplicateKeyError and IsForeignKeyViolationError
//     classify driver errors without leaking pgx types to callers.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, pgstore.MigrationsDir, log); err != nil {
//	    return err
//	}
package pg
