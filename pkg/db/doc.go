// Package db opens and migrates the PostgreSQL pool behind the database
// service.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] and runs schema migrations with
// [github.com/pressly/goose/v3] from an embedded filesystem.
//
//	pool, err := db.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations, cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// [Healthcheck] and [Shutdown] plug the pool into the host's readiness checks
// and shutdown hooks. [WithTx] runs a function inside a transaction and rolls
// back on error or panic.
//
// Errors are wrapped with [errors.Join] around the package sentinels.
package db
