// Package database provides the SQLite connection used for endpoint event
// history.
//
// Open configures WAL mode, a busy timeout and a single-writer pool, then
// pings the file. Migrate applies the embedded schema migrations, each in
// its own transaction, recording them in schema_migrations.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql, and are registered by the migrations package.
// The database file is created with 0600 permissions.
package database
