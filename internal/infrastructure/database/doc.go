// Package database opens the SQLite file behind the deck event journal and
// applies its schema migrations.
//
// The journal is optional and write-mostly: one writer connection, WAL mode
// so the status API can read while telemetry appends, and a busy timeout so
// concurrent readers never surface "database is locked".
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql, and are applied oldest first, each in its own
// transaction.
package database
