// Package database provides SQLite connectivity for the write-log
// archive.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Connection pooling and lifecycle management
//   - File and directory permissions
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Performance Characteristics:
//   - WAL mode allows concurrent reads during writes
//   - Busy timeout prevents lock contention errors
//   - Single writer connection, matching SQLite's locking model
//
// Usage:
//
//	db, err := database.Open(cfg.History)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
