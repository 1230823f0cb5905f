package sqlengine

import (
	"sqlitegraph/internal/storage"
)

// BeginRestore implements dump.Transactor: the replay loop's InsertNode/
// InsertEdge/InsertLabel/InsertProperty calls run against the returned
// transaction via e.db(), so a failure partway through a dump stream leaves
// the database exactly as it was (spec §6 "Restore replays lines in order
// under a single transaction"), matching the same sql.Tx discipline as
// applyPendingMigrations.
func (e *Engine) BeginRestore() (commit func() error, rollback func(), err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.conn.Begin()
	if err != nil {
		return nil, nil, storage.Wrap(storage.KindMigrationError, err, "beginning restore transaction")
	}
	e.restoreTx = tx

	commit = func() error {
		e.mu.Lock()
		e.restoreTx = nil
		e.mu.Unlock()
		e.invalidatePatternCache()
		e.cacheMu.Lock()
		e.outCache = make(map[int64][]int64)
		e.inCache = make(map[int64][]int64)
		e.cacheMu.Unlock()
		if err := tx.Commit(); err != nil {
			return storage.Wrap(storage.KindMigrationError, err, "committing restore transaction")
		}
		return nil
	}
	rollback = func() {
		e.mu.Lock()
		e.restoreTx = nil
		e.mu.Unlock()
		tx.Rollback()
	}
	return commit, rollback, nil
}
