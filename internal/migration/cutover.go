package migration

import (
	"sync/atomic"

	"sqlitegraph/internal/storage"
)

// Cutover is the one-way primary→shadow active-read state transition
// (spec §4.J). IsCutover is false until Cutover succeeds exactly once;
// a second call fails with MigrationError (spec §8 invariant 7, "is_cutover()
// transitions from false to true exactly once").
type Cutover struct {
	done atomic.Bool
}

// IsCutover reports whether the active-read pointer has switched to shadow.
func (c *Cutover) IsCutover() bool {
	return c.done.Load()
}

// Cutover performs the one-way transition. Writes continue to dual-write
// after cutover until the migration is torn down by the caller; this type
// only tracks the read-routing state.
func (c *Cutover) Cutover() error {
	if !c.done.CompareAndSwap(false, true) {
		return storage.New(storage.KindMigrationError, "cutover already performed")
	}
	return nil
}
