package storage

import "time"

// NowMillis returns the current time in milliseconds since epoch, used for
// migration ledger rows and snapshot creation times (grounded on the
// teacher's cas.NowMs helper).
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
