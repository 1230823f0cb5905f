package storage

import "testing"

func TestNowMillis(t *testing.T) {
	// Year 2024 in milliseconds, as a sanity floor.
	if ts := NowMillis(); ts < 1704067200000 {
		t.Errorf("NowMillis() = %d, expected a timestamp after 2024", ts)
	}
}
