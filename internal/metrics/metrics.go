package metrics

import "sync/atomic"

var pollAttempts int64
var callsListed int64
var detailsFetched int64
var vaultCommits int64

func IncPollAttempt()   { atomic.AddInt64(&pollAttempts, 1) }
func IncCallsListed()   { atomic.AddInt64(&callsListed, 1) }
func IncDetailFetched() { atomic.AddInt64(&detailsFetched, 1) }
func IncVaultCommit()   { atomic.AddInt64(&vaultCommits, 1) }

// Snapshot returns the counters accumulated over this invocation.
func Snapshot() map[string]int64 {
	return map[string]int64{
		"poll_attempts":   atomic.LoadInt64(&pollAttempts),
		"calls_listed":    atomic.LoadInt64(&callsListed),
		"details_fetched": atomic.LoadInt64(&detailsFetched),
		"vault_commits":   atomic.LoadInt64(&vaultCommits),
	}
}
