package diag

import (
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
)

const recentErrorsPerRemote = 20

// RecentErrors keeps a short-lived ring of the most recent protocol
// errors observed per remote address, surfaced by the admin CLI's
// ERRORS meta-command (bin/cli). It is purely a diagnostics aid —
// server-internal bookkeeping with its own TTL, not an expiration
// mechanism applied to keyspace data, which spec.md's Non-goals
// explicitly exclude. Grounded on SPEC_FULL.md §B's wiring table entry
// for github.com/go-pkgz/expirable-cache/v3.
type RecentErrors struct {
	c cache.Cache[string, []string]
}

// NewRecentErrors returns a RecentErrors whose entries expire after
// ttl of inactivity.
func NewRecentErrors(ttl time.Duration) *RecentErrors {
	return &RecentErrors{
		c: cache.NewCache[string, []string]().WithTTL(ttl).WithMaxKeys(1024),
	}
}

// Record appends reason to remote's ring, keeping only the newest
// recentErrorsPerRemote entries.
func (r *RecentErrors) Record(remote, reason string) {
	existing, _ := r.c.Get(remote)
	updated := append(existing, reason)
	if len(updated) > recentErrorsPerRemote {
		updated = updated[len(updated)-recentErrorsPerRemote:]
	}
	r.c.Set(remote, updated, 0)
}

// For returns the recorded errors for remote, oldest first.
func (r *RecentErrors) For(remote string) []string {
	errs, _ := r.c.Get(remote)
	return errs
}

// Remotes returns every remote address currently tracked.
func (r *RecentErrors) Remotes() []string {
	return r.c.Keys()
}
