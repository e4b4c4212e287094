package lock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrBusy means a lock could not be acquired within the wait window. It is
// transient: callers (and the reconciliation sweep) retry with backoff.
var ErrBusy = errors.New("resource busy, retry later")

// Registry hands out per-key exclusive locks. Multi-key acquisition always
// happens in sorted key order, which makes deadlock-freedom a property of
// the registry rather than of each call site.
type Registry struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
	wait time.Duration
}

// NewRegistry creates a registry whose acquisitions give up after wait.
func NewRegistry(wait time.Duration) *Registry {
	return &Registry{
		sems: make(map[string]chan struct{}),
		wait: wait,
	}
}

func (r *Registry) sem(key string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sems[key]
	if !ok {
		s = make(chan struct{}, 1)
		r.sems[key] = s
	}
	return s
}

// Acquire takes exclusive locks on every key (deduplicated, sorted) and
// returns a release function. It fails with ErrBusy when any lock cannot be
// taken before the wait window closes, releasing whatever it already holds.
func (r *Registry) Acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := dedupeSorted(keys)

	deadline := time.NewTimer(r.wait)
	defer deadline.Stop()

	held := make([]chan struct{}, 0, len(sorted))
	release := func() {
		// release in reverse acquisition order
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range sorted {
		s := r.sem(key)
		select {
		case s <- struct{}{}:
			held = append(held, s)
		case <-deadline.C:
			release()
			return nil, ErrBusy
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

func dedupeSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AccountKey and LoanKey namespace the two shared mutable resource kinds so
// their identifiers can never collide in the registry.
func AccountKey(accountID string) string { return "acct:" + accountID }
func LoanKey(loanID string) string       { return "loan:" + loanID }
