package network

import (
	"math/rand"
	"sync"
	"time"

	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

// Bucketing thresholds, carried over from the address manager this
// book is adapted from: addresses demote to "bad" once they fail more
// often than they succeed.
const (
	maxTries    = 5
	maxFailures = 12

	// freshWindow is how recent an address's last-seen time must be to
	// be offered in response to getaddr (spec.md §4.3 on_getaddr).
	freshWindow = 3 * time.Hour

	// maxSampled is the largest number of addresses (excluding our own)
	// on_getaddr will hand back.
	maxSampled = 250
)

type addrEntry struct {
	addr     payload.NetAddr
	lastSeen time.Time
	tries    uint8
	failures uint8
	good     bool
	bad      bool
}

// AddrBook is the bag of known peer addresses described in spec.md §3
// ("addrs"), adapted from the teacher's addrmgr package: it keeps the
// good/new/bad bucketing as internal bookkeeping but exposes the
// simpler surface the session actually needs (Add, ConnectionComplete,
// Failed, Sample). It has no size cap; Add never evicts an entry.
type AddrBook struct {
	mu    sync.RWMutex
	known map[string]*addrEntry
}

// NewAddrBook returns an empty address book.
func NewAddrBook() *AddrBook {
	return &AddrBook{known: make(map[string]*addrEntry)}
}

// Add records a as known and fresh, per on_addr (spec.md §4.3).
func (b *AddrBook) Add(a payload.NetAddr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := a.String()
	e, ok := b.known[key]
	if !ok {
		e = &addrEntry{addr: a}
		b.known[key] = e
	}
	e.addr = a
	e.lastSeen = time.Now()
}

// ConnectionComplete marks the address as having completed a
// handshake, promoting it to the good bucket.
func (b *AddrBook) ConnectionComplete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.known[key]
	if !ok {
		return
	}
	e.tries++
	e.good = true
	e.bad = false
	e.failures = 0
	e.lastSeen = time.Now()
}

// Failed records a failed connection attempt against key, demoting it
// to the bad bucket once it fails more than it succeeds.
func (b *AddrBook) Failed(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.known[key]
	if !ok {
		return
	}
	e.tries++
	e.failures++
	if e.tries >= maxTries && e.failures*2 > e.tries {
		e.bad = true
		e.good = false
	}
	if e.failures > maxFailures {
		e.bad = true
	}
}

// Count returns the number of known addresses.
func (b *AddrBook) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.known)
}

// Sample returns up to n addresses last seen within window, in random
// order, skipping entries in the bad bucket. It backs on_getaddr.
func (b *AddrBook) Sample(n int, window time.Duration) []payload.NetAddr {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cutoff := time.Now().Add(-window)
	var fresh []payload.NetAddr
	for _, e := range b.known {
		if e.bad || e.lastSeen.Before(cutoff) {
			continue
		}
		fresh = append(fresh, e.addr)
	}
	rand.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	if len(fresh) > n {
		fresh = fresh[:n]
	}
	return fresh
}
