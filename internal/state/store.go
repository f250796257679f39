package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
)

// Page is the dashboard section on screen.
type Page int

const (
	PageQueue Page = iota
	PageSearch
	PageAnalytics
	PageLogs
)

func (p Page) String() string {
	switch p {
	case PageQueue:
		return "Queue"
	case PageSearch:
		return "Search"
	case PageAnalytics:
		return "Analytics"
	case PageLogs:
		return "Logs"
	}
	return "Unknown"
}

// Snapshot represents the latest session state available to the UI.
type Snapshot struct {
	Identity            clinic.Identity
	LoggedIn            bool
	Visits              []clinic.PatientVisit
	Filter              queue.Filter
	Page                Page
	LastRefresh         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
	// Generation is bumped by Login and Logout. Refreshes started under an
	// older generation are dropped.
	Generation uint64
}

// IsOffline returns true when the backend has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Loaded reports whether at least one refresh has succeeded this session.
func (s Snapshot) Loaded() bool {
	return !s.LastRefresh.IsZero()
}

// Projection applies the current filter to the visit list.
func (s Snapshot) Projection() queue.Projection {
	return queue.Project(s.Visits, s.Filter)
}

// Store coordinates concurrent updates to the snapshot. Every mutation is a
// named action that builds a new snapshot and swaps it in under the lock.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func (s *Store) apply(fn func(next *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot
	fn(&next)
	s.snapshot = next
}

// Login records the authenticated identity. The visit list starts empty.
func (s *Store) Login(identity clinic.Identity) {
	s.apply(func(next *Snapshot) {
		*next = Snapshot{Generation: next.Generation + 1}
		next.Identity = identity
		next.LoggedIn = true
	})
}

// Logout resets everything to the zero snapshot.
func (s *Store) Logout() {
	s.apply(func(next *Snapshot) {
		*next = Snapshot{Generation: next.Generation + 1}
	})
}

// ReplaceVisits swaps in a freshly fetched list. The previous list is
// discarded, never merged. Results arriving after logout are dropped.
func (s *Store) ReplaceVisits(visits []clinic.PatientVisit) {
	s.apply(func(next *Snapshot) {
		if next.LoggedIn {
			replaceVisits(next, visits)
		}
	})
}

// ReplaceVisitsFor is ReplaceVisits for a refresh started under generation
// gen. It is dropped if anyone logged in or out since.
func (s *Store) ReplaceVisitsFor(gen uint64, visits []clinic.PatientVisit) {
	s.apply(func(next *Snapshot) {
		if next.LoggedIn && next.Generation == gen {
			replaceVisits(next, visits)
		}
	})
}

func replaceVisits(next *Snapshot, visits []clinic.PatientVisit) {
	next.Visits = cloneVisits(visits)
	next.LastRefresh = time.Now()
	next.LastError = nil
	next.ConsecutiveFailures = 0
}

// RecordFailure keeps the previous list but records the error for visibility.
func (s *Store) RecordFailure(err error) {
	if err == nil {
		return
	}
	s.apply(func(next *Snapshot) {
		if next.LoggedIn {
			recordFailure(next, err)
		}
	})
}

// RecordFailureFor is RecordFailure for a refresh started under generation
// gen.
func (s *Store) RecordFailureFor(gen uint64, err error) {
	if err == nil {
		return
	}
	s.apply(func(next *Snapshot) {
		if next.LoggedIn && next.Generation == gen {
			recordFailure(next, err)
		}
	})
}

func recordFailure(next *Snapshot, err error) {
	next.LastError = err
	next.ConsecutiveFailures++
}

// SetFilter changes the queue filter.
func (s *Store) SetFilter(f queue.Filter) {
	s.apply(func(next *Snapshot) {
		next.Filter = f
	})
}

// SetPage changes the visible page.
func (s *Store) SetPage(p Page) {
	s.apply(func(next *Snapshot) {
		next.Page = p
	})
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Visits = cloneVisits(s.snapshot.Visits)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneVisits(items []clinic.PatientVisit) []clinic.PatientVisit {
	if len(items) == 0 {
		return nil
	}
	dup := make([]clinic.PatientVisit, len(items))
	copy(dup, items)
	return dup
}
