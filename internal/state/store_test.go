package state

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
)

func loggedIn() *Store {
	var s Store
	s.Login(clinic.Identity{Name: "Front Desk", Username: "desk"})
	return &s
}

func TestStore_ZeroValueIsLoggedOutQueue(t *testing.T) {
	var s Store
	snap := s.Snapshot()
	if snap.LoggedIn {
		t.Fatalf("zero store reports logged in")
	}
	if !snap.Filter.IsAll() {
		t.Fatalf("Filter = %v, want All", snap.Filter)
	}
	if snap.Page != PageQueue {
		t.Fatalf("Page = %v, want Queue", snap.Page)
	}
	if snap.Loaded() {
		t.Fatalf("Loaded() = true before any refresh")
	}
}

func TestStore_ReplaceVisitsAndSnapshotClone(t *testing.T) {
	s := loggedIn()

	before := time.Now()
	s.ReplaceVisits([]clinic.PatientVisit{{Row: 2}, {Row: 3}})

	snap := s.Snapshot()
	if len(snap.Visits) != 2 || snap.Visits[0].Row != 2 {
		t.Fatalf("snapshot visits = %#v, want 2 items", snap.Visits)
	}
	if snap.LastRefresh.Before(before) {
		t.Fatalf("LastRefresh = %v, want >= %v", snap.LastRefresh, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Visits[0].Row = 999
	snap2 := s.Snapshot()
	if snap2.Visits[0].Row != 2 {
		t.Fatalf("Snapshot should clone visits; got row %d want 2", snap2.Visits[0].Row)
	}
}

func TestStore_ReplaceVisitsNeverMerges(t *testing.T) {
	s := loggedIn()
	s.ReplaceVisits([]clinic.PatientVisit{{Row: 2}, {Row: 3}, {Row: 4}})
	s.ReplaceVisits([]clinic.PatientVisit{{Row: 5}})

	snap := s.Snapshot()
	if len(snap.Visits) != 1 || snap.Visits[0].Row != 5 {
		t.Fatalf("visits = %#v, want only row 5", snap.Visits)
	}
}

func TestStore_RecordFailureKeepsPreviousData(t *testing.T) {
	s := loggedIn()
	s.ReplaceVisits([]clinic.PatientVisit{{Row: 2}})
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.RecordFailure(origErr)

	snap := s.Snapshot()
	if len(snap.Visits) != 1 || snap.Visits[0].Row != 2 {
		t.Fatalf("visits changed on error: got %#v want %#v", snap.Visits, prev.Visits)
	}
	if !snap.LastRefresh.Equal(prev.LastRefresh) {
		t.Fatalf("LastRefresh moved on failure")
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should still wrap the original")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	s := loggedIn()

	for i := 1; i <= 3; i++ {
		s.RecordFailure(errors.New("fail"))
		snap := s.Snapshot()
		if snap.ConsecutiveFailures != i {
			t.Fatalf("ConsecutiveFailures = %d, want %d", snap.ConsecutiveFailures, i)
		}
		if got, want := snap.IsOffline(), i >= 2; got != want {
			t.Fatalf("IsOffline() = %v with %d failures, want %v", got, i, want)
		}
	}

	s.ReplaceVisits(nil)
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success should reset failures; got %d", snap.ConsecutiveFailures)
	}
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	s := loggedIn()
	s.ReplaceVisits([]clinic.PatientVisit{{Row: 2}})
	s.SetFilter(queue.ByStatus(clinic.StatusCancelled))
	s.SetPage(PageAnalytics)
	s.RecordFailure(errors.New("fail"))

	s.Logout()

	snap := s.Snapshot()
	if !reflect.DeepEqual(snap, Snapshot{Generation: snap.Generation}) {
		t.Fatalf("snapshot after logout = %#v, want zero", snap)
	}

	// A refresh finishing after logout must not repopulate the session.
	s.ReplaceVisits([]clinic.PatientVisit{{Row: 9}})
	s.RecordFailure(errors.New("late"))
	if snap := s.Snapshot(); len(snap.Visits) != 0 || snap.LastError != nil {
		t.Fatalf("late refresh leaked into logged-out session: %#v", snap)
	}
}

func TestStore_RefreshFromEarlierSessionIsDropped(t *testing.T) {
	s := loggedIn()
	gen := s.Snapshot().Generation

	// Logged out and back in as someone else while the fetch was running.
	s.Logout()
	s.Login(clinic.Identity{Name: "Night Desk", Username: "night"})
	if s.Snapshot().Generation == gen {
		t.Fatalf("Generation not bumped by Logout/Login")
	}

	s.ReplaceVisitsFor(gen, []clinic.PatientVisit{{Row: 9}})
	s.RecordFailureFor(gen, errors.New("late"))
	snap := s.Snapshot()
	if len(snap.Visits) != 0 || snap.LastError != nil || snap.Loaded() {
		t.Fatalf("earlier session's refresh leaked: %#v", snap)
	}

	s.ReplaceVisitsFor(snap.Generation, []clinic.PatientVisit{{Row: 2}})
	if got := len(s.Snapshot().Visits); got != 1 {
		t.Fatalf("current session's refresh dropped; visits = %d", got)
	}
}

func TestStore_SetFilterAndPage(t *testing.T) {
	s := loggedIn()
	s.ReplaceVisits([]clinic.PatientVisit{
		{Row: 2, Status: clinic.StatusWaiting},
		{Row: 3, Status: clinic.StatusCompleted},
	})
	s.SetFilter(queue.ByStatus(clinic.StatusCompleted))
	s.SetPage(PageSearch)

	snap := s.Snapshot()
	if snap.Page != PageSearch {
		t.Fatalf("Page = %v, want Search", snap.Page)
	}
	p := snap.Projection()
	if len(p.Visits) != 1 || p.Visits[0].Row != 3 {
		t.Fatalf("projection = %#v, want row 3", p.Visits)
	}
	if p.Counts.Total != 2 {
		t.Fatalf("Counts.Total = %d, want 2", p.Counts.Total)
	}
}

func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	s := loggedIn()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.ReplaceVisits([]clinic.PatientVisit{{Row: n}, {Row: n + 1}})
		}(i)
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			if len(snap.Visits) != 0 && len(snap.Visits) != 2 {
				t.Errorf("torn read: %d visits", len(snap.Visits))
			}
		}()
	}
	wg.Wait()
}
