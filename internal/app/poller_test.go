package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := defaultPollInterval

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Minute},
		{"negative failures", -1, 2 * time.Minute},
		{"one failure", 1, 4 * time.Minute},
		{"two failures", 2, 8 * time.Minute},
		{"three failures capped", 3, 10 * time.Minute}, // Would be 16m, capped to 10m
		{"many failures capped", 10, 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 200; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestCalculateBackoff_LongBaseUnchanged(t *testing.T) {
	base := 15 * time.Minute
	if got := calculateBackoff(3, base); got != base {
		t.Fatalf("calculateBackoff(3, %v) = %v, want base", base, got)
	}
}

type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	visits []clinic.PatientVisit
	err    error
	// during runs inside the fetch, before it returns.
	during func()
}

func (f *fakeFetcher) TodaysCheckins(context.Context) ([]clinic.PatientVisit, error) {
	f.mu.Lock()
	f.calls++
	visits, err, during := f.visits, f.err, f.during
	f.mu.Unlock()
	if during != nil {
		during()
	}
	return visits, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRefresh_ReplacesAndRecordsFailures(t *testing.T) {
	store := &state.Store{}
	store.Login(clinic.Identity{Name: "Desk"})
	fetcher := &fakeFetcher{visits: []clinic.PatientVisit{{Row: 2}, {Row: 3}}}

	if err := Refresh(context.Background(), store, fetcher, zerolog.Nop()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if got := len(store.Snapshot().Visits); got != 2 {
		t.Fatalf("visits = %d, want 2", got)
	}

	fetcher.err = errors.New("HTTP 500: Internal Server Error")
	if err := Refresh(context.Background(), store, fetcher, zerolog.Nop()); err == nil {
		t.Fatalf("Refresh returned nil error on fetch failure")
	}
	snap := store.Snapshot()
	if len(snap.Visits) != 2 {
		t.Fatalf("failure should keep previous visits; got %d", len(snap.Visits))
	}
	if snap.ConsecutiveFailures != 1 || snap.LastError == nil {
		t.Fatalf("failure not recorded: %+v", snap)
	}
}

func TestRefresh_DropsResultFromEarlierSession(t *testing.T) {
	store := &state.Store{}
	store.Login(clinic.Identity{Name: "Day Desk"})
	fetcher := &fakeFetcher{
		visits: []clinic.PatientVisit{{Row: 2}},
		during: func() {
			store.Logout()
			store.Login(clinic.Identity{Name: "Night Desk"})
		},
	}

	if err := Refresh(context.Background(), store, fetcher, zerolog.Nop()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	snap := store.Snapshot()
	if snap.Identity.Name != "Night Desk" {
		t.Fatalf("identity = %q, want Night Desk", snap.Identity.Name)
	}
	if len(snap.Visits) != 0 || snap.Loaded() {
		t.Fatalf("previous user's list installed: %+v", snap.Visits)
	}
}

func TestStartPoller_RefreshesOnlyWhenLoggedIn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &state.Store{}
	fetcher := &fakeFetcher{visits: []clinic.PatientVisit{{Row: 2}}}
	StartPoller(ctx, store, fetcher, 10*time.Millisecond, zerolog.Nop())

	time.Sleep(50 * time.Millisecond)
	if n := fetcher.callCount(); n != 0 {
		t.Fatalf("poller fetched %d times while logged out", n)
	}

	store.Login(clinic.Identity{Name: "Desk"})
	deadline := time.Now().Add(2 * time.Second)
	for !store.Snapshot().Loaded() {
		if time.Now().After(deadline) {
			t.Fatalf("poller did not refresh after login")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := len(store.Snapshot().Visits); got != 1 {
		t.Fatalf("visits = %d, want 1", got)
	}
}
