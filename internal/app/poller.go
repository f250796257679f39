package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/state"
)

const (
	defaultPollInterval = 2 * time.Minute
	maxBackoff          = 10 * time.Minute
)

// Fetcher loads today's visit list.
type Fetcher interface {
	TodaysCheckins(ctx context.Context) ([]clinic.PatientVisit, error)
}

// StartPoller launches a background goroutine that refreshes the store while
// someone is logged in. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, fetcher Fetcher, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if store.Snapshot().LoggedIn {
				_ = Refresh(ctx, store, fetcher, logger)
			}
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// calculateBackoff doubles the wait per consecutive failure, capped at
// maxBackoff. With the default 2m interval a failing backend is retried
// after 4m, 8m, then every 10m. Intervals already longer than the cap are
// left alone.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}

// Refresh fetches today's visits and replaces the store's list. On failure
// the previous list is kept and the error recorded.
func Refresh(ctx context.Context, store *state.Store, fetcher Fetcher, logger zerolog.Logger) error {
	gen := store.Snapshot().Generation
	visits, err := fetcher.TodaysCheckins(ctx)
	if err != nil {
		store.RecordFailureFor(gen, err)
		logger.Warn().Err(err).Msg("refresh failed")
		return err
	}
	store.ReplaceVisitsFor(gen, visits)
	logger.Debug().Int("visits", len(visits)).Msg("refresh succeeded")
	return nil
}
