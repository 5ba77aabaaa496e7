package store

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Janitor runs the periodic cleanup sweep over a session store. The
// sweep is a safety net behind lazy expiration on read: it reclaims
// records that nobody reads anymore and terminal records past their
// grace window.
type Janitor struct {
	store    SessionStore
	interval time.Duration
	cron     *cron.Cron
	logger   zerolog.Logger
}

// NewJanitor builds a janitor sweeping store every interval.
func NewJanitor(store SessionStore, interval time.Duration, logger zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Janitor{
		store:    store,
		interval: interval,
		cron:     cron.New(),
		logger:   logger.With().Str("component", "session_janitor").Logger(),
	}
}

// Start schedules the sweep and begins running it in the background.
func (j *Janitor) Start() error {
	spec := fmt.Sprintf("@every %s", j.interval)
	if _, err := j.cron.AddFunc(spec, j.sweep); err != nil {
		return fmt.Errorf("scheduling cleanup sweep: %w", err)
	}
	j.cron.Start()
	j.logger.Info().Dur("interval", j.interval).Msg("cleanup sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("cleanup sweep stopped")
}

func (j *Janitor) sweep() {
	removed := j.store.CleanupExpired()
	if removed > 0 {
		j.logger.Info().Int("removed", removed).Msg("removed dead sessions")
	}
}
