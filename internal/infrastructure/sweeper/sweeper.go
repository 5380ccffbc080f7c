package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/podfetch/authgate/internal/core/ports"
)

const defaultInterval = 10 * time.Minute

// Sweeper periodically purges expired sessions from stores that cannot expire
// them natively.
type Sweeper struct {
	repo     ports.ExpiringSessionRepository
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger

	// OnSwept, when set, receives the number of sessions removed by each pass.
	OnSwept func(n int64)
}

// New creates a Sweeper. If interval <= 0, defaultInterval is used.
func New(repo ports.ExpiringSessionRepository, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{
		repo:     repo,
		interval: interval,
		now:      time.Now,
		log:      log,
	}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

// SweepOnce removes every session expired at the current time.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 && s.OnSwept != nil {
		s.OnSwept(n)
	}
	return n, nil
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				s.log.Debug().Int64("removed", n).Msg("expired sessions purged")
			}
		}
	}
}
