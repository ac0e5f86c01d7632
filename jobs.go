package photoflow

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often expired signup OTPs are purged.
const DefaultSweepInterval = time.Hour

// OTPSweeper periodically clears expired signup OTPs so abandoned signups do
// not hold stale codes forever.
type OTPSweeper struct {
	repo     RepositoryManager
	logger   Logger
	interval time.Duration
	done     chan struct{}
	stop     sync.Once
}

func NewOTPSweeper(repo RepositoryManager, logger Logger, interval time.Duration) *OTPSweeper {
	if logger == nil {
		logger = defLogger{}
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &OTPSweeper{
		repo:     repo,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *OTPSweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop halts the sweep loop. Safe to call more than once, from any
// goroutine.
func (s *OTPSweeper) Stop() {
	s.stop.Do(func() {
		close(s.done)
	})
}

func (s *OTPSweeper) sweep(ctx context.Context) {
	n, err := s.repo.Users().SweepExpiredOTPs(ctx, time.Now())
	if err != nil {
		s.logger.Error("OTP sweep failed", "error", err)
		return
	}

	if n > 0 {
		s.logger.Info("cleared expired signup OTPs", "count", n)
	}
}
