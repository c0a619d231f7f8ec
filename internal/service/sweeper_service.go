package service

import (
	"context"
	"errors"
	"time"

	"carematch-be/internal/pkg/logger"
	"carematch-be/pkg/lock"
)

const sweepLockKey = "lifecycle-sweep"

type SweepResult struct {
	ExpiredRequests int64
	ExpiredPayments int64
	// Skipped is set when another instance held the sweep lock.
	Skipped bool
}

type ISweeperService interface {
	SweepOnce(ctx context.Context) (*SweepResult, error)
	// Run sweeps every interval until ctx is cancelled.
	Run(ctx context.Context)
}

type sweeperService struct {
	matches      IMatchService
	transactions ITransactionService
	locker       lock.Locker
	interval     time.Duration
	logger       logger.ILogger
	now          func() time.Time
}

func NewSweeperService(
	matches IMatchService,
	transactions ITransactionService,
	locker lock.Locker,
	interval time.Duration,
	logger logger.ILogger,
) ISweeperService {
	if locker == nil {
		locker = lock.LocalLocker{}
	}
	return &sweeperService{
		matches:      matches,
		transactions: transactions,
		locker:       locker,
		interval:     interval,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *sweeperService) SweepOnce(ctx context.Context) (*SweepResult, error) {
	release, err := s.locker.Acquire(ctx, sweepLockKey, s.interval)
	if errors.Is(err, lock.ErrNotAcquired) {
		s.logger.Debug("SWEEPER", "Sweep already running elsewhere", nil)
		return &SweepResult{Skipped: true}, nil
	}
	if err != nil {
		// Both sweeps are conditional updates, so running them on two
		// instances at once is wasteful but safe.
		s.logger.Warn("SWEEPER", "Lock unavailable, sweeping without it", map[string]interface{}{
			"error": err.Error(),
		})
		release, _ = lock.LocalLocker{}.Acquire(ctx, sweepLockKey, s.interval)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("SWEEPER", "Failed to release sweep lock", map[string]interface{}{"error": err.Error()})
		}
	}()

	now := s.now()
	result := &SweepResult{}
	var errs []error

	if result.ExpiredRequests, err = s.matches.ExpireStaleRequests(ctx, now); err != nil {
		errs = append(errs, err)
	}
	if result.ExpiredPayments, err = s.transactions.ExpireStalePayments(ctx, now); err != nil {
		errs = append(errs, err)
	}

	return result, errors.Join(errs...)
}

func (s *sweeperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("SWEEPER", "Sweeper started", map[string]interface{}{"interval": s.interval.String()})
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("SWEEPER", "Sweeper stopped", nil)
			return
		case <-ticker.C:
			result, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error("SWEEPER", "Sweep failed", map[string]interface{}{"error": err})
				continue
			}
			if result.ExpiredRequests > 0 || result.ExpiredPayments > 0 {
				s.logger.Info("SWEEPER", "Sweep finished", map[string]interface{}{
					"expired_requests": result.ExpiredRequests,
					"expired_payments": result.ExpiredPayments,
				})
			}
		}
	}
}
