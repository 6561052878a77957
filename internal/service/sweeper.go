package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionSweeper periodically deletes expired sessions. Resolution already
// ignores them, so the sweep only keeps the table small.
type SessionSweeper struct {
	auth     AuthService
	interval time.Duration
	log      *zap.Logger
}

// NewSessionSweeper constructs a sweeper; a non-positive interval disables it.
func NewSessionSweeper(auth AuthService, interval time.Duration, log *zap.Logger) *SessionSweeper {
	return &SessionSweeper{auth: auth, interval: interval, log: log}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *SessionSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	n, err := s.auth.PurgeExpiredSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("session sweep failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		s.log.Info("expired sessions removed", zap.Int64("count", n))
	}
}
