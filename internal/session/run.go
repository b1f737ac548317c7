package session

import (
	"context"
	"time"
)

// Run starts the session if it is idle and steps it at the configured tick
// rate until ctx is cancelled or the session ends. On cancellation the
// session is ended.
func (s *Session) Run(ctx context.Context) error {
	s.Start()

	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()
	last := s.now()

	for {
		select {
		case <-ctx.Done():
			s.End()
			return ctx.Err()
		case <-ticker.C:
			now := s.now()
			s.Step(now.Sub(last))
			last = now
			if s.Phase() == PhaseEnded {
				return nil
			}
		}
	}
}
