package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/pkg/clock"

	"github.com/google/uuid"
)

// ExpiryNotifier lets the realtime layer announce expiry to rooms that are
// still connected. Optional; attached after construction.
type ExpiryNotifier interface {
	NotifySessionExpired(sessionID uuid.UUID)
}

// Sweeper is the periodic janitor: it expires overdue sessions, abandons
// their rooms and purges terminal rooms past the retention window.
type Sweeper struct {
	sessions  SessionUseCase
	rooms     RoomRepository
	clock     clock.Clock
	interval  time.Duration
	retention time.Duration
	notifier  ExpiryNotifier
	logger    *slog.Logger
}

func NewSweeper(
	sessions SessionUseCase,
	rooms RoomRepository,
	clock clock.Clock,
	interval, retention time.Duration,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		sessions:  sessions,
		rooms:     rooms,
		clock:     clock,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

func (s *Sweeper) SetNotifier(n ExpiryNotifier) {
	s.notifier = n
}

// Run ticks until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) {
	now := s.clock.Now()

	expired, err := s.sessions.ExpireSweep(ctx, now)
	if err != nil {
		s.logger.Error("session expiry sweep failed", "error", err)
	}
	if len(expired) > 0 {
		s.logger.Info("expired overdue sessions", "count", len(expired))
		if s.notifier != nil {
			for _, id := range expired {
				s.notifier.NotifySessionExpired(id)
			}
		}
	}

	purged, err := s.rooms.PurgeTerminalBefore(ctx, now.Add(-s.retention))
	if err != nil {
		s.logger.Error("room retention purge failed", "error", err)
		return
	}
	if purged > 0 {
		s.logger.Info("purged terminal rooms", "count", purged)
	}
}
