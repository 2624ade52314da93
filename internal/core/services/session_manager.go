package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/cdisim/cdi_sim_app/internal/dto"
	"github.com/cdisim/cdi_sim_app/internal/middleware"
	"github.com/robfig/cron/v3"
)

// sessionManagerImpl arms and disarms the per-user accrual tick. One shared
// cron scheduler carries an entry per open session; reconciliation always
// completes before the entry is added, so a tick can never race the catch-up
// for the same user (the per-user lock inside the engine is the backstop).
type sessionManagerImpl struct {
	BaseService
	accrual       portssvc.AccrualSvc
	marketData    portssvc.MarketDataSvc
	historyRepo   portsrepo.HistoryRepositoryFacade
	notices       *noticeBuffer
	scheduler     *cron.Cron
	tickSeconds   int64
	historyMaxAge time.Duration

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewSessionManager creates the session manager and starts its scheduler.
func NewSessionManager(
	accrual portssvc.AccrualSvc,
	marketData portssvc.MarketDataSvc,
	historyRepo portsrepo.HistoryRepositoryFacade,
	notices *noticeBuffer,
	tickSeconds int64,
	historyMaxAge time.Duration,
) *sessionManagerImpl {
	s := &sessionManagerImpl{
		accrual:       accrual,
		marketData:    marketData,
		historyRepo:   historyRepo,
		notices:       notices,
		scheduler:     cron.New(cron.WithSeconds()),
		tickSeconds:   tickSeconds,
		historyMaxAge: historyMaxAge,
		entries:       make(map[string]cron.EntryID),
	}
	s.scheduler.Start()
	return s
}

var _ portssvc.SessionSvc = (*sessionManagerImpl)(nil)

// Open reconciles the user's offline window and then arms the recurring tick.
// Reopening an already-open session reconciles again but keeps the existing
// tick entry.
func (s *sessionManagerImpl) Open(ctx context.Context, userID string) (*dto.SessionOpenResponse, error) {
	now := time.Now()

	// Trim the rolling history window first so stale rows never surface in
	// this session.
	cutoff := now.Add(-s.historyMaxAge)
	if err := s.historyRepo.PurgeHistoryBefore(ctx, userID, cutoff); err != nil {
		s.LogWarn(ctx, "Failed to purge stale history", slog.String("user_id", userID), slog.String("error", err.Error()))
	}

	rates := s.marketData.Rates(ctx)
	summary, err := s.accrual.Reconcile(ctx, userID, now, rates)
	if err != nil {
		s.LogError(ctx, err, "Reconcile failed at session open", slog.String("user_id", userID))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, open := s.entries[userID]; !open {
		entryID, err := s.scheduler.AddFunc(fmt.Sprintf("@every %ds", s.tickSeconds), s.tickFor(userID))
		if err != nil {
			s.LogError(ctx, err, "Failed to arm accrual tick", slog.String("user_id", userID))
			return nil, err
		}
		s.entries[userID] = entryID
	}

	s.LogInfo(ctx, "Session opened",
		slog.String("user_id", userID),
		slog.Int64("effective_cycles", summary.EffectiveCycles))

	return &dto.SessionOpenResponse{
		Reconcile:       summary,
		BenchmarkAnnual: rates.BenchmarkAnnual,
		TickSeconds:     s.tickSeconds,
		OpenedAt:        now,
	}, nil
}

func (s *sessionManagerImpl) Close(ctx context.Context, userID string) error {
	s.mu.Lock()
	entryID, open := s.entries[userID]
	if open {
		s.scheduler.Remove(entryID)
		delete(s.entries, userID)
	}
	s.mu.Unlock()

	s.notices.Clear(userID)
	if open {
		s.LogInfo(ctx, "Session closed", slog.String("user_id", userID))
	}
	return nil
}

func (s *sessionManagerImpl) Active(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, open := s.entries[userID]
	return open
}

func (s *sessionManagerImpl) DrainNotices(userID string) []dto.Notice {
	return s.notices.Drain(userID)
}

func (s *sessionManagerImpl) RecentHistory(ctx context.Context, userID string) ([]domain.DailyHistory, error) {
	since := domain.DayKey(time.Now().Add(-s.historyMaxAge))
	history, err := s.historyRepo.ListRecentHistory(ctx, userID, since)
	if err != nil {
		s.LogError(ctx, err, "Failed to list recent history", slog.String("user_id", userID))
		return nil, err
	}
	return history, nil
}

// Shutdown disarms every session and waits for in-flight ticks to finish.
func (s *sessionManagerImpl) Shutdown() {
	s.mu.Lock()
	for userID, entryID := range s.entries {
		s.scheduler.Remove(entryID)
		delete(s.entries, userID)
	}
	s.mu.Unlock()
	<-s.scheduler.Stop().Done()
}

// tickFor builds the closure the scheduler invokes every cycle. Ticks run
// outside any request, so the context carries only the user identity.
func (s *sessionManagerImpl) tickFor(userID string) func() {
	return func() {
		ctx := middleware.WithUserID(context.Background(), userID)
		rates := s.marketData.Rates(ctx)
		if _, err := s.accrual.RunCycle(ctx, userID, time.Now(), rates); err != nil {
			s.LogError(ctx, err, "Accrual cycle failed", slog.String("user_id", userID))
		}
	}
}
