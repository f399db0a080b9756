package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/internal/infrastructure/observability"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	auditWriteTimeout = 5 * time.Second
	journalBatchSize  = 100
)

// Actor identifies who performed an operation.
type Actor struct {
	UserID   uuid.UUID
	Username string
}

func (a Actor) userIDPtr() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

// AuditRecorder is the best-effort audit sink used by the other services.
type AuditRecorder interface {
	Record(ctx context.Context, action string, actor Actor, details map[string]interface{})
}

// AuditService writes audit entries to the database and spools them to the
// local journal when that write fails. Record never returns an error.
type AuditService struct {
	repo         repository.AuditRepository
	journal      repository.AuditJournal
	logger       *zap.Logger
	writeTimeout time.Duration
}

// NewAuditService creates a new audit service. journal may be nil.
func NewAuditService(repo repository.AuditRepository, journal repository.AuditJournal, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, journal: journal, logger: logger, writeTimeout: auditWriteTimeout}
}

func (s *AuditService) Record(ctx context.Context, action string, actor Actor, details map[string]interface{}) {
	entry := &entity.AuditLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    actor.userIDPtr(),
		Username:  actor.Username,
		Details:   datatypes.JSONMap(details),
		Timestamp: time.Now(),
	}

	// The entry outlives the request that triggered it.
	parent := context.WithoutCancel(ctx)
	writeCtx, cancel := context.WithTimeout(parent, s.writeTimeout)
	defer cancel()

	err := s.repo.Create(writeCtx, entry)
	if err == nil {
		return
	}
	observability.AuditWriteFailures.Inc()
	s.logger.Warn("audit write failed",
		zap.String("action", action),
		zap.String("audit_id", entry.ID.String()),
		zap.Error(err))

	if s.journal == nil {
		return
	}
	// A write that hit its deadline has used up writeCtx; the spool gets its own.
	spoolCtx, cancelSpool := context.WithTimeout(parent, s.writeTimeout)
	defer cancelSpool()
	if err := s.journal.Append(spoolCtx, entry); err != nil {
		s.logger.Error("audit entry lost: journal append failed",
			zap.String("action", action),
			zap.Any("details", details),
			zap.Error(err))
	}
}

// FlushJournal replays spooled entries into the database. It stops at the
// first failed write so entries are replayed in order. The audit store
// ignores ids it already holds, so an entry written before a failed MarkSent
// is simply marked on the next pass.
func (s *AuditService) FlushJournal(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}

	records, err := s.journal.FetchPending(ctx, journalBatchSize)
	if err != nil {
		return 0, err
	}

	flushed := 0
	for _, rec := range records {
		entry := rec.Entry
		if err := s.repo.Create(ctx, &entry); err != nil {
			return flushed, err
		}
		if err := s.journal.MarkSent(ctx, rec.ID); err != nil {
			return flushed, err
		}
		flushed++
	}
	return flushed, nil
}

// RunJournalFlusher calls FlushJournal every interval until ctx is done.
func (s *AuditService) RunJournalFlusher(ctx context.Context, interval time.Duration) {
	if s.journal == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.FlushJournal(ctx)
			if err != nil {
				s.logger.Warn("audit journal flush failed", zap.Int("flushed", n), zap.Error(err))
			} else if n > 0 {
				s.logger.Info("audit journal flushed", zap.Int("flushed", n))
			}
		}
	}
}

// List returns recent entries, optionally filtered by action.
func (s *AuditService) List(ctx context.Context, action string, limit int) ([]entity.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.repo.List(ctx, action, limit)
}

// UserActivity is a user's recent audit trail with per-action counts.
type UserActivity struct {
	Logs    []entity.AuditLog `json:"logs"`
	Summary map[string]int64  `json:"summary"`
	Total   int64             `json:"total"`
}

// GetUserActivity returns the user's 50 most recent entries and a per-action summary.
func (s *AuditService) GetUserActivity(ctx context.Context, userID uuid.UUID) (*UserActivity, error) {
	logs, err := s.repo.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByActionForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	if logs == nil {
		logs = []entity.AuditLog{}
	}
	return &UserActivity{Logs: logs, Summary: counts, Total: total}, nil
}
