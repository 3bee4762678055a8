package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
)

const (
	LevelInfo    = "Info"
	LevelWarning = "Warning"
)

// AuditLogger writes application log rows. Writes are best effort: a failure is
// logged and never returned to the caller.
type AuditLogger struct {
	repo repository.AuditLogRepository
	log  *zap.Logger
}

func NewAuditLogger(repo repository.AuditLogRepository, log *zap.Logger) *AuditLogger {
	return &AuditLogger{repo: repo, log: log.Named("audit")}
}

// Record stores one row. userID may be empty.
func (a *AuditLogger) Record(ctx context.Context, level, source, userID, message string) {
	if a == nil || a.repo == nil {
		return
	}
	entry := &repository.AuditLog{
		Level:   level,
		Message: message,
		Source:  &source,
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		a.log.Warn("failed to write audit log",
			zap.String("source", source), zap.String("message", message), zap.Error(err))
	}
}

// Purge deletes rows older than retention.
func (a *AuditLogger) Purge(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	return a.repo.DeleteOlderThan(ctx, now.Add(-retention))
}
