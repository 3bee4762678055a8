package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger deletes audit rows older than the retention window.
type Purger interface {
	Purge(ctx context.Context, retention time.Duration, now time.Time) (int64, error)
}

// Resyncer replaces the shared online set with the given users.
type Resyncer interface {
	Resync(ctx context.Context, users []string) error
}

// OnlineSource lists the users this process holds connections for.
type OnlineSource interface {
	GetOnlineUsers() []string
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron      *cron.Cron
	audit     Purger
	cache     Resyncer
	online    OnlineSource
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler. cache may be nil when Redis is not configured.
func NewScheduler(audit Purger, cache Resyncer, online OnlineSource, retentionDays int, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		audit:     audit,
		cache:     cache,
		online:    online,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log.Named("cron"),
		now:       time.Now,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	// Every day at 3 AM - audit log retention
	if _, err := s.cron.AddFunc("0 3 * * *", s.purgeAuditLogs); err != nil {
		return err
	}

	// Every minute - keep the Redis online set in line with live connections
	if s.cache != nil {
		if _, err := s.cron.AddFunc("* * * * *", s.resyncOnlineUsers); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) purgeAuditLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.audit.Purge(ctx, s.retention, s.now())
	if err != nil {
		s.log.Error("audit log purge failed", zap.Error(err))
		return
	}
	s.log.Info("audit log purge", zap.Int64("deleted", n), zap.Duration("retention", s.retention))
}

func (s *Scheduler) resyncOnlineUsers() {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := s.online.GetOnlineUsers()
	if err := s.cache.Resync(ctx, users); err != nil {
		s.log.Warn("online set resync failed", zap.Error(err))
		return
	}
	s.log.Debug("online set resynced", zap.Int("users", len(users)))
}

// ManualTrigger runs a job immediately (for testing/admin purposes)
func (s *Scheduler) ManualTrigger(job string) {
	switch job {
	case "audit_purge":
		s.purgeAuditLogs()
	case "presence_resync":
		s.resyncOnlineUsers()
	case "all":
		s.purgeAuditLogs()
		s.resyncOnlineUsers()
	default:
		s.log.Warn("unknown job", zap.String("job", job))
	}
}
