package autogen

import (
	"context"
	"time"

	"gorm.io/gorm"

	"prensa/database"
	"prensa/logger"
)

// Scheduler drives the dispatcher from an in-process timer, replacing the
// external cron trigger. Optionally it also sweeps overdue scheduled posts
// into the published state.
type Scheduler struct {
	db             *gorm.DB
	dispatcher     *Dispatcher
	log            *logger.Logger
	interval       time.Duration
	promoteOverdue bool
}

func NewScheduler(db *gorm.DB, dispatcher *Dispatcher, log *logger.Logger, interval time.Duration, promoteOverdue bool) *Scheduler {
	return &Scheduler{
		db:             db,
		dispatcher:     dispatcher,
		log:            log.With("component", "scheduler"),
		interval:       interval,
		promoteOverdue: promoteOverdue,
	}
}

// Run blocks until ctx is canceled, ticking every interval.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", "interval", s.interval.String(), "promote_overdue", s.promoteOverdue)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.dispatcher.Dispatch(ctx); err != nil {
		s.log.Error("scheduled dispatch failed", "error", err)
	}
	if s.promoteOverdue {
		promoted, err := PromoteOverduePosts(s.db, time.Now())
		if err != nil {
			s.log.Error("overdue promotion failed", "error", err)
		} else if promoted > 0 {
			s.log.Info("promoted overdue posts", "count", promoted)
		}
	}
}

// PromoteOverduePosts publishes every post whose scheduled time has passed.
// Only called when the overdue sweep is explicitly enabled; the default
// behavior leaves overdue posts for a manual "publish now".
func PromoteOverduePosts(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&database.Post{}).
		Where("published = ? AND published_at IS NOT NULL AND published_at <= ?", false, now).
		Update("published", true)
	return result.RowsAffected, result.Error
}
