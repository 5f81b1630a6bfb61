package site

import (
	"time"

	"gorm.io/gorm"

	"prensa/database"
)

// PublishState is the lifecycle position of a post, derived from its
// published flag and publish timestamp. There is no background promotion:
// a scheduled post whose time passes becomes overdue and waits for an
// operator (unless the optional overdue sweep is enabled).
type PublishState string

const (
	StateDraft     PublishState = "draft"
	StateScheduled PublishState = "scheduled"
	StateOverdue   PublishState = "overdue"
	StateLive      PublishState = "live"
)

func ResolvePublishState(p database.Post, now time.Time) PublishState {
	if p.Published {
		return StateLive
	}
	if p.PublishedAt == nil {
		return StateDraft
	}
	if p.PublishedAt.After(now) {
		return StateScheduled
	}
	return StateOverdue
}

// SchedulePost sets a publish time. Picking a time that is already in the
// past publishes the post immediately instead of leaving it overdue.
func SchedulePost(db *gorm.DB, post *database.Post, at time.Time, now time.Time) error {
	published := !at.After(now)
	result := db.Model(post).Updates(map[string]any{
		"published_at": at,
		"published":    published,
	})
	if result.Error != nil {
		return result.Error
	}
	post.PublishedAt = &at
	post.Published = published
	return nil
}

// CancelSchedule returns a scheduled or overdue post to draft.
func CancelSchedule(db *gorm.DB, post *database.Post) error {
	result := db.Model(post).Updates(map[string]any{
		"published_at": nil,
		"published":    false,
	})
	if result.Error != nil {
		return result.Error
	}
	post.PublishedAt = nil
	post.Published = false
	return nil
}

// PublishNow forces a post live, whatever state it was in.
func PublishNow(db *gorm.DB, post *database.Post, now time.Time) error {
	result := db.Model(post).Updates(map[string]any{
		"published_at": now,
		"published":    true,
	})
	if result.Error != nil {
		return result.Error
	}
	post.PublishedAt = &now
	post.Published = true
	return nil
}
