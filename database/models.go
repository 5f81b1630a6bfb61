package database

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post is a news article, either written in the dashboard or produced by
// the auto-content generator. Content is stored as sanitized HTML.
type Post struct {
	gorm.Model
	AuthorID uint `gorm:"index"`

	Title   string
	Slug    string `gorm:"uniqueIndex"`
	Excerpt string

	// Content is the rendered, sanitized HTML served to readers. Source
	// keeps the author's markdown for dashboard posts; generated posts
	// arrive as HTML and leave it empty.
	Content string `gorm:"type:text"`
	Source  string `gorm:"type:text"`

	Category string `gorm:"index"`
	Lang     string

	// A post is publicly visible iff Published is true. A post with
	// Published false and a non-nil PublishedAt is scheduled (or overdue,
	// once that time has passed).
	Published   bool `gorm:"index"`
	PublishedAt *time.Time

	IsHeroPinned bool
	Featured     bool
	ReadingTime  int
	Views        int64

	ImageURL string
	AltText  string

	Keywords datatypes.JSON
	Tags     datatypes.JSON

	MetaTitle       string
	MetaDescription string
	FocusKeyword    string
	CanonicalURL    string
	RobotsMeta      string

	OGTitle       string
	OGDescription string
	OGImage       string

	TwitterTitle       string
	TwitterDescription string
	TwitterImage       string
	TwitterCardType    string
}

type AdminUser struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex"`
	PasswordHash []byte
	SessionToken string `gorm:"index;unique"`
	Posts        []Post `gorm:"foreignKey:AuthorID"`
}

// AutoContentSetting describes one auto-generation schedule: what topic to
// write about, in which category, and how often.
type AutoContentSetting struct {
	gorm.Model
	UserID         uint `gorm:"index"`
	Topic          string
	PromptTemplate string `gorm:"type:text"`
	Category       string
	FrequencyHours int
	IsActive       bool `gorm:"index"`
}

// AutoArticleLog statuses. Every generation attempt writes exactly one row
// which must end up in either completed or error.
const (
	LogStatusGenerating = "generating"
	LogStatusCompleted  = "completed"
	LogStatusError      = "error"
)

// AutoArticleLog is the audit record of a single generation attempt. The
// newest completed row per setting is the dispatcher's scheduling watermark.
type AutoArticleLog struct {
	gorm.Model
	SettingID    uint `gorm:"index"`
	Topic        string
	Status       string `gorm:"index"`
	ErrorMessage string
	PostID       *uint
}

func GetPostWithSlug(db *gorm.DB, slug string) (*Post, error) {
	var post Post
	result := db.Where("slug = ?", slug).First(&post)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &post, nil
}

// LastCompletedLog returns the newest completed log entry for a setting, or
// nil when the setting has never completed a generation.
func LastCompletedLog(db *gorm.DB, settingID uint) (*AutoArticleLog, error) {
	var entry AutoArticleLog
	result := db.Where("setting_id = ? AND status = ?", settingID, LogStatusCompleted).
		Order("created_at DESC").
		First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &entry, nil
}

func ActiveSettings(db *gorm.DB) ([]AutoContentSetting, error) {
	var settings []AutoContentSetting
	result := db.Where("is_active = ?", true).Order("created_at ASC").Find(&settings)
	return settings, result.Error
}

func RecentLogs(db *gorm.DB, limit int) ([]AutoArticleLog, error) {
	var logs []AutoArticleLog
	result := db.Order("created_at DESC").Limit(limit).Find(&logs)
	return logs, result.Error
}

// ScheduledPosts returns unpublished posts that have a publish time set,
// soonest first. Overdue posts sort first as a consequence.
func ScheduledPosts(db *gorm.DB) ([]Post, error) {
	var posts []Post
	result := db.Where("published = ? AND published_at IS NOT NULL", false).
		Order("published_at ASC").
		Find(&posts)
	return posts, result.Error
}
