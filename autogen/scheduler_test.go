package autogen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prensa/database"
)

func TestPromoteOverduePosts(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	overdue := database.Post{Title: "atrasado", Slug: "atrasado", Category: "ai", PublishedAt: &past}
	scheduled := database.Post{Title: "programado", Slug: "programado", Category: "ai", PublishedAt: &future}
	draft := database.Post{Title: "borrador", Slug: "borrador", Category: "ai"}
	live := database.Post{Title: "publicado", Slug: "publicado", Category: "ai", Published: true, PublishedAt: &past}
	for _, p := range []*database.Post{&overdue, &scheduled, &draft, &live} {
		require.NoError(t, db.Create(p).Error)
	}

	promoted, err := PromoteOverduePosts(db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, promoted)

	published := func(id uint) bool {
		var p database.Post
		require.NoError(t, db.First(&p, id).Error)
		return p.Published
	}
	assert.True(t, published(overdue.ID))
	assert.False(t, published(scheduled.ID))
	assert.False(t, published(draft.ID))
	assert.True(t, published(live.ID))
}

func TestPromoteOverduePostsNoCandidates(t *testing.T) {
	db := newTestDB(t)

	promoted, err := PromoteOverduePosts(db, time.Now())
	require.NoError(t, err)
	assert.Zero(t, promoted)
}

func TestPromoteOverdueKeepsScheduledTime(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	past := now.Add(-30 * time.Minute).Truncate(time.Second)

	post := database.Post{Title: "t", Slug: "t", Category: "ai", PublishedAt: &past}
	require.NoError(t, db.Create(&post).Error)

	_, err := PromoteOverduePosts(db, now)
	require.NoError(t, err)

	var got database.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	require.NotNil(t, got.PublishedAt)
	// promotion flips the flag but keeps the operator's chosen time
	assert.WithinDuration(t, past, *got.PublishedAt, time.Second)
}
