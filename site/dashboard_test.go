package site

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"prensa/database"
)

// sharedDB points the package singleton at an in-memory database; the
// dashboard handlers reach for database.GetDB themselves.
func sharedDB(t *testing.T) *gorm.DB {
	t.Helper()
	database.SetPath("file:sitetests?mode=memory&cache=shared")
	return database.GetDB()
}

func createUser(t *testing.T, db *gorm.DB, username string) database.AdminUser {
	t.Helper()
	user := database.AdminUser{
		Username:     username,
		PasswordHash: []byte("irrelevant"),
		SessionToken: "token-" + username,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func postForm(t *testing.T, target string, user *database.AdminUser, params map[string]string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, AuthenticatedUserContextKey, user)
	return req.WithContext(ctx)
}

func TestEditPostUnpublishClearsPublishTime(t *testing.T) {
	db := sharedDB(t)
	user := createUser(t, db, "editor-unpublish")

	publishedAt := time.Now().Add(-time.Hour)
	post := database.Post{
		AuthorID:    user.ID,
		Title:       "Noticia en vivo",
		Slug:        "noticia-en-vivo",
		Category:    "ai",
		Published:   true,
		PublishedAt: &publishedAt,
	}
	require.NoError(t, db.Create(&post).Error)

	form := url.Values{
		"title":    {"Noticia en vivo"},
		"category": {"ai"},
		"body":     {"Texto actualizado."},
		// no "published" key: the checkbox is off
	}
	rec := httptest.NewRecorder()
	req := postForm(t, "/dashboard/post/"+fmt.Sprint(post.ID), &user,
		map[string]string{"postID": fmt.Sprint(post.ID)}, form)
	DashboardEditPost(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var got database.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.False(t, got.Published)
	// no leftover timestamp: an unpublished post is a draft again, not
	// overdue, and the overdue sweep must not pick it back up
	assert.Nil(t, got.PublishedAt)
	assert.Equal(t, StateDraft, ResolvePublishState(got, time.Now()))

	// publishing again from the form gets a fresh timestamp
	form.Set("published", "on")
	rec = httptest.NewRecorder()
	req = postForm(t, "/dashboard/post/"+fmt.Sprint(post.ID), &user,
		map[string]string{"postID": fmt.Sprint(post.ID)}, form)
	DashboardEditPost(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	require.NoError(t, db.First(&got, post.ID).Error)
	assert.True(t, got.Published)
	require.NotNil(t, got.PublishedAt)
	assert.WithinDuration(t, time.Now(), *got.PublishedAt, time.Minute)
}

func TestEditPostKeepsScheduleWhenUnpublishedStaysOff(t *testing.T) {
	db := sharedDB(t)
	user := createUser(t, db, "editor-scheduled")

	future := time.Now().Add(6 * time.Hour)
	post := database.Post{
		AuthorID:    user.ID,
		Title:       "Noticia programada",
		Slug:        "noticia-programada",
		Category:    "gadgets",
		PublishedAt: &future,
	}
	require.NoError(t, db.Create(&post).Error)

	form := url.Values{
		"title":    {"Noticia programada"},
		"category": {"gadgets"},
		"body":     {"Texto corregido antes de publicarse."},
	}
	rec := httptest.NewRecorder()
	req := postForm(t, "/dashboard/post/"+fmt.Sprint(post.ID), &user,
		map[string]string{"postID": fmt.Sprint(post.ID)}, form)
	DashboardEditPost(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	// editing a scheduled post without touching the checkbox keeps its slot
	var got database.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	require.NotNil(t, got.PublishedAt)
	assert.Equal(t, StateScheduled, ResolvePublishState(got, time.Now()))
}

func TestDashboardStats(t *testing.T) {
	now := time.Now()
	posts := []database.Post{
		{Title: "a", Published: true, PublishedAt: &now, Views: 120},
		{Title: "b", Published: true, PublishedAt: &now, Views: 30},
		{Title: "c"},
		{Title: "d", PublishedAt: &now},
	}

	stats := dashboardStats(posts)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Published)
	assert.Equal(t, 2, stats.Drafts)
	assert.EqualValues(t, 150, stats.Views)

	empty := dashboardStats(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Views)
}
