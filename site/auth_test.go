package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prensa/database"
)

func TestLogoutInvalidatesSessionToken(t *testing.T) {
	db := sharedDB(t)
	user := createUser(t, db, "logout-user")
	oldToken := user.SessionToken

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(context.WithValue(req.Context(), AuthenticatedUserContextKey, &user))
	rec := httptest.NewRecorder()
	UserLogout(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	// the stored token rotated, so the old cookie value is dead server-side
	var got database.AdminUser
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.NotEqual(t, oldToken, got.SessionToken)
	assert.NotEmpty(t, got.SessionToken)

	// a request still carrying the old cookie resolves to no user
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, getSignedInUserOrNil(r))
	})
	stale := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	stale.AddCookie(&http.Cookie{Name: AuthenticatedUserTokenCookieName, Value: oldToken})
	TryPutUserInContextMiddleware(next).ServeHTTP(httptest.NewRecorder(), stale)
}
