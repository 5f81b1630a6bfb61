// Package site holds the HTML-facing handlers: the public reader pages
// and the authenticated dashboard.
package site

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"prensa/autogen"
	"prensa/database"
	"prensa/logger"
	"prensa/templates"
)

type contextKey string

const (
	AuthenticatedUserContextKey      = contextKey("authenticated_user")
	AuthenticatedUserTokenCookieName = "prensa_session_token"
)

var (
	log       = logger.NewNop()
	generator *autogen.Generator
)

// Configure wires the package-level collaborators. Called once from main.
func Configure(l *logger.Logger, gen *autogen.Generator) {
	log = l.With("component", "site")
	generator = gen
}

func getSignedInUserOrNil(r *http.Request) *database.AdminUser {
	user, _ := r.Context().Value(AuthenticatedUserContextKey).(*database.AdminUser)
	return user
}

func layoutProps(r *http.Request, title string) templates.LayoutProps {
	props := templates.LayoutProps{Title: title}
	if user := getSignedInUserOrNil(r); user != nil {
		props.CurrentUser = user.Username
	}
	return props
}

func generateAuthToken() (string, error) {
	const tokenLength = 32
	tokenBytes := make([]byte, tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthenticatedUserTokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   AuthenticatedUserTokenCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func UserSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		if getSignedInUserOrNil(r) != nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		render(w, templates.SignIn(layoutProps(r, "Acceder")))
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	var admin database.AdminUser
	result := database.GetDB().Where(&database.AdminUser{Username: username}).First(&admin)
	if result.Error != nil {
		http.Error(w, "Invalid username. You're trying to sign in, but perhaps you still need to sign up?", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	token, err := generateAuthToken()
	if err != nil {
		http.Error(w, "Error signing in", http.StatusInternalServerError)
		return
	}

	admin.SessionToken = token
	database.GetDB().Save(&admin)

	setSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func UserSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		if getSignedInUserOrNil(r) != nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		render(w, templates.SignUp(layoutProps(r, "Crear cuenta")))
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error creating account: "+err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := generateAuthToken()
	if err != nil {
		http.Error(w, "Error creating account: "+err.Error(), http.StatusInternalServerError)
		return
	}

	newAdmin := database.AdminUser{Username: username, PasswordHash: passwordHash, SessionToken: token}
	result := database.GetDB().Create(&newAdmin)
	if result.Error != nil {
		http.Error(w, "Error creating account: "+result.Error.Error(), http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func UserLogout(w http.ResponseWriter, r *http.Request) {
	// rotate the stored token so the old cookie value stops resolving
	if user := getSignedInUserOrNil(r); user != nil {
		if token, err := generateAuthToken(); err == nil {
			database.GetDB().Model(user).Update("session_token", token)
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// TryPutUserInContextMiddleware resolves the session cookie to a user, if
// any, without requiring one.
func TryPutUserInContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AuthenticatedUserTokenCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		var user database.AdminUser
		result := database.GetDB().Where(&database.AdminUser{SessionToken: cookie.Value}).First(&user)
		if result.Error != nil {
			clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), AuthenticatedUserContextKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthProtectedMiddleware gates the dashboard routes.
func AuthProtectedMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getSignedInUserOrNil(r) == nil {
			http.Redirect(w, r, "/signin", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
