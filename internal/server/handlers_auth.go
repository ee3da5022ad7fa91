package server

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"yatube/internal/models"
	"yatube/internal/posts"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// reservedUsernames would shadow fixed routes if used as profile paths.
var reservedUsernames = map[string]bool{
	"about": true, "auth": true, "group": true, "metrics": true, "new": true,
}

// ValidateSignup checks the signup fields and returns per-field errors.
func ValidateSignup(username, email, password string) posts.FormErrors {
	errs := posts.FormErrors{}
	switch {
	case username == "":
		errs.Add("username", "this field is required")
	case !usernamePattern.MatchString(username):
		errs.Add("username", "letters, digits and @/./+/-/_ only")
	case reservedUsernames[strings.ToLower(username)], strings.Trim(username, ".") == "":
		// dot-only names are cleaned out of request paths
		errs.Add("username", "this username is not available")
	}
	if email == "" || !strings.Contains(email, "@") {
		errs.Add("email", "enter a valid email address")
	}
	if len(password) < 8 {
		errs.Add("password", "use at least 8 characters")
	}
	return errs
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, user *models.User) {
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "signup", user, map[string]any{
			"errors":   posts.FormErrors{},
			"username": "",
			"email":    "",
		})
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	rerender := func(errs posts.FormErrors) {
		s.render(w, r, http.StatusOK, "signup", user, map[string]any{
			"errors":   errs,
			"username": username,
			"email":    email,
		})
	}

	if errs := ValidateSignup(username, email, password); len(errs) > 0 {
		rerender(errs)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.auth.BcryptCost)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	_, err = s.store.CreateUser(r.Context(), email, username, string(hash))
	switch {
	case errors.Is(err, models.ErrDuplicateUsername):
		rerender(posts.FormErrors{"username": {err.Error()}})
		return
	case errors.Is(err, models.ErrDuplicateEmail):
		rerender(posts.FormErrors{"email": {err.Error()}})
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "user registered", zap.String("username", username))
	http.Redirect(w, r, "/auth/login/", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, user *models.User) {
	next := r.FormValue("next")
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "login", user, map[string]any{
			"next":     next,
			"username": "",
			"error":    "",
		})
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	fail := func(status int, msg string) {
		s.render(w, r, status, "login", user, map[string]any{
			"next":     next,
			"username": username,
			"error":    msg,
		})
	}

	if !s.limiter.allow(r) {
		s.metrics.logins.WithLabelValues("throttled").Inc()
		fail(http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	found, err := s.store.GetUserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.serverError(w, r, err)
		return
	}
	if found == nil || bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(r.PostFormValue("password"))) != nil {
		s.metrics.logins.WithLabelValues("invalid").Inc()
		fail(http.StatusOK, models.ErrInvalidCredentials.Error())
		return
	}

	sid := uuid.NewString()
	expires := s.now().Add(s.auth.SessionTTL)
	if err := s.store.CreateSession(r.Context(), found.ID, sid, expires); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.auth.CookieName,
		Value:    sid,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.metrics.logins.WithLabelValues("ok").Inc()
	s.logger.Info(contextWithUser(r.Context(), found), "user logged in")
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.auth.CookieName); err == nil {
		if err := s.store.RevokeSession(r.Context(), cookie.Value); err != nil {
			s.logger.Warn(r.Context(), "revoke session failed", zap.Error(err))
		}
		http.SetCookie(w, &http.Cookie{Name: s.auth.CookieName, Path: "/", MaxAge: -1})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
