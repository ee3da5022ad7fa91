package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yatube/internal/logging"
	"yatube/internal/models"
)

// handlerFunc is a request handler that receives the caller's identity
// explicitly. user is nil for anonymous requests.
type handlerFunc func(w http.ResponseWriter, r *http.Request, user *models.User)

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

const maxRequestIDLen = 128

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// requestID returns the client's X-Request-ID when it is short and plain,
// otherwise a fresh uuid.
func requestID(r *http.Request) string {
	id := r.Header.Get("X-Request-ID")
	if id == "" || len(id) > maxRequestIDLen || !requestIDPattern.MatchString(id) {
		return uuid.NewString()
	}
	return id
}

// logRequests tags each request with an id, recovers panics and logs one
// line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := requestID(r)
		w.Header().Set("X-Request-ID", reqID)
		ctx := logging.WithRequestID(r.Context(), reqID)
		r = r.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error(ctx, "panic serving request", zap.Any("panic", p), zap.String("path", r.URL.Path))
				if !rec.wroteHeader {
					http.Error(rec, "internal server error", http.StatusInternalServerError)
				}
			}
			s.logger.Info(ctx, "http request",
				zap.String("method", r.Method),
				zap.String("uri", r.URL.RequestURI()),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		}()
		next.ServeHTTP(rec, r)
	})
}

// withUser resolves the session identity once and hands it to next.
func (s *Server) withUser(next handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		r = r.WithContext(contextWithUser(r.Context(), user))
		next(w, r, user)
	}
}

// requireAuth is withUser for pages that need a logged-in user. Anonymous
// callers go to the login page with the requested path in "next".
func (s *Server) requireAuth(next handlerFunc) http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		if user == nil {
			http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next(w, r, user)
	})
}

func (s *Server) currentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(s.auth.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	ctx := r.Context()
	sess, err := s.store.GetSession(ctx, cookie.Value)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn(ctx, "session lookup failed", zap.Error(err))
		}
		return nil
	}
	if !sess.Active(s.now()) {
		return nil
	}
	user, err := s.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil
	}
	return user
}

func loginURL(next string) string {
	// keep slashes readable, as in /auth/login/?next=/new/
	return "/auth/login/?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// safeNext returns next when it is a local path, otherwise "/".
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func contextWithUser(ctx context.Context, user *models.User) context.Context {
	if user == nil {
		return ctx
	}
	return logging.WithUsername(ctx, user.Username)
}
