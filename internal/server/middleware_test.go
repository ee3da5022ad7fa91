package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/new/", loginURL("/new/"))
	assert.Equal(t, "/auth/login/?next=/leo/3/edit/", loginURL("/leo/3/edit/"))
	assert.Equal(t, "/auth/login/?next=/%3Fpage%3D2", loginURL("/?page=2"))
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                      "/",
		"/new/":                 "/new/",
		"/leo/1/edit/?x=1":      "/leo/1/edit/?x=1",
		"//evil.example/":       "/",
		"/\\evil.example/":      "/",
		"https://evil.example/": "/",
		"relative/path":         "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestLogRequests_RecoversPanic(t *testing.T) {
	e := newTestEnv(t)
	h := e.srv.logRequests(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	e.log.AssertLogged(t, zapcore.ErrorLevel, "panic serving request")
}

// headerCounter counts WriteHeader calls reaching the underlying writer.
type headerCounter struct {
	*httptest.ResponseRecorder
	calls int
}

func (h *headerCounter) WriteHeader(code int) {
	h.calls++
	h.ResponseRecorder.WriteHeader(code)
}

func TestLogRequests_PanicAfterWrite(t *testing.T) {
	e := newTestEnv(t)
	h := e.srv.logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("partial"))
		panic("late boom")
	}))

	w := &headerCounter{ResponseRecorder: httptest.NewRecorder()}
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, w.calls)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "partial", w.Body.String())
	e.log.AssertLogged(t, zapcore.ErrorLevel, "panic serving request")
}

func TestRequestID_Sanitized(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"plain", "req-42", true},
		{"uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"control chars", "abc\x00def", false},
		{"spaces", "a b", false},
		{"markup", "<script>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("X-Request-ID", tt.header)
			got := requestID(r)
			if tt.keep {
				assert.Equal(t, tt.header, got)
				return
			}
			assert.NotEqual(t, tt.header, got)
			assert.Len(t, got, 36)
		})
	}
}

func TestLoginLimiter(t *testing.T) {
	assert.Nil(t, newLoginLimiter(0, 5))
	var disabled *loginLimiter
	assert.True(t, disabled.allow(httptest.NewRequest(http.MethodPost, "/", nil)))

	l := newLoginLimiter(1, 1)
	a := httptest.NewRequest(http.MethodPost, "/", nil)
	a.RemoteAddr = "10.0.0.1:5000"
	b := httptest.NewRequest(http.MethodPost, "/", nil)
	b.RemoteAddr = "10.0.0.2:5000"

	assert.True(t, l.allow(a))
	assert.False(t, l.allow(a))
	assert.True(t, l.allow(b), "limits are per client")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", clientIP(r))
	r.RemoteAddr = "unix"
	assert.Equal(t, "unix", clientIP(r))
}
