package server

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/models"
)

func TestValidateSignup_Username(t *testing.T) {
	tests := []struct {
		username string
		wantErr  string
	}{
		{"leo", ""},
		{"leo.tolstoy", ""},
		{"a.b+c-d_e@f", ""},
		{"", "this field is required"},
		{"has space", "letters, digits and @/./+/-/_ only"},
		{"slash/name", "letters, digits and @/./+/-/_ only"},
		{"new", "this username is not available"},
		{"About", "this username is not available"},
		{".", "this username is not available"},
		{"..", "this username is not available"},
		{"....", "this username is not available"},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			errs := ValidateSignup(tt.username, "leo@mail.com", "long-enough")
			assert.Equal(t, tt.wantErr, errs.Get("username"))
		})
	}
}

func TestSignup_DotUsernameRejected(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/auth/signup/", url.Values{
		"username": {".."},
		"email":    {"dots@mail.com"},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "this username is not available")

	_, err := e.store.GetUserByUsername(context.Background(), "..")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
