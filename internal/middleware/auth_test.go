package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/ahmadqo/club-certificate-engine/internal/utils"
)

const secret = "middleware-secret"

func protected(roles ...string) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", GetUserIDFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
	if len(roles) > 0 {
		return Authenticate(secret)(RequireRole(roles...)(final))
	}
	return Authenticate(secret)(final)
}

func call(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, role string) string {
	t.Helper()
	pair, err := utils.GenerateTokenPair(model.JWTClaims{UserID: "user-1", Role: role}, secret, 1, 1)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token(t, "coach"), http.StatusNoContent},
		{"lowercase scheme", "bearer " + token(t, "coach"), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(protected(), tt.header)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := call(protected(), "Bearer "+token(t, "coach"))
	assert.Equal(t, "user-1", rec.Header().Get("X-User"))
}

func TestRequireRole(t *testing.T) {
	h := protected(string(model.RoleAdmin), string(model.RoleOrganizer))

	assert.Equal(t, http.StatusNoContent, call(h, "Bearer "+token(t, "admin")).Code)
	assert.Equal(t, http.StatusNoContent, call(h, "Bearer "+token(t, "ORGANIZER")).Code)
	assert.Equal(t, http.StatusForbidden, call(h, "Bearer "+token(t, "coach")).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, "Bearer "+token(t, "")).Code)
}
