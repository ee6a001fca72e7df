package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupdump/internal/domain"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("opensesame")
	require.NoError(t, err)
	assert.NotEqual(t, "opensesame", hash)

	assert.True(t, VerifyPassword(hash, "opensesame"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	p := Principal{ID: uuid.New(), Email: "alice@example.com"}

	token, err := m.Issue(p)
	require.NoError(t, err)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTokenExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Issue(Principal{ID: uuid.New(), Email: "a@b.com"})
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestTokenWrongKey(t *testing.T) {
	issuer := NewManager("secret-one", time.Hour)
	verifier := NewManager("secret-two", time.Hour)

	token, err := issuer.Issue(Principal{ID: uuid.New(), Email: "a@b.com"})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	p := Principal{ID: uuid.New(), Email: "alice@example.com"}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := PrincipalFrom(r.Context())
		require.True(t, ok)
		assert.Equal(t, p, got)
		w.WriteHeader(http.StatusOK)
	})
	handler := m.Middleware(next)

	t.Run("valid token", func(t *testing.T) {
		token, err := m.Issue(p)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
