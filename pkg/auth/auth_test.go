package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-123"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, "catalog", time.Hour)

	token, expiresAt, err := m.GenerateAdminToken("admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.True(t, claims.IsAdmin())
	assert.NotEqual(t, [16]byte{}, [16]byte(claims.JTI))
	assert.Equal(t, expiresAt, claims.ExpiresAt)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, "catalog", time.Hour)
	token, _, err := m.GenerateAdminToken("admin")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret-key-that-is-long-enough", "catalog", time.Hour)
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTManager(testSecret, "someone-else", time.Hour)
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewJWTManager(testSecret, "catalog", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "admin", "role": AdminRole, "iss": "catalog",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ValidateToken(s)
		assert.Error(t, err)
	})

	t.Run("empty secret cannot sign", func(t *testing.T) {
		_, _, err := NewJWTManager("", "catalog", time.Hour).GenerateAdminToken("admin")
		assert.Error(t, err)
	})
}

func TestPasswordVerifier(t *testing.T) {
	v, err := NewPasswordVerifier("hunter2", "")
	require.NoError(t, err)
	assert.True(t, v.Verify("hunter2"))
	assert.False(t, v.Verify("hunter3"))
	assert.False(t, v.Verify(""))

	hash, err := HashPassword("from-hash")
	require.NoError(t, err)
	v, err = NewPasswordVerifier("ignored", hash)
	require.NoError(t, err)
	assert.True(t, v.Verify("from-hash"))
	assert.False(t, v.Verify("ignored"))

	_, err = NewPasswordVerifier("", "")
	assert.Error(t, err)
	_, err = NewPasswordVerifier("", "not-a-bcrypt-hash")
	assert.Error(t, err)
}

func TestExtractTokenFromAuthHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def", "abc.def", false},
		{"bearer abc.def", "abc.def", false},
		{"", "", true},
		{"Basic dXNlcg==", "", true},
		{"Bearer", "", true},
		{"Bearer   ", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractTokenFromAuthHeader(tt.header)
		if tt.wantErr {
			assert.Error(t, err, tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractTokenFromRequest(r)
	assert.Error(t, err)

	r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "from-cookie"})
	got, err := ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", got)

	r.Header.Set("Authorization", "Bearer from-header")
	got, err = ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "from-header", got)

	// malformed header falls back to the cookie
	r.Header.Set("Authorization", "Token nope")
	got, err = ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", got)
}

func TestRequireAdmin(t *testing.T) {
	m := NewJWTManager(testSecret, "catalog", time.Hour)
	token, _, err := m.GenerateAdminToken("ops")
	require.NoError(t, err)

	var seen *Claims
	handler := RequireAdmin(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("bad token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "ops", seen.Subject)
	})
}
