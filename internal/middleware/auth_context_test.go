package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraxichu/goteo/internal/ports/auth"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token == "good" {
		return auth.Claims{UserID: "nurse-7"}, nil
	}
	return auth.Claims{}, errors.New("rejected")
}

func serve(t *testing.T, opts AuthOptions, req *http.Request) (*httptest.ResponseRecorder, auth.Claims, bool) {
	t.Helper()
	var (
		claims auth.Claims
		ok     bool
	)
	h := AuthContext(opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok = GetClaims(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, claims, ok
}

func TestAuthContext_DebugHeaderOnlyWithoutVerifier(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, " u-1 ")

	_, claims, ok := serve(t, AuthOptions{}, req)
	require.True(t, ok)
	assert.Equal(t, "u-1", claims.UserID)

	_, _, ok = serve(t, AuthOptions{Verifier: stubVerifier{}}, req)
	assert.False(t, ok)
}

func TestAuthContext_BearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")

	_, claims, ok := serve(t, AuthOptions{Verifier: stubVerifier{}}, req)
	require.True(t, ok)
	assert.Equal(t, "nurse-7", claims.UserID)
	assert.False(t, claims.Anonymous)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Authorization", "Bearer nope")
	_, _, ok = serve(t, AuthOptions{Verifier: stubVerifier{}}, bad)
	assert.False(t, ok)
}

func TestAuthContext_AnonymousCookie(t *testing.T) {
	rec, claims, ok := serve(t, AuthOptions{AllowAnonymous: true}, httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, ok)
	assert.True(t, claims.Anonymous)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AnonymousCookieName, cookies[0].Name)
	assert.Equal(t, claims.UserID, cookies[0].Value)

	// la misma cookie devuelve el mismo usuario y no se vuelve a setear
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(cookies[0])
	rec, claims2, ok := serve(t, AuthOptions{AllowAnonymous: true}, again)
	require.True(t, ok)
	assert.Equal(t, claims.UserID, claims2.UserID)
	assert.Empty(t, rec.Result().Cookies())
}

func TestUserID_EmptyWithoutClaims(t *testing.T) {
	assert.Equal(t, "", UserID(context.Background()))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "tok", bearerToken("Bearer  tok "))
}
