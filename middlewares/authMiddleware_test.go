package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cannotCSharp4Real/make-coffee-ph/helper"
)

func okHandler(t *testing.T, gotUID *string, gotGuest *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotUID != nil {
			*gotUID = CallerID(r)
		}
		if gotGuest != nil {
			*gotGuest = GuestID(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticationRejectsMissingOrBadTokens(t *testing.T) {
	tm := helper.NewTokenManager("test-secret")
	handler := Authentication(tm)(okHandler(t, nil, nil))

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"no bearer prefix", "sometoken"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthenticationStoresClaims(t *testing.T) {
	tm := helper.NewTokenManager("test-secret")
	token, err := tm.GenerateToken("u1", "ana@example.com", "customer")
	require.NoError(t, err)

	var uid string
	handler := Authentication(tm)(okHandler(t, &uid, nil))

	r := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", uid)
}

func TestAdminOnlyDistinguishesForbiddenFromUnauthorized(t *testing.T) {
	tm := helper.NewTokenManager("test-secret")

	customerToken, err := tm.GenerateToken("u1", "ana@example.com", "customer")
	require.NoError(t, err)
	adminToken, err := tm.GenerateToken("u2", "boss@example.com", "admin")
	require.NoError(t, err)

	handler := Authentication(tm)(AdminOnly(okHandler(t, nil, nil)))

	run := func(token string) int {
		r := httptest.NewRequest(http.MethodGet, "/admin/sales", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, run(""))
	assert.Equal(t, http.StatusForbidden, run(customerToken))
	assert.Equal(t, http.StatusOK, run(adminToken))
}

func TestIdentityIssuesGuestCookie(t *testing.T) {
	tm := helper.NewTokenManager("test-secret")

	var guestID string
	handler := Identity(tm)(okHandler(t, nil, &guestID))

	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, guestID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "guest_id", cookies[0].Name)
	assert.Equal(t, guestID, cookies[0].Value)
}

func TestIdentityReusesExistingGuestCookie(t *testing.T) {
	tm := helper.NewTokenManager("test-secret")

	var guestID string
	handler := Identity(tm)(okHandler(t, nil, &guestID))

	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.AddCookie(&http.Cookie{Name: "guest_id", Value: "g-123"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "g-123", guestID)
	assert.Empty(t, w.Result().Cookies())
}

func TestIdentityPrefersBearerToken(t *testing.T) {
	tm := helper.NewTokenManager("test-secret")
	token, err := tm.GenerateToken("u1", "ana@example.com", "customer")
	require.NoError(t, err)

	var uid, guestID string
	handler := Identity(tm)(okHandler(t, &uid, &guestID))

	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.AddCookie(&http.Cookie{Name: "guest_id", Value: "g-123"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "u1", uid)
	assert.Empty(t, guestID)
}

func TestIdentityRejectsInvalidBearerToken(t *testing.T) {
	tm := helper.NewTokenManager("test-secret")
	handler := Identity(tm)(okHandler(t, nil, nil))

	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.Header.Set("Authorization", "Bearer expired.or.garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
