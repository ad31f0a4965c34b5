package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cannotCSharp4Real/make-coffee-ph/helper"
	"github.com/cannotCSharp4Real/make-coffee-ph/models"
)

// Context keys to store caller identity
type contextKey string

const (
	UidKey     contextKey = "uid"
	EmailKey   contextKey = "email"
	RoleKey    contextKey = "role"
	GuestIDKey contextKey = "guest_id"
)

const guestCookieName = "guest_id"

// Authentication rejects requests without a valid Bearer token and stores
// the caller's identity in the request context.
func Authentication(tm *helper.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := bearerClaims(tm, r)
			if err != nil {
				helper.RespondError(w, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// AdminOnly requires an authenticated caller with the admin role. Runs after
// Authentication.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(RoleKey).(string)
		if role != models.RoleAdmin {
			helper.RespondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Identity resolves the cart owner: an authenticated user when a valid
// Bearer token is present, otherwise an opaque guest cookie, issued here on
// first contact with a 7-day expiry.
func Identity(tm *helper.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				claims, err := bearerClaims(tm, r)
				if err != nil {
					helper.RespondError(w, http.StatusUnauthorized, err.Error())
					return
				}
				next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
				return
			}

			guestID := ""
			if c, err := r.Cookie(guestCookieName); err == nil && c.Value != "" {
				guestID = c.Value
			} else {
				guestID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     guestCookieName,
					Value:    guestID,
					Path:     "/",
					Expires:  time.Now().Add(models.GuestCartTTL),
					HttpOnly: true,
				})
			}

			ctx := context.WithValue(r.Context(), GuestIDKey, guestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerClaims(tm *helper.TokenManager, r *http.Request) (*helper.SignedDetails, error) {
	clientToken := r.Header.Get("Authorization")
	if clientToken == "" {
		return nil, errNoAuthHeader
	}

	tokenParts := strings.Split(clientToken, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, errBadAuthFormat
	}

	return tm.ValidateToken(tokenParts[1])
}

var (
	errNoAuthHeader  = &authError{"No Authorization header provided"}
	errBadAuthFormat = &authError{"Invalid Authorization format"}
)

type authError struct{ msg string }

func (e *authError) Error() string { return e.msg }

func withClaims(ctx context.Context, claims *helper.SignedDetails) context.Context {
	ctx = context.WithValue(ctx, UidKey, claims.Uid)
	ctx = context.WithValue(ctx, EmailKey, claims.Email)
	return context.WithValue(ctx, RoleKey, claims.Role)
}

// CallerID returns the authenticated user id, if any.
func CallerID(r *http.Request) string {
	uid, _ := r.Context().Value(UidKey).(string)
	return uid
}

// GuestID returns the guest cookie identity, if any.
func GuestID(r *http.Request) string {
	gid, _ := r.Context().Value(GuestIDKey).(string)
	return gid
}
