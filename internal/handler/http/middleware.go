package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Aditya2073/agrisample/internal/apierr"
	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/rs/zerolog/log"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	sessionKey
)

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticator resolves the bearer token to the signed-in profile.
type Authenticator struct {
	auth     auth.Service
	profiles profile.Service
}

func NewAuthenticator(authSvc auth.Service, profiles profile.Service) *Authenticator {
	return &Authenticator{auth: authSvc, profiles: profiles}
}

// RequireSession validates the bearer token only. Sign-out and session lookup
// must work even when the profile behind the session is gone.
func (a *Authenticator) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithJSON(w, http.StatusUnauthorized, apierr.Body{Error: "Missing bearer token", Code: apierr.CodeUnauthorized})
			return
		}

		sess, err := a.auth.Session(r.Context(), token)
		if err != nil {
			respondWithDomainError(w, r, err, "Failed to validate session")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireActor validates the session and loads the signed-in profile.
func (a *Authenticator) RequireActor(next http.Handler) http.Handler {
	return a.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())

		actor, err := a.profiles.GetProfileByID(r.Context(), sess.UserID)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				log.Warn().Stringer("user_id", sess.UserID).Msg("Session without profile")
				respondWithJSON(w, http.StatusUnauthorized, apierr.Body{Error: "Session has no profile", Code: apierr.CodeUnauthorized})
				return
			}
			respondWithDomainError(w, r, err, "Failed to load profile")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	}))
}

func actorFromContext(ctx context.Context) *profile.Profile {
	p, _ := ctx.Value(actorKey).(*profile.Profile)
	return p
}

func sessionFromContext(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey).(*auth.Session)
	return s
}
