package middleware

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"stagepass/session"
)

type contextKey string

// IdentityKey holds the authenticated user's email in the request context.
const IdentityKey contextKey = "identity"

// Auth authenticates requests by resolving the opaque session token from the
// Authorization header against the session registry.
type Auth struct {
	Sessions *session.Registry
}

func NewAuth(sessions *session.Registry) *Auth {
	return &Auth{Sessions: sessions}
}

func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := r.Header.Get("Authorization")
		if token == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		identity, ok := a.Sessions.Resolve(r.Context(), token)
		if !ok {
			http.Error(w, "Session expired, please login again", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), IdentityKey, identity)
		next(w, r.WithContext(ctx), ps)
	}
}

// Identity pulls the authenticated email out of the request context.
func Identity(r *http.Request) string {
	id, _ := r.Context().Value(IdentityKey).(string)
	return id
}
