package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/users"
)

type ctxKey struct{}

func withUser(ctx context.Context, u users.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// currentUser is only valid behind requireAuth.
func currentUser(r *http.Request) users.User {
	u, _ := r.Context().Value(ctxKey{}).(users.User)
	return u
}

func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(h, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			a.fail(w, r, apperr.Unauthorized("no auth token, access denied"))
			return
		}
		u, err := a.Auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			a.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			writeJSON(w, http.StatusForbidden, envelope{Message: "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
