package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/smartlinks/internal/auth"
)

type tokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// requireRole rejects requests without a bearer token that verifies and
// carries role.
func requireRole(tokens tokenVerifier, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, r, auth.ErrUnauthorized)
				return
			}

			principal, err := tokens.Verify(token)
			if err != nil {
				httplog.LogEntrySetField(r.Context(), "auth_err", slog.StringValue(err.Error()))
				writeError(w, r, auth.ErrUnauthorized)
				return
			}

			httplog.LogEntrySetField(r.Context(), "subject", slog.StringValue(principal.Subject))

			if err := principal.RequireRole(role); err != nil {
				writeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
