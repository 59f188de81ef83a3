package auth

import (
	"net/http"
	"strings"

	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	"github.com/ledgerkeep/ledgerkeep/internal/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/token"
)

// RequireAccount validates the Bearer access credential and attaches the
// actor to the request context. Requests without a valid credential get 401.
func RequireAccount(signer *token.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				httpx.Error(w, http.StatusUnauthorized, "missing access token")
				return
			}
			claims, err := signer.VerifyAccess(raw)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "invalid or expired access token")
				return
			}
			ctx := shared.ContextWithActor(r.Context(), shared.Actor{
				AccountID: claims.AccountID,
				Username:  claims.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
