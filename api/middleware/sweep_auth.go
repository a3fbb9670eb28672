package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/storehubhq/storehub-backend/api/responses"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// SweepAuth guards the internal sweep trigger with a shared bearer secret.
// An empty configured secret leaves the endpoint open, which is only
// acceptable in local development.
func SweepAuth(secret string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				if logg != nil {
					logg.Warn(ctx, "sweep trigger rejected; bad bearer secret")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid sweep credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
