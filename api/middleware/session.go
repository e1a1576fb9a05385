package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/pizzeria/api/responses"
	"github.com/angelmondragon/pizzeria/internal/storefront"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

const SessionIDHeader = "X-Session-Id"

type sessionResolver interface {
	Get(ctx context.Context, id string) (*storefront.Session, error)
}

// Session resolves the shopper's storefront session from the X-Session-Id
// header, opening a new one when the header is missing or unknown. The
// session id in use is echoed back in the same header.
func Session(sessions sessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			session, err := sessions.Get(ctx, strings.TrimSpace(r.Header.Get(SessionIDHeader)))
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			w.Header().Set(SessionIDHeader, session.ID())
			if logg != nil {
				ctx = logg.WithSessionID(ctx, session.ID())
			}
			next.ServeHTTP(w, r.WithContext(WithSession(ctx, session)))
		})
	}
}
