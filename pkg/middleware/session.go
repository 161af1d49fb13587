package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ShadEl7/her-essence-website/pkg/httputil"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

// CartSessionHeader carries the shopper's cart session id. The storefront
// issues one per browser and sends it on every cart call.
const CartSessionHeader = "X-Cart-Session"

// CartSession rejects requests without a valid cart session id and stores the
// normalized id in the request context (see logger.CartSessionFromContext).
func CartSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := httputil.ParseSessionID(w, r.Header.Get(CartSessionHeader))
			if !ok {
				return
			}

			ctx := logger.WithCartSession(r.Context(), id.String())
			if l := logger.FromContext(ctx); l != slog.Default() {
				ctx = logger.NewContext(ctx, l.With(slog.String("cart_session", id.String())))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
