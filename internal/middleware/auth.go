package middleware

import (
	"net/http"
	"strings"

	"github.com/coinbridge/checkout-gateway/internal/auth"
	"github.com/coinbridge/checkout-gateway/internal/handler"
)

// Auth guards the merchant admin endpoints with a bearer JWT.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithMerchantID(r.Context(), claims.MerchantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
