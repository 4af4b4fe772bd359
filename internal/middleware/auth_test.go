package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbridge/checkout-gateway/internal/auth"
)

const testSecret = "test-secret"

func protected(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var gotMerchant string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMerchant, _ = auth.MerchantIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Auth(testSecret)(next), &gotMerchant
}

func TestAuth(t *testing.T) {
	h, gotMerchant := protected(t)

	token, err := auth.GenerateToken("merchant-1", testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "merchant-1", *gotMerchant)
}

func TestAuth_Rejections(t *testing.T) {
	expired, err := auth.GenerateToken("merchant-1", testSecret, -time.Hour)
	require.NoError(t, err)
	wrongSecret, err := auth.GenerateToken("merchant-1", "other-secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic dXNlcjpwYXNz"},
		{"empty bearer token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong secret", "Bearer " + wrongSecret},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, gotMerchant := protected(t)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, *gotMerchant)
		})
	}
}
