package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/clothing-store-backend/internal/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestJWTResolver_Resolve(t *testing.T) {
	resolver := auth.NewJWTResolver(testSecret)

	t.Run("admin_token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"userId": "u-1", "isAdmin": true})

		identity, err := resolver.Resolve(token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", identity.UserID)
		assert.True(t, identity.IsAdmin)
	})

	t.Run("regular_token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"userId": "u-2"})

		identity, err := resolver.Resolve(token)
		require.NoError(t, err)
		assert.False(t, identity.IsAdmin)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "u-3"}).
			SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = resolver.Resolve(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("missing_user_claim", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"isAdmin": true})

		_, err := resolver.Resolve(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("empty_token", func(t *testing.T) {
		_, err := resolver.Resolve("")
		assert.ErrorIs(t, err, auth.ErrNoToken)
	})
}

func TestRequireAdmin(t *testing.T) {
	resolver := auth.NewJWTResolver(testSecret)

	var gotIdentity auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := auth.RequireAdmin(resolver)(next)

	tests := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{
			name:           "no_header",
			authorization:  "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not_bearer",
			authorization:  "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage_token",
			authorization:  "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "non_admin",
			authorization:  "Bearer " + signToken(t, jwt.MapClaims{"userId": "u-1"}),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "admin",
			authorization:  "Bearer " + signToken(t, jwt.MapClaims{"userId": "u-1", "isAdmin": true}),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "u-1", gotIdentity.UserID)
				assert.True(t, gotIdentity.IsAdmin)
			}
		})
	}
}
