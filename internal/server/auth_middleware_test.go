package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/server/authctx"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func accessClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":        "7",
		"email":      "user@example.com",
		"role":       role,
		"token_type": "access",
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuthMiddlewareSetsCurrentUser(t *testing.T) {
	var got *authctx.CurrentUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = authctx.FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/branches", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, accessClaims("manager")))
	rec := httptest.NewRecorder()
	AuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "user@example.com", got.Email)
	assert.Equal(t, domain.RoleManager, got.Role)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	mw := AuthMiddleware(testSecret)(next)

	cases := []struct {
		name  string
		setup func(r *http.Request, t *testing.T)
	}{
		{"missing header", func(r *http.Request, t *testing.T) {}},
		{"not bearer", func(r *http.Request, t *testing.T) {
			r.Header.Set("Authorization", "Basic abc")
		}},
		{"bad signature", func(r *http.Request, t *testing.T) {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims("manager"))
			signed, err := token.SignedString([]byte("other-secret"))
			require.NoError(t, err)
			r.Header.Set("Authorization", "Bearer "+signed)
		}},
		{"expired", func(r *http.Request, t *testing.T) {
			claims := accessClaims("manager")
			claims["exp"] = time.Now().Add(-time.Hour).Unix()
			r.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		}},
		{"wrong token type", func(r *http.Request, t *testing.T) {
			claims := accessClaims("manager")
			claims["token_type"] = "refresh"
			r.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		}},
		{"non-numeric subject", func(r *http.Request, t *testing.T) {
			claims := accessClaims("manager")
			claims["sub"] = "abc"
			r.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/branches", nil)
			tc.setup(req, t)
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	ran := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { ran = true })
	mw := RequirePermission(domain.PermApproveAdvance)(next)

	serve := func(user *authctx.CurrentUser) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/advance-requests/1/approve", nil)
		if user != nil {
			req = req.WithContext(authctx.WithCurrentUser(req.Context(), *user))
		}
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		return rec
	}

	// no user in context
	rec := serve(nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ran)

	// staff cannot approve advances
	rec = serve(&authctx.CurrentUser{ID: 1, Role: domain.RoleStaff})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran)

	// accountants can
	rec = serve(&authctx.CurrentUser{ID: 2, Role: domain.RoleAccountant})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
}
