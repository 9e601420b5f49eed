package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimahgelora/korpri/models"
)

var testKey = []byte("test-signing-key")

func signedToken(t *testing.T, key []byte, role string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		AdminID: "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
		Email:   "ops@korprirun.app",
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func doRequest(token string, handlers ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(handlers) - 1; i >= 0; i-- {
		h = handlers[i](h)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestJWT(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		rec := doRequest("", JWT(testKey))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest("not-a-token", JWT(testKey))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token := signedToken(t, []byte("other-key"), models.RoleAdmin, time.Now().Add(time.Hour))
		rec := doRequest(token, JWT(testKey))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signedToken(t, testKey, models.RoleAdmin, time.Now().Add(-time.Minute))
		rec := doRequest(token, JWT(testKey))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes", func(t *testing.T) {
		token := signedToken(t, testKey, models.RoleStaff, time.Now().Add(time.Hour))
		rec := doRequest(token, JWT(testKey))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("staff role is rejected", func(t *testing.T) {
		token := signedToken(t, testKey, models.RoleStaff, time.Now().Add(time.Hour))
		rec := doRequest(token, JWT(testKey), RequireAdmin)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin role passes", func(t *testing.T) {
		token := signedToken(t, testKey, models.RoleAdmin, time.Now().Add(time.Hour))
		rec := doRequest(token, JWT(testKey), RequireAdmin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
