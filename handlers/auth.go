package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/fatimahgelora/korpri/middleware"
	"github.com/fatimahgelora/korpri/models"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signin validates staff credentials against admin_users and returns a JWT
// valid for 24 hours.
func (h *Handler) Signin(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if creds.Email == "" || creds.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	admin := &models.AdminUser{}
	err := h.db.NewSelect().Model(admin).
		Where("email = ?", creds.Email).
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(creds.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect email or password")
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	claims := &mw.Claims{
		AdminID: admin.ID.String(),
		Email:   admin.Email,
		Nama:    admin.Nama,
		Role:    admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token": tokenString,
		"nama":  admin.Nama,
		"role":  admin.Role,
	})
}
