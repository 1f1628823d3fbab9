package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasmoraes/shop-api/internal/models"
)

const CookieName = "session"

const defaultTTL = 24 * time.Hour

// Service issues and validates the session credential: an HS256 token kept in
// an HttpOnly cookie and mirrored by a sessions row so logout can revoke it
// server-side.
type Service struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration
}

func CreateCookie(name string, value string, path string, expTime time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}

	return cookie
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultTTL
}

// Issue signs a session token for the user, persists it and sets the cookie.
func (s *Service) Issue(c echo.Context, userID uint) (string, error) {
	exp := time.Now().Add(s.ttl())
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"typ": "session",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("could not sign session token: %w", err)
	}

	stored := models.Session{
		Token:     signed,
		UserID:    userID,
		ExpiresAt: exp.Unix(),
		Revoked:   false,
	}
	if err := s.DB.Create(&stored).Error; err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	c.SetCookie(CreateCookie(CookieName, signed, "/", exp))
	return signed, nil
}

// Resolve returns the acting user's id for the request, or an Unauthorized
// HTTPError if the cookie is missing, malformed, revoked or expired.
func (s *Service) Resolve(c echo.Context) (uint, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing session cookie")
	}

	token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid session claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "session" {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "not a session token")
	}
	subRaw, ok := claims["sub"].(float64)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
	}

	var stored models.Session
	if err := s.DB.Where("token = ?", cookie.Value).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, echo.NewHTTPError(http.StatusUnauthorized, "unknown session")
		}
		return 0, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if stored.Revoked {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "session revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}

	return uint(subRaw), nil
}

// Revoke marks the request's session row revoked and expires the cookie.
func (s *Service) Revoke(c echo.Context) error {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session cookie")
	}

	result := s.DB.Model(&models.Session{}).
		Where("token = ?", cookie.Value).
		Update("revoked", true)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}

	c.SetCookie(CreateCookie(CookieName, "", "/", time.Now().Add(-1*time.Hour)))
	return nil
}

// Middleware gates a route group: every request must carry a valid session.
func (s *Service) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := s.Resolve(c)
		if err != nil {
			return err
		}
		c.Set("userID", userID)
		return next(c)
	}
}

// UserID reads the acting user set by Middleware.
func UserID(c echo.Context) (uint, error) {
	if id, ok := c.Get("userID").(uint); ok {
		return id, nil
	}
	return 0, echo.NewHTTPError(http.StatusUnauthorized, "no authenticated user")
}
