package middleware

import (
	"net/http"
	"strings"

	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/Madhav-Gupta-28/storefront-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// TokenCookieName is the httpOnly cookie carrying the customer token.
	TokenCookieName = "accessToken"
	// AdminCookieName carries the admin console token, so an admin login in
	// the same browser leaves the storefront session alone.
	AdminCookieName = "adminToken"

	ContextUserID = "userID"
	ContextRole   = "role"
)

// Protect admits customers holding a valid token and stores their id under
// ContextUserID.
func Protect(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, msg := authenticate(c, secret, TokenCookieName)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil || claims.Role != models.RoleCustomer {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized - invalid user token"})
			}

			c.Set(ContextUserID, userID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// AdminOnly admits tokens issued by the admin login.
func AdminOnly(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, msg := authenticate(c, secret, AdminCookieName)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
			}
			if claims.Role != models.RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied: admins only"})
			}

			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// authenticate returns the token claims, or nil and the message for a 401.
func authenticate(c echo.Context, secret, cookieName string) (*utils.Claims, string) {
	token := tokenFromRequest(c, cookieName)
	if token == "" {
		return nil, "Unauthorized - no token provided"
	}

	claims, err := utils.ValidateJWT(secret, token)
	if err != nil {
		return nil, "Unauthorized - invalid or expired token"
	}
	return claims, ""
}

// tokenFromRequest prefers an "Authorization: Bearer" header, then the
// named cookie.
func tokenFromRequest(c echo.Context, cookieName string) string {
	parts := strings.Fields(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}

	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
