package handlers

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/middleware"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/Madhav-Gupta-28/storefront-backend-go/utils"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignUp handles user registration
func (h *Handler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx := c.Request().Context()
	if _, err := h.Users.FindByEmail(ctx, req.Email); err == nil {
		return jsonError(c, http.StatusConflict, "Email already registered")
	} else if !errors.Is(err, database.ErrNotFound) {
		log.Printf("signup lookup failed: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Internal Server Error")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to process password")
	}

	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      models.RoleCustomer,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return jsonError(c, http.StatusConflict, "Email already registered")
		}
		log.Printf("signup insert failed: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to create user")
	}

	token, err := h.issueToken(c, user.ID.Hex(), models.RoleCustomer)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to generate token")
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":     "User registered successfully.",
		"user":        user,
		"accessToken": token,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Email and password are required.")
	}

	user, err := h.Users.FindByEmail(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("login lookup failed: %v", err)
			return jsonError(c, http.StatusInternalServerError, "Internal Server Error")
		}
		return jsonError(c, http.StatusUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return jsonError(c, http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.issueToken(c, user.ID.Hex(), models.RoleCustomer)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to generate token")
	}

	user.Password = ""
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Logged in successfully.",
		"user":        user,
		"accessToken": token,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	h.clearTokenCookie(c, middleware.TokenCookieName)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

// AdminLogin checks the configured console credentials. There is no admin
// user document; the token only carries the admin role.
func (h *Handler) AdminLogin(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Email and password are required.")
	}

	if h.Settings.AdminEmail == "" || h.Settings.AdminPassword == "" ||
		!constantTimeEqual(req.Email, h.Settings.AdminEmail) ||
		!constantTimeEqual(req.Password, h.Settings.AdminPassword) {
		return jsonError(c, http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.issueToken(c, "", models.RoleAdmin)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Admin logged in successfully.",
		"accessToken": token,
	})
}

func (h *Handler) AdminLogout(c echo.Context) error {
	h.clearTokenCookie(c, middleware.AdminCookieName)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

// issueToken signs a token and also sets it as the httpOnly cookie for its
// role.
func (h *Handler) issueToken(c echo.Context, userID, role string) (string, error) {
	token, err := utils.GenerateJWT(h.Settings.TokenSecret, userID, role, h.Settings.TokenTTL)
	if err != nil {
		return "", err
	}
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName(role),
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Settings.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Settings.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

func (h *Handler) clearTokenCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.Settings.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func tokenCookieName(role string) string {
	if role == models.RoleAdmin {
		return middleware.AdminCookieName
	}
	return middleware.TokenCookieName
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
