package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileUpdateRequest struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
}

// GetUserProfile retrieves the user's profile
func (h *Handler) GetUserProfile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.FindByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "User not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUserProfile updates the user's profile information
func (h *Handler) UpdateUserProfile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProfileUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	err := h.Users.UpdateProfile(ctx, userID, strings.TrimSpace(req.Name), strings.TrimSpace(req.PhoneNumber))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "User not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to update profile")
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated successfully"})
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) GetUserAddresses(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.FindByID(c.Request().Context(), userID)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "User not found")
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	return c.JSON(http.StatusOK, user.Addresses)
}

// AddUserAddress adds an address, or replaces the one with the same id.
func (h *Handler) AddUserAddress(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var address models.Address
	if err := bindAndValidate(c, &address); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid address data: "+err.Error())
	}
	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}

	if err := h.Users.SaveAddress(c.Request().Context(), userID, address); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "User not found")
		}
		log.Printf("save address for %s: %v", userID.Hex(), err)
		return jsonError(c, http.StatusInternalServerError, "Failed to add address")
	}
	return c.JSON(http.StatusOK, address)
}

func (h *Handler) UpdateUserAddress(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}
	addressID, err := paramObjectID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid address ID")
	}

	var address models.Address
	if err := bindAndValidate(c, &address); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	address.ID = addressID

	if err := h.Users.UpdateAddress(c.Request().Context(), userID, address); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Address not found")
		}
		log.Printf("update address %s: %v", addressID.Hex(), err)
		return jsonError(c, http.StatusInternalServerError, "Failed to update address")
	}
	return c.JSON(http.StatusOK, address)
}

// DeleteUserAddress deletes an address
func (h *Handler) DeleteUserAddress(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}
	addressID, err := paramObjectID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid address ID")
	}

	if err := h.Users.DeleteAddress(c.Request().Context(), userID, addressID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Address not found or already deleted")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to delete address")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Address deleted successfully"})
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		log.Printf("list users: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid user ID")
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "User not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
