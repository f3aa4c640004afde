package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartLineRequest struct {
	ProductID string             `json:"productId" validate:"required"`
	Size      models.ProductSize `json:"size" validate:"required"`
}

type CartQuantityRequest struct {
	ProductID string             `json:"productId" validate:"required"`
	Size      models.ProductSize `json:"size" validate:"required"`
	Quantity  *int               `json:"quantity" validate:"required"`
}

// CartLine is a cart item joined with the current catalog data.
type CartLine struct {
	ProductID primitive.ObjectID `json:"product"`
	Name      string             `json:"name"`
	Price     float64            `json:"price"`
	Image     string             `json:"image,omitempty"`
	Size      models.ProductSize `json:"size"`
	Quantity  int                `json:"quantity"`
}

func (h *Handler) GetCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "User not found")
	}

	ids := make([]primitive.ObjectID, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		ids = append(ids, item.ProductID)
	}
	products, err := h.Products.FindByIDs(ctx, ids)
	if err != nil {
		log.Printf("cart products for %s: %v", userID.Hex(), err)
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch cart")
	}

	lines := make([]CartLine, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		product, found := products[item.ProductID]
		if !found {
			// The product was removed from the catalog after it was carted.
			continue
		}
		line := CartLine{
			ProductID: item.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Size:      item.Size,
			Quantity:  item.Quantity,
		}
		if len(product.Images) > 0 {
			line.Image = product.Images[0]
		}
		lines = append(lines, line)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *Handler) AddToCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CartLineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Product ID and size are required")
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}
	if !req.Size.Valid() {
		return jsonError(c, http.StatusBadRequest, "Invalid size")
	}

	ctx := c.Request().Context()
	product, err := h.Products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Product not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch product")
	}
	if !product.HasSize(req.Size) {
		return jsonError(c, http.StatusBadRequest, "Size not available for this product")
	}

	if err := h.Users.AddToCart(ctx, userID, productID, req.Size); err != nil {
		return h.cartError(c, userID, err)
	}
	return h.writeCart(c, userID)
}

// UpdateCartQuantity sets a line's quantity; zero removes the line.
func (h *Handler) UpdateCartQuantity(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CartQuantityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if *req.Quantity < 0 {
		return jsonError(c, http.StatusBadRequest, "Quantity cannot be negative")
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}

	err = h.Users.SetCartQuantity(c.Request().Context(), userID, productID, req.Size, *req.Quantity)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Item not found in cart")
		}
		return h.cartError(c, userID, err)
	}
	return h.writeCart(c, userID)
}

func (h *Handler) RemoveFromCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CartLineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Product ID and size are required")
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}

	if err := h.Users.RemoveFromCart(c.Request().Context(), userID, productID, req.Size); err != nil {
		return h.cartError(c, userID, err)
	}
	return h.writeCart(c, userID)
}

func (h *Handler) ClearCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Users.ClearCart(c.Request().Context(), userID); err != nil {
		return h.cartError(c, userID, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"cartItems": []models.CartItem{}})
}

// writeCart answers with the stored cart lines after a mutation.
func (h *Handler) writeCart(c echo.Context, userID primitive.ObjectID) error {
	user, err := h.Users.FindByID(c.Request().Context(), userID)
	if err != nil {
		return h.cartError(c, userID, err)
	}
	items := user.CartItems
	if items == nil {
		items = []models.CartItem{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"cartItems": items})
}

func (h *Handler) cartError(c echo.Context, userID primitive.ObjectID, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "User not found")
	}
	log.Printf("cart update for %s: %v", userID.Hex(), err)
	return jsonError(c, http.StatusInternalServerError, "Failed to update cart")
}
