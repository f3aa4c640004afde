package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetCartSkipsRemovedProducts(t *testing.T) {
	userID := primitive.NewObjectID()
	kept := models.Product{ID: primitive.NewObjectID(), Name: "Tee", Price: 12.5, Images: []string{"a.jpg", "b.jpg"}}
	gone := primitive.NewObjectID()

	h := newTestHandler()
	h.Users = &mockUserStore{
		FindByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
			return &models.User{ID: id, CartItems: []models.CartItem{
				{ProductID: kept.ID, Size: models.SizeM, Quantity: 2},
				{ProductID: gone, Size: models.SizeL, Quantity: 1},
			}}, nil
		},
	}
	h.Products = &mockProductStore{
		FindByIDsFn: func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
			if len(ids) != 2 {
				t.Errorf("looked up %d products, want 2", len(ids))
			}
			return map[primitive.ObjectID]models.Product{kept.ID: kept}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/cart", nil, userID)
	if err := h.GetCart(c); err != nil {
		t.Fatal(err)
	}
	assertStatus(t, rec, http.StatusOK)

	var lines []CartLine
	decodeBody(t, rec, &lines)
	if len(lines) != 1 {
		t.Fatalf("lines = %+v, want only the existing product", lines)
	}
	got := lines[0]
	if got.Name != "Tee" || got.Price != 12.5 || got.Image != "a.jpg" || got.Quantity != 2 {
		t.Errorf("line = %+v", got)
	}
}

func TestAddToCart(t *testing.T) {
	userID := primitive.NewObjectID()
	product := &models.Product{ID: primitive.NewObjectID(), Sizes: []models.ProductSize{models.SizeS, models.SizeM}}

	tests := []struct {
		name      string
		body      interface{}
		wantCode  int
		wantAdded bool
	}{
		{"adds line", map[string]string{"productId": product.ID.Hex(), "size": "M"}, http.StatusOK, true},
		{"size not offered", map[string]string{"productId": product.ID.Hex(), "size": "XL"}, http.StatusBadRequest, false},
		{"unknown size", map[string]string{"productId": product.ID.Hex(), "size": "XS"}, http.StatusBadRequest, false},
		{"missing size", map[string]string{"productId": product.ID.Hex()}, http.StatusBadRequest, false},
		{"bad product id", map[string]string{"productId": "x", "size": "M"}, http.StatusBadRequest, false},
		{"unknown product", map[string]string{"productId": primitive.NewObjectID().Hex(), "size": "M"}, http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added := false
			h := newTestHandler()
			h.Products = &mockProductStore{
				FindByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
					if id != product.ID {
						return nil, database.ErrNotFound
					}
					return product, nil
				},
			}
			h.Users = &mockUserStore{
				AddToCartFn: func(ctx context.Context, uid, pid primitive.ObjectID, size models.ProductSize) error {
					added = true
					return nil
				},
				FindByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
					return &models.User{ID: id, CartItems: []models.CartItem{{ProductID: product.ID, Size: models.SizeM, Quantity: 1}}}, nil
				},
			}

			c, rec := newContext(http.MethodPost, "/api/cart/add", tt.body, userID)
			if err := h.AddToCart(c); err != nil {
				t.Fatal(err)
			}
			assertStatus(t, rec, tt.wantCode)
			if added != tt.wantAdded {
				t.Errorf("added = %v, want %v", added, tt.wantAdded)
			}
		})
	}
}

func TestUpdateCartQuantity(t *testing.T) {
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	tests := []struct {
		name     string
		body     map[string]interface{}
		storeErr error
		wantCode int
		wantQty  int
	}{
		{"set quantity", map[string]interface{}{"productId": productID.Hex(), "size": "M", "quantity": 3}, nil, http.StatusOK, 3},
		{"zero removes", map[string]interface{}{"productId": productID.Hex(), "size": "M", "quantity": 0}, nil, http.StatusOK, 0},
		{"negative", map[string]interface{}{"productId": productID.Hex(), "size": "M", "quantity": -1}, nil, http.StatusBadRequest, -1},
		{"missing quantity", map[string]interface{}{"productId": productID.Hex(), "size": "M"}, nil, http.StatusBadRequest, -1},
		{"line not in cart", map[string]interface{}{"productId": productID.Hex(), "size": "L", "quantity": 2}, database.ErrNotFound, http.StatusNotFound, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotQty := -1
			h := newTestHandler()
			h.Users = &mockUserStore{
				SetCartQuantityFn: func(ctx context.Context, uid, pid primitive.ObjectID, size models.ProductSize, quantity int) error {
					gotQty = quantity
					return tt.storeErr
				},
				FindByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
					return &models.User{ID: id}, nil
				},
			}

			c, rec := newContext(http.MethodPut, "/api/cart/update", tt.body, userID)
			if err := h.UpdateCartQuantity(c); err != nil {
				t.Fatal(err)
			}
			assertStatus(t, rec, tt.wantCode)
			if gotQty != tt.wantQty {
				t.Errorf("quantity passed to store = %d, want %d", gotQty, tt.wantQty)
			}
		})
	}
}

func TestClearCart(t *testing.T) {
	cleared := false
	h := newTestHandler()
	h.Users = &mockUserStore{
		ClearCartFn: func(ctx context.Context, uid primitive.ObjectID) error {
			cleared = true
			return nil
		},
	}

	c, rec := newContext(http.MethodDelete, "/api/cart/clear", nil, primitive.NewObjectID())
	if err := h.ClearCart(c); err != nil {
		t.Fatal(err)
	}
	assertStatus(t, rec, http.StatusOK)
	if !cleared {
		t.Error("ClearCart was not called")
	}
}

func TestCartRequiresUser(t *testing.T) {
	h := newTestHandler()
	c, rec := newContext(http.MethodGet, "/api/cart", nil, primitive.NilObjectID)
	if err := h.GetCart(c); err != nil {
		t.Fatal(err)
	}
	assertStatus(t, rec, http.StatusUnauthorized)
}
