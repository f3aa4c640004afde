package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/metrics"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/Madhav-Gupta-28/storefront-backend-go/payments"
	"github.com/Madhav-Gupta-28/storefront-backend-go/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderLineRequest struct {
	ProductID string             `json:"product" validate:"required"`
	Size      models.ProductSize `json:"size" validate:"required"`
	Quantity  int                `json:"quantity" validate:"required,min=1"`
	Price     float64            `json:"price"`
}

type PlaceOrderRequest struct {
	Products      []OrderLineRequest     `json:"products" validate:"required,min=1,dive"`
	TotalAmount   float64                `json:"totalAmount" validate:"required,gt=0"`
	Address       models.ShippingAddress `json:"address"`
	PaymentMethod models.PaymentMethod   `json:"paymentMethod"`
}

type OrderIDRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type UpdateStatusRequest struct {
	OrderID string             `json:"orderId" validate:"required"`
	Status  models.OrderStatus `json:"status" validate:"required"`
}

// orderError is a request-level failure with the status to answer with.
type orderError struct {
	status int
	msg    string
}

func (e *orderError) Error() string { return e.msg }

func badOrder(format string, args ...interface{}) error {
	return &orderError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// buildOrder prices the requested lines from the catalog and checks the
// submitted total against the server-side one.
func (h *Handler) buildOrder(ctx context.Context, userID primitive.ObjectID, req *PlaceOrderRequest, method models.PaymentMethod) (*models.Order, decimal.Decimal, error) {
	ids := make([]primitive.ObjectID, 0, len(req.Products))
	for i, line := range req.Products {
		id, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, decimal.Zero, badOrder("products[%d]: invalid product id", i)
		}
		if !line.Size.Valid() {
			return nil, decimal.Zero, badOrder("products[%d]: invalid size %q", i, line.Size)
		}
		ids = append(ids, id)
	}

	catalog, err := h.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]models.OrderItem, 0, len(req.Products))
	for i, line := range req.Products {
		product, ok := catalog[ids[i]]
		if !ok {
			return nil, decimal.Zero, &orderError{status: http.StatusNotFound, msg: fmt.Sprintf("Product %s not found", line.ProductID)}
		}
		if !product.HasSize(line.Size) {
			return nil, decimal.Zero, badOrder("Size %s not available for %s", line.Size, product.Name)
		}
		item := models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     utils.RoundPrice(product.Price),
		}
		if len(product.Images) > 0 {
			item.Image = product.Images[0]
		}
		items = append(items, item)
	}

	total := utils.OrderTotal(items, h.Settings.DeliveryCharge)
	if !utils.TotalsMatch(req.TotalAmount, total) {
		return nil, decimal.Zero, badOrder("Order total does not match: expected %s", total.StringFixed(2))
	}

	order := &models.Order{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		Items:         items,
		TotalAmount:   total.InexactFloat64(),
		Address:       req.Address,
		Status:        models.OrderStatusPending,
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusPending,
	}
	return order, total, nil
}

// prepareOrder binds the checkout body and builds the priced order.
func (h *Handler) prepareOrder(c echo.Context, method models.PaymentMethod) (*models.User, *models.Order, decimal.Decimal, error) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, nil, decimal.Zero, &orderError{status: http.StatusUnauthorized, msg: "User not authenticated"}
	}

	var req PlaceOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, nil, decimal.Zero, badOrder("%s", err.Error())
	}
	if req.PaymentMethod != "" && req.PaymentMethod != method {
		return nil, nil, decimal.Zero, badOrder("paymentMethod must be %s on this endpoint", method)
	}

	ctx := c.Request().Context()
	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, decimal.Zero, &orderError{status: http.StatusNotFound, msg: "User not found"}
		}
		return nil, nil, decimal.Zero, err
	}

	order, total, err := h.buildOrder(ctx, userID, &req, method)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	return user, order, total, nil
}

func writeOrderError(c echo.Context, err error) error {
	var oe *orderError
	if errors.As(err, &oe) {
		return jsonError(c, oe.status, oe.msg)
	}
	log.Printf("place order: %v", err)
	return jsonError(c, http.StatusInternalServerError, "Failed to place order")
}

// PlaceOrderCOD places a cash on delivery order. The cart is cleared at
// once since no payment step follows.
func (h *Handler) PlaceOrderCOD(c echo.Context) error {
	user, order, _, err := h.prepareOrder(c, models.PaymentMethodCOD)
	if err != nil {
		return writeOrderError(c, err)
	}

	ctx := c.Request().Context()
	if err := h.Orders.Create(ctx, order); err != nil {
		return writeOrderError(c, err)
	}
	if err := h.Users.AttachOrder(ctx, user.ID, order.ID, true); err != nil {
		log.Printf("attach order %s to user %s: %v", order.ID.Hex(), user.ID.Hex(), err)
	}
	metrics.OrdersPlaced.WithLabelValues(string(order.PaymentMethod)).Inc()
	h.sendConfirmation(c, user, order)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// PlaceOrderStripe stores a pending order and opens a Stripe checkout for it.
func (h *Handler) PlaceOrderStripe(c echo.Context) error {
	if h.Stripe == nil {
		return jsonError(c, http.StatusServiceUnavailable, "Stripe payments are not configured")
	}
	user, order, _, err := h.prepareOrder(c, models.PaymentMethodStripe)
	if err != nil {
		return writeOrderError(c, err)
	}

	ctx := c.Request().Context()
	if err := h.Orders.Create(ctx, order); err != nil {
		return writeOrderError(c, err)
	}

	lines := make([]payments.CheckoutLine, 0, len(order.Items)+1)
	for _, item := range order.Items {
		lines = append(lines, payments.CheckoutLine{
			Name:       fmt.Sprintf("%s (%s)", item.Name, item.Size),
			UnitAmount: utils.ToMinorUnits(decimal.NewFromFloat(item.Price)),
			Quantity:   int64(item.Quantity),
		})
	}
	if h.Settings.DeliveryCharge.IsPositive() {
		lines = append(lines, payments.CheckoutLine{
			Name:       "Delivery Charges",
			UnitAmount: utils.ToMinorUnits(h.Settings.DeliveryCharge),
			Quantity:   1,
		})
	}

	pctx, cancel := h.providerContext(c)
	defer cancel()
	session, err := h.Stripe.CreateCheckoutSession(pctx, payments.CheckoutRequest{
		OrderID:       order.ID.Hex(),
		Currency:      h.Settings.Currency,
		CustomerEmail: user.Email,
		Lines:         lines,
		SuccessURL:    fmt.Sprintf("%s/order-success?orderId=%s&session_id={CHECKOUT_SESSION_ID}", h.Settings.ClientURL, order.ID.Hex()),
		CancelURL:     h.Settings.ClientURL + "/checkout",
	})
	if err != nil {
		log.Printf("stripe checkout for order %s: %v", order.ID.Hex(), err)
		if delErr := h.Orders.Delete(ctx, order.ID); delErr != nil {
			log.Printf("remove order %s after checkout failure: %v", order.ID.Hex(), delErr)
		}
		return jsonError(c, http.StatusBadGateway, "Stripe payment failed")
	}

	if err := h.Orders.SetStripeSession(ctx, order.ID, session.ID); err != nil {
		log.Printf("store stripe session on order %s: %v", order.ID.Hex(), err)
		return jsonError(c, http.StatusInternalServerError, "Failed to place order")
	}
	order.StripeSessionID = session.ID
	metrics.OrdersPlaced.WithLabelValues(string(order.PaymentMethod)).Inc()

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"sessionId": session.ID,
		"url":       session.URL,
		"order":     order,
	})
}

// PlaceOrderRazorpay creates the provider order first, then the local order
// that refers to it.
func (h *Handler) PlaceOrderRazorpay(c echo.Context) error {
	if h.Razorpay == nil {
		return jsonError(c, http.StatusServiceUnavailable, "Razorpay payments are not configured")
	}
	_, order, total, err := h.prepareOrder(c, models.PaymentMethodRazorpay)
	if err != nil {
		return writeOrderError(c, err)
	}

	amount := utils.ToMinorUnits(total)
	currency := strings.ToUpper(h.Settings.Currency)
	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	pctx, cancel := h.providerContext(c)
	defer cancel()
	rzpOrder, err := h.Razorpay.CreateOrder(pctx, amount, currency, receipt)
	if err != nil {
		log.Printf("razorpay order for %s: %v", order.ID.Hex(), err)
		return jsonError(c, http.StatusBadGateway, "Razorpay payment failed")
	}

	order.RazorpayOrderID = rzpOrder.ID
	if err := h.Orders.Create(c.Request().Context(), order); err != nil {
		log.Printf("razorpay order %s has no local order: %v", rzpOrder.ID, err)
		return jsonError(c, http.StatusInternalServerError, "Failed to place order")
	}
	metrics.OrdersPlaced.WithLabelValues(string(order.PaymentMethod)).Inc()

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"orderId":  rzpOrder.ID,
		"keyId":    h.Razorpay.KeyID(),
		"amount":   amount,
		"currency": currency,
		"order":    order,
	})
}

// GetUserOrders lists the caller's orders, newest first.
func (h *Handler) GetUserOrders(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}
	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		log.Printf("list orders for %s: %v", userID.Hex(), err)
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := paramObjectID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.Orders.FindForUser(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Order not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c echo.Context) error {
	return h.transitionOrder(c, models.CancellableStatuses, models.OrderStatusCancelled,
		"Order cancelled successfully", "Order can only be cancelled while pending or processing")
}

func (h *Handler) ReturnOrder(c echo.Context) error {
	return h.transitionOrder(c, models.ReturnableStatuses, models.OrderStatusReturned,
		"Return requested successfully", "Only delivered orders can be returned")
}

func (h *Handler) transitionOrder(c echo.Context, from []models.OrderStatus, to models.OrderStatus, okMsg, conflictMsg string) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req OrderIDRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	id, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.Orders.TransitionStatus(c.Request().Context(), id, userID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return jsonError(c, http.StatusNotFound, "Order not found")
		case errors.Is(err, database.ErrConflict):
			return jsonError(c, http.StatusConflict, conflictMsg)
		}
		log.Printf("order %s to %s: %v", id.Hex(), to, err)
		return jsonError(c, http.StatusInternalServerError, "Failed to update order")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": okMsg, "order": order})
}

// GetAllOrders is the admin listing, joined with each customer.
func (h *Handler) GetAllOrders(c echo.Context) error {
	orders, err := h.Orders.ListAll(c.Request().Context())
	if err != nil {
		log.Printf("list all orders: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if !req.Status.Valid() {
		return jsonError(c, http.StatusBadRequest, "Invalid status value")
	}
	id, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.Orders.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Order not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to update order status")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// sendConfirmation mails the customer. Failures never fail the request.
func (h *Handler) sendConfirmation(c echo.Context, user *models.User, order *models.Order) {
	if h.Mailer == nil || user == nil {
		return
	}
	ctx, cancel := h.providerContext(c)
	defer cancel()
	if err := h.Mailer.SendOrderConfirmation(ctx, user.Email, user.Name, order); err != nil {
		log.Printf("confirmation mail for order %s: %v", order.ID.Hex(), err)
	}
}
