package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/metrics"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VerifyStripeRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type VerifyRazorpayRequest struct {
	OrderID           string `json:"orderId" validate:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

const (
	providerStripe   = "stripe"
	providerRazorpay = "razorpay"
)

// loadPayableOrder fetches the caller's order and checks it was placed with
// the given method.
func (h *Handler) loadPayableOrder(c echo.Context, rawID string, method models.PaymentMethod) (*models.Order, error) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, unauthorized(c)
	}
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, jsonError(c, http.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.Orders.FindForUser(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, jsonError(c, http.StatusNotFound, "Order not found")
		}
		return nil, jsonError(c, http.StatusInternalServerError, "Failed to fetch order")
	}
	if order.PaymentMethod != method {
		return nil, jsonError(c, http.StatusBadRequest, "Order was not placed with "+string(method))
	}
	return order, nil
}

// VerifyStripe asks Stripe for the checkout session behind the order and
// settles the order from the provider's answer.
func (h *Handler) VerifyStripe(c echo.Context) error {
	var req VerifyStripeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	order, errResp := h.loadPayableOrder(c, req.OrderID, models.PaymentMethodStripe)
	if order == nil {
		return errResp
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Payment already verified"})
	}
	if h.Stripe == nil {
		return jsonError(c, http.StatusServiceUnavailable, "Stripe payments are not configured")
	}
	if order.StripeSessionID == "" {
		return jsonError(c, http.StatusBadRequest, "No checkout session for this order")
	}

	pctx, cancel := h.providerContext(c)
	defer cancel()
	session, err := h.Stripe.RetrieveSession(pctx, order.StripeSessionID)
	if err != nil {
		log.Printf("stripe session %s: %v", order.StripeSessionID, err)
		metrics.PaymentsVerified.WithLabelValues(providerStripe, "error").Inc()
		return jsonError(c, http.StatusBadGateway, "Could not reach Stripe")
	}

	if !session.Paid() || session.ClientReferenceID != order.ID.Hex() {
		return h.failPayment(c, order, providerStripe)
	}
	return h.settlePayment(c, order, models.PaymentReceipt{}, providerStripe)
}

// VerifyRazorpay checks the checkout signature against the order's stored
// provider order id.
func (h *Handler) VerifyRazorpay(c echo.Context) error {
	var req VerifyRazorpayRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	order, errResp := h.loadPayableOrder(c, req.OrderID, models.PaymentMethodRazorpay)
	if order == nil {
		return errResp
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Payment already verified"})
	}
	if order.RazorpayOrderID != req.RazorpayOrderID {
		return jsonError(c, http.StatusBadRequest, "Payment does not belong to this order")
	}
	if h.Razorpay == nil {
		return jsonError(c, http.StatusServiceUnavailable, "Razorpay payments are not configured")
	}

	if !h.Razorpay.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return h.failPayment(c, order, providerRazorpay)
	}
	receipt := models.PaymentReceipt{
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
	}
	return h.settlePayment(c, order, receipt, providerRazorpay)
}

// settlePayment marks the order paid. The cart clear, order link and mail
// run only for the request that actually flipped the status.
func (h *Handler) settlePayment(c echo.Context, order *models.Order, receipt models.PaymentReceipt, provider string) error {
	ctx := c.Request().Context()
	changed, err := h.Orders.MarkPaid(ctx, order.ID, receipt)
	if err != nil {
		log.Printf("mark order %s paid: %v", order.ID.Hex(), err)
		metrics.PaymentsVerified.WithLabelValues(provider, "error").Inc()
		return jsonError(c, http.StatusInternalServerError, "Failed to record payment")
	}
	metrics.PaymentsVerified.WithLabelValues(provider, "paid").Inc()

	if changed {
		if err := h.Users.AttachOrder(ctx, order.UserID, order.ID, true); err != nil {
			log.Printf("attach order %s to user %s: %v", order.ID.Hex(), order.UserID.Hex(), err)
		}
		order.PaymentStatus = models.PaymentStatusPaid
		if user, err := h.Users.FindByID(ctx, order.UserID); err == nil {
			h.sendConfirmation(c, user, order)
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Payment verified successfully"})
}

func (h *Handler) failPayment(c echo.Context, order *models.Order, provider string) error {
	if err := h.Orders.MarkPaymentFailed(c.Request().Context(), order.ID); err != nil {
		log.Printf("mark order %s failed: %v", order.ID.Hex(), err)
	}
	metrics.PaymentsVerified.WithLabelValues(provider, "failed").Inc()
	return jsonError(c, http.StatusBadRequest, "Payment verification failed")
}
