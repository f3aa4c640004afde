package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/middleware"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/Madhav-Gupta-28/storefront-backend-go/payments"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string) error
	SaveAddress(ctx context.Context, userID primitive.ObjectID, address models.Address) error
	UpdateAddress(ctx context.Context, userID primitive.ObjectID, address models.Address) error
	DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error
	AddToCart(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize) error
	SetCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
	AttachOrder(ctx context.Context, userID, orderID primitive.ObjectID, clearCart bool) error
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Sample(ctx context.Context, n int) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	AddReview(ctx context.Context, productID primitive.ObjectID, review models.Review) (*models.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.AdminOrder, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
	TransitionStatus(ctx context.Context, id, userID primitive.ObjectID, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error)
	SetStripeSession(ctx context.Context, id primitive.ObjectID, sessionID string) error
	MarkPaid(ctx context.Context, id primitive.ObjectID, receipt models.PaymentReceipt) (bool, error)
	MarkPaymentFailed(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AnalyticsStore interface {
	Stats(ctx context.Context) (*models.Stats, error)
	DailySales(ctx context.Context, start, end time.Time) ([]models.DailySales, error)
}

// ImageStore holds product images and hands back their public URLs.
type ImageStore interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*payments.CheckoutSession, error)
}

type RazorpayGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payments.RazorpayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to, name string, order *models.Order) error
}

// Settings are the request-independent knobs the handlers read.
type Settings struct {
	TokenSecret  string
	TokenTTL     time.Duration
	CookieSecure bool

	AdminEmail    string
	AdminPassword string

	ClientURL       string
	Currency        string
	DeliveryCharge  decimal.Decimal
	ProviderTimeout time.Duration
}

// Handler serves every REST endpoint. Images, Stripe, Razorpay and Mailer
// are optional; endpoints that need a missing one answer 503.
type Handler struct {
	Users     UserStore
	Products  ProductStore
	Orders    OrderStore
	Analytics AnalyticsStore
	Images    ImageStore
	Stripe    StripeGateway
	Razorpay  RazorpayGateway
	Mailer    Mailer
	Settings  Settings
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// bindAndValidate decodes the body into v and runs the struct validator.
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return errors.New("invalid request format")
	}
	if err := c.Validate(v); err != nil {
		return err
	}
	return nil
}

func currentUserID(c echo.Context) (primitive.ObjectID, bool) {
	id, ok := c.Get(middleware.ContextUserID).(primitive.ObjectID)
	return id, ok
}

// providerContext bounds an outbound payment-provider call.
func (h *Handler) providerContext(c echo.Context) (context.Context, context.CancelFunc) {
	timeout := h.Settings.ProviderTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}

func paramObjectID(c echo.Context, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Param(name))
}

// unauthorized is returned by handlers that run behind Protect but find no
// user in the context, which only happens on a routing mistake.
func unauthorized(c echo.Context) error {
	return jsonError(c, http.StatusUnauthorized, "User not authenticated")
}
