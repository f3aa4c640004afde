package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/middleware"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/Madhav-Gupta-28/storefront-backend-go/payments"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Function-field mocks. A nil field falls back to a harmless default.

type mockUserStore struct {
	CreateFn          func(ctx context.Context, user *models.User) error
	FindByEmailFn     func(ctx context.Context, email string) (*models.User, error)
	FindByIDFn        func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListFn            func(ctx context.Context) ([]models.User, error)
	DeleteFn          func(ctx context.Context, id primitive.ObjectID) error
	UpdateProfileFn   func(ctx context.Context, id primitive.ObjectID, name, phone string) error
	SaveAddressFn     func(ctx context.Context, userID primitive.ObjectID, address models.Address) error
	UpdateAddressFn   func(ctx context.Context, userID primitive.ObjectID, address models.Address) error
	DeleteAddressFn   func(ctx context.Context, userID, addressID primitive.ObjectID) error
	AddToCartFn       func(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize) error
	SetCartQuantityFn func(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize, quantity int) error
	RemoveFromCartFn  func(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize) error
	ClearCartFn       func(ctx context.Context, userID primitive.ObjectID) error
	AttachOrderFn     func(ctx context.Context, userID, orderID primitive.ObjectID, clearCart bool) error
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	user.ID = primitive.NewObjectID()
	return nil
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.FindByEmailFn != nil {
		return m.FindByEmailFn(ctx, email)
	}
	return nil, database.ErrNotFound
}

func (m *mockUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockUserStore) List(ctx context.Context) ([]models.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return []models.User{}, nil
}

func (m *mockUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string) error {
	if m.UpdateProfileFn != nil {
		return m.UpdateProfileFn(ctx, id, name, phone)
	}
	return nil
}

func (m *mockUserStore) SaveAddress(ctx context.Context, userID primitive.ObjectID, address models.Address) error {
	if m.SaveAddressFn != nil {
		return m.SaveAddressFn(ctx, userID, address)
	}
	return nil
}

func (m *mockUserStore) UpdateAddress(ctx context.Context, userID primitive.ObjectID, address models.Address) error {
	if m.UpdateAddressFn != nil {
		return m.UpdateAddressFn(ctx, userID, address)
	}
	return nil
}

func (m *mockUserStore) DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error {
	if m.DeleteAddressFn != nil {
		return m.DeleteAddressFn(ctx, userID, addressID)
	}
	return nil
}

func (m *mockUserStore) AddToCart(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize) error {
	if m.AddToCartFn != nil {
		return m.AddToCartFn(ctx, userID, productID, size)
	}
	return nil
}

func (m *mockUserStore) SetCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize, quantity int) error {
	if m.SetCartQuantityFn != nil {
		return m.SetCartQuantityFn(ctx, userID, productID, size, quantity)
	}
	return nil
}

func (m *mockUserStore) RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize) error {
	if m.RemoveFromCartFn != nil {
		return m.RemoveFromCartFn(ctx, userID, productID, size)
	}
	return nil
}

func (m *mockUserStore) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	if m.ClearCartFn != nil {
		return m.ClearCartFn(ctx, userID)
	}
	return nil
}

func (m *mockUserStore) AttachOrder(ctx context.Context, userID, orderID primitive.ObjectID, clearCart bool) error {
	if m.AttachOrderFn != nil {
		return m.AttachOrderFn(ctx, userID, orderID, clearCart)
	}
	return nil
}

type mockProductStore struct {
	CreateFn    func(ctx context.Context, product *models.Product) error
	FindByIDFn  func(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDsFn func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	FindFn      func(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	SampleFn    func(ctx context.Context, n int) ([]models.Product, error)
	UpdateFn    func(ctx context.Context, product *models.Product) error
	DeleteFn    func(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	AddReviewFn func(ctx context.Context, productID primitive.ObjectID, review models.Review) (*models.Product, error)
}

func (m *mockProductStore) Create(ctx context.Context, product *models.Product) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, product)
	}
	product.ID = primitive.NewObjectID()
	return nil
}

func (m *mockProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockProductStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	if m.FindByIDsFn != nil {
		return m.FindByIDsFn(ctx, ids)
	}
	return map[primitive.ObjectID]models.Product{}, nil
}

func (m *mockProductStore) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, filter)
	}
	return []models.Product{}, nil
}

func (m *mockProductStore) Sample(ctx context.Context, n int) ([]models.Product, error) {
	if m.SampleFn != nil {
		return m.SampleFn(ctx, n)
	}
	return []models.Product{}, nil
}

func (m *mockProductStore) Update(ctx context.Context, product *models.Product) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, product)
	}
	return nil
}

func (m *mockProductStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockProductStore) AddReview(ctx context.Context, productID primitive.ObjectID, review models.Review) (*models.Product, error) {
	if m.AddReviewFn != nil {
		return m.AddReviewFn(ctx, productID, review)
	}
	return nil, database.ErrNotFound
}

type mockOrderStore struct {
	CreateFn            func(ctx context.Context, order *models.Order) error
	FindForUserFn       func(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	ListByUserFn        func(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAllFn           func(ctx context.Context) ([]models.AdminOrder, error)
	SetStatusFn         func(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
	TransitionStatusFn  func(ctx context.Context, id, userID primitive.ObjectID, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error)
	SetStripeSessionFn  func(ctx context.Context, id primitive.ObjectID, sessionID string) error
	MarkPaidFn          func(ctx context.Context, id primitive.ObjectID, receipt models.PaymentReceipt) (bool, error)
	MarkPaymentFailedFn func(ctx context.Context, id primitive.ObjectID) error
	DeleteFn            func(ctx context.Context, id primitive.ObjectID) error
}

func (m *mockOrderStore) Create(ctx context.Context, order *models.Order) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, order)
	}
	return nil
}

func (m *mockOrderStore) FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	if m.FindForUserFn != nil {
		return m.FindForUserFn(ctx, id, userID)
	}
	return nil, database.ErrNotFound
}

func (m *mockOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return []models.Order{}, nil
}

func (m *mockOrderStore) ListAll(ctx context.Context) ([]models.AdminOrder, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return []models.AdminOrder{}, nil
}

func (m *mockOrderStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if m.SetStatusFn != nil {
		return m.SetStatusFn(ctx, id, status)
	}
	return nil, database.ErrNotFound
}

func (m *mockOrderStore) TransitionStatus(ctx context.Context, id, userID primitive.ObjectID, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error) {
	if m.TransitionStatusFn != nil {
		return m.TransitionStatusFn(ctx, id, userID, from, to)
	}
	return nil, database.ErrNotFound
}

func (m *mockOrderStore) SetStripeSession(ctx context.Context, id primitive.ObjectID, sessionID string) error {
	if m.SetStripeSessionFn != nil {
		return m.SetStripeSessionFn(ctx, id, sessionID)
	}
	return nil
}

func (m *mockOrderStore) MarkPaid(ctx context.Context, id primitive.ObjectID, receipt models.PaymentReceipt) (bool, error) {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, id, receipt)
	}
	return true, nil
}

func (m *mockOrderStore) MarkPaymentFailed(ctx context.Context, id primitive.ObjectID) error {
	if m.MarkPaymentFailedFn != nil {
		return m.MarkPaymentFailedFn(ctx, id)
	}
	return nil
}

func (m *mockOrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

type mockAnalyticsStore struct {
	StatsFn      func(ctx context.Context) (*models.Stats, error)
	DailySalesFn func(ctx context.Context, start, end time.Time) ([]models.DailySales, error)
}

func (m *mockAnalyticsStore) Stats(ctx context.Context) (*models.Stats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}
	return &models.Stats{}, nil
}

func (m *mockAnalyticsStore) DailySales(ctx context.Context, start, end time.Time) ([]models.DailySales, error) {
	if m.DailySalesFn != nil {
		return m.DailySalesFn(ctx, start, end)
	}
	return []models.DailySales{}, nil
}

type mockImageStore struct {
	UploadFn func(ctx context.Context, fileName, contentType string, data []byte) (string, error)
	deleted  []string
}

func (m *mockImageStore) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if m.UploadFn != nil {
		return m.UploadFn(ctx, fileName, contentType, data)
	}
	return "https://cdn.test/products/" + fileName, nil
}

func (m *mockImageStore) Delete(ctx context.Context, imageURL string) error {
	m.deleted = append(m.deleted, imageURL)
	return nil
}

type mockStripe struct {
	CreateFn   func(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error)
	RetrieveFn func(ctx context.Context, sessionID string) (*payments.CheckoutSession, error)
}

func (m *mockStripe) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	return &payments.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, nil
}

func (m *mockStripe) RetrieveSession(ctx context.Context, sessionID string) (*payments.CheckoutSession, error) {
	if m.RetrieveFn != nil {
		return m.RetrieveFn(ctx, sessionID)
	}
	return &payments.CheckoutSession{ID: sessionID}, nil
}

type mockRazorpay struct {
	CreateFn func(ctx context.Context, amount int64, currency, receipt string) (*payments.RazorpayOrder, error)
	secret   string
}

func (m *mockRazorpay) KeyID() string { return "rzp_test_key" }

func (m *mockRazorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payments.RazorpayOrder, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, amount, currency, receipt)
	}
	return &payments.RazorpayOrder{ID: "order_test_1", Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (m *mockRazorpay) VerifySignature(orderID, paymentID, signature string) bool {
	return payments.VerifySignature(m.secret, orderID, paymentID, signature)
}

type sentMail struct {
	to    string
	order *models.Order
}

type mockMailer struct {
	sent []sentMail
}

func (m *mockMailer) SendOrderConfirmation(ctx context.Context, to, name string, order *models.Order) error {
	m.sent = append(m.sent, sentMail{to: to, order: order})
	return nil
}

// Helpers

func testSettings() Settings {
	return Settings{
		TokenSecret:     "test-secret",
		TokenTTL:        time.Hour,
		AdminEmail:      "admin@shop.test",
		AdminPassword:   "admin-pass",
		ClientURL:       "http://localhost:5173",
		Currency:        "inr",
		DeliveryCharge:  decimal.NewFromInt(10),
		ProviderTimeout: time.Second,
	}
}

func newTestHandler() *Handler {
	return &Handler{
		Users:     &mockUserStore{},
		Products:  &mockProductStore{},
		Orders:    &mockOrderStore{},
		Analytics: &mockAnalyticsStore{},
		Settings:  testSettings(),
	}
}

// newContext builds an echo context for a JSON request. A non-zero userID
// is put where Protect would put it.
func newContext(method, target string, body interface{}, userID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if !userID.IsZero() {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, models.RoleCustomer)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, want, rec.Body.String())
	}
}
