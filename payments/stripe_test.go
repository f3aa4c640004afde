package payments

import (
	"context"
	"testing"

	"github.com/stripe/stripe-go/v76"
)

func TestCheckoutSessionPaid(t *testing.T) {
	tests := []struct {
		status stripe.CheckoutSessionPaymentStatus
		want   bool
	}{
		{stripe.CheckoutSessionPaymentStatusPaid, true},
		{stripe.CheckoutSessionPaymentStatusUnpaid, false},
		{stripe.CheckoutSessionPaymentStatusNoPaymentRequired, false},
	}
	for _, tt := range tests {
		s := toCheckoutSession(&stripe.CheckoutSession{
			ID:                "cs_test_1",
			PaymentStatus:     tt.status,
			ClientReferenceID: "order-1",
		})
		if got := s.Paid(); got != tt.want {
			t.Errorf("Paid() with %q = %v, want %v", tt.status, got, tt.want)
		}
		if s.ClientReferenceID != "order-1" {
			t.Errorf("ClientReferenceID = %q", s.ClientReferenceID)
		}
	}
}

func TestNewStripeGatewayRequiresKey(t *testing.T) {
	if _, err := NewStripeGateway(""); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestCreateCheckoutSessionNeedsLines(t *testing.T) {
	g, err := NewStripeGateway("sk_test_dummy")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{OrderID: "o"}); err == nil {
		t.Error("expected error for empty checkout")
	}
}
