package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestSignatureMatchesHMAC(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("key_secret"))
	mac.Write([]byte("order_Abc123|pay_Xyz789"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := Signature("key_secret", "order_Abc123", "pay_Xyz789"); got != want {
		t.Errorf("Signature() = %s, want %s", got, want)
	}
}

func TestVerifySignature(t *testing.T) {
	good := Signature("key_secret", "order_1", "pay_1")

	tests := []struct {
		name      string
		secret    string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid", "key_secret", "order_1", "pay_1", good, true},
		{"wrong secret", "other", "order_1", "pay_1", good, false},
		{"swapped ids", "key_secret", "pay_1", "order_1", good, false},
		{"other payment", "key_secret", "order_1", "pay_2", good, false},
		{"uppercase hex", "key_secret", "order_1", "pay_1", strings.ToUpper(good), false},
		{"empty signature", "key_secret", "order_1", "pay_1", "", false},
		{"empty secret", "", "order_1", "pay_1", Signature("", "order_1", "pay_1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(tt.secret, tt.orderID, tt.paymentID, tt.signature); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGatewayConstructorsRequireKeys(t *testing.T) {
	if _, err := NewRazorpayGateway("", "secret"); err == nil {
		t.Error("NewRazorpayGateway without key id should fail")
	}
	if _, err := NewStripeGateway(""); err == nil {
		t.Error("NewStripeGateway without key should fail")
	}
}
