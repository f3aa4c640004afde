package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("ACCESS_TOKEN_SECRET", "secret")
	t.Setenv("CLIENT_URL", "http://shop.local/")
	t.Setenv("CORS_ORIGINS", " http://a.local , ,http://b.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if cfg.ClientURL != "http://shop.local" {
		t.Errorf("ClientURL = %q, want trailing slash trimmed", cfg.ClientURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.local" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.DeliveryCharge.String() != "10" {
		t.Errorf("DeliveryCharge = %s, want 10", cfg.DeliveryCharge)
	}
	if cfg.Currency != "inr" {
		t.Errorf("Currency = %q, want inr", cfg.Currency)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad ttl", "TOKEN_TTL", "soon"},
		{"zero timeout", "PROVIDER_TIMEOUT", "0s"},
		{"bad bool", "COOKIE_SECURE", "maybe"},
		{"bad charge", "DELIVERY_CHARGE", "ten"},
		{"negative charge", "DELIVERY_CHARGE", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (&Config{TokenSecret: "x"}).Validate(); err == nil {
		t.Error("expected error for missing MONGODB_URI")
	}
	if err := (&Config{MongoURI: "mongodb://x"}).Validate(); err == nil {
		t.Error("expected error for missing ACCESS_TOKEN_SECRET")
	}
}
