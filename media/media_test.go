package media

import (
	"strings"
	"testing"
)

func TestDetectImageType(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png", false},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg", false},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), "image/webp", false},
		{"gif rejected", []byte("GIF89a\x01\x00\x01\x00"), "", true},
		{"text rejected", []byte("hello world"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectImageType(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectImageType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectImageType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObjectPath(t *testing.T) {
	p := ObjectPath("/products/", "../My Shirt", "image/png")
	if !strings.HasPrefix(p, "products/") {
		t.Errorf("ObjectPath() = %q, want products/ prefix", p)
	}
	if !strings.HasSuffix(p, "-My_Shirt.png") {
		t.Errorf("ObjectPath() = %q, want sanitized name with .png", p)
	}
	if strings.Contains(strings.TrimPrefix(p, "products/"), "/") {
		t.Errorf("ObjectPath() = %q contains a nested separator", p)
	}

	if p := ObjectPath("products", "", "image/webp"); !strings.HasSuffix(p, "-image.webp") {
		t.Errorf("ObjectPath() for empty name = %q", p)
	}
	if p := ObjectPath("products", "photo.jpeg", "image/jpeg"); !strings.HasSuffix(p, "-photo.jpeg") {
		t.Errorf("ObjectPath() kept extension = %q", p)
	}
}

func TestObjectPathFromURL(t *testing.T) {
	base := "https://storage.googleapis.com"

	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"own object", base + "/shop-images/products/abc-shirt.png", "products/abc-shirt.png", true},
		{"other bucket", base + "/other/products/abc.png", "", false},
		{"other host", "https://res.cloudinary.com/shop-images/products/abc.png", "", false},
		{"bucket root", base + "/shop-images/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ObjectPathFromURL(base, "shop-images", tt.url)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ObjectPathFromURL() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPublicURLRoundTrip(t *testing.T) {
	s := NewGCSImageStore(nil, "shop-images", "https://cdn.example.com/")
	u := s.PublicURL("products/x.png")
	if u != "https://cdn.example.com/shop-images/products/x.png" {
		t.Fatalf("PublicURL() = %q", u)
	}
	if p, ok := ObjectPathFromURL(s.PublicBaseURL, s.Bucket, u); !ok || p != "products/x.png" {
		t.Errorf("ObjectPathFromURL(PublicURL()) = (%q, %v)", p, ok)
	}
}
