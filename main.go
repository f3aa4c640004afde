package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Madhav-Gupta-28/storefront-backend-go/config"
	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/handlers"
	"github.com/Madhav-Gupta-28/storefront-backend-go/mailer"
	"github.com/Madhav-Gupta-28/storefront-backend-go/media"
	"github.com/Madhav-Gupta-28/storefront-backend-go/metrics"
	"github.com/Madhav-Gupta-28/storefront-backend-go/payments"
	"github.com/Madhav-Gupta-28/storefront-backend-go/routes"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load environment variables
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// Connect to MongoDB
	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("MongoDB disconnect: %v", err)
		}
	}()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	h := &handlers.Handler{
		Users:     database.NewUserStore(db),
		Products:  database.NewProductStore(db),
		Orders:    database.NewOrderStore(db),
		Analytics: database.NewAnalyticsStore(db),
		Settings: handlers.Settings{
			TokenSecret:     cfg.TokenSecret,
			TokenTTL:        cfg.TokenTTL,
			CookieSecure:    cfg.CookieSecure,
			AdminEmail:      cfg.AdminEmail,
			AdminPassword:   cfg.AdminPassword,
			ClientURL:       cfg.ClientURL,
			Currency:        cfg.Currency,
			DeliveryCharge:  cfg.DeliveryCharge,
			ProviderTimeout: cfg.ProviderTimeout,
		},
	}

	// Optional integrations; the interface fields stay nil when unset.
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatal("Failed to create storage client:", err)
		}
		defer gcs.Close()
		h.Images = media.NewGCSImageStore(gcs, cfg.GCSBucket, cfg.GCSPublicBaseURL)
	} else {
		log.Println("GCS_BUCKET not set, product image uploads disabled")
	}

	if cfg.StripeSecretKey != "" {
		stripeGateway, err := payments.NewStripeGateway(cfg.StripeSecretKey)
		if err != nil {
			log.Fatal("Failed to configure Stripe:", err)
		}
		h.Stripe = stripeGateway
	} else {
		log.Println("STRIPE_SECRET_KEY not set, Stripe checkout disabled")
	}

	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		razorpayGateway, err := payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		if err != nil {
			log.Fatal("Failed to configure Razorpay:", err)
		}
		h.Razorpay = razorpayGateway
	} else {
		log.Println("Razorpay keys not set, Razorpay checkout disabled")
	}

	if cfg.SendGridAPIKey != "" && cfg.MailFrom != "" {
		h.Mailer = mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom, cfg.Currency)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("25M"))
	e.Use(metrics.Middleware())

	// Setup routes
	routes.SetupRoutes(e, h, cfg.TokenSecret)

	// Start the server
	go func() {
		log.Printf("Server starting on port %s...", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
