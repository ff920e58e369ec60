package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/imagegen"
	"storefront/internal/logging"
	"storefront/internal/migrate"
	"storefront/internal/ratelimit"
	addressrepo "storefront/internal/repository/address"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	customizationrepo "storefront/internal/repository/customization"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	reviewrepo "storefront/internal/repository/review"
	shippingrepo "storefront/internal/repository/shipping"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	addresssvc "storefront/internal/service/address"
	authsvc "storefront/internal/service/auth"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	customizationsvc "storefront/internal/service/customization"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
	shippingsvc "storefront/internal/service/shipping"
	"storefront/internal/storage"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	log := logger.WithField("component", "api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	store, err := storage.NewLocal(cfg.UploadDir, cfg.FileURLHost, cfg.MaxUploadSize)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}

	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	addressRepo := addressrepo.NewPostgres(dbpool)
	shippingRepo := shippingrepo.NewPostgres(dbpool)
	customizationRepo := customizationrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	reviewRepo := reviewrepo.NewPostgres(dbpool)

	authService := authsvc.New(userRepo, tokenRepo, authsvc.Options{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}, logger)
	generator := imagegen.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAITimeout)
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, image generation disabled")
	}

	productService := productsvc.New(productRepo)
	deps := httpserver.Deps{
		AuthSvc:          authService,
		ProductSvc:       productService,
		CategorySvc:      categorysvc.New(categoryRepo),
		ReviewSvc:        reviewsvc.New(reviewRepo, productService, userRepo),
		AddressSvc:       addresssvc.New(addressRepo),
		ShippingSvc:      shippingsvc.New(shippingRepo),
		CartSvc:          cartsvc.New(cartRepo, productRepo, customizationRepo, logger),
		CustomizationSvc: customizationsvc.New(customizationRepo, productRepo, store, generator, logger),
		OrderSvc: ordersvc.New(orderRepo, cartRepo, addressRepo, shippingRepo, customizationRepo,
			cfg.DefaultShippingOptionID, logger),
	}

	if cfg.RedisURL != "" {
		limiter, err := ratelimit.NewFromURL(ctx, cfg.RedisURL, cfg.RateLimitWindow, cfg.RateLimitMax)
		if err != nil {
			log.Fatalf("init rate limiter: %v", err)
		}
		defer limiter.Close()
		deps.Limiter = limiter
	} else {
		log.Info("REDIS_URL not set, rate limiting disabled")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps, httpserver.Options{
		CORSOrigins:  cfg.CORSOrigins,
		UploadDir:    store.Dir(),
		MaxBodyBytes: cfg.MaxUploadSize * 2,
	})
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serverErr:
		log.WithError(err).Error("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	} else {
		log.Info("server stopped")
	}
}
