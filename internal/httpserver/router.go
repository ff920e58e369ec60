package httpserver

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/ratelimit"
	"storefront/internal/service/address"
	"storefront/internal/service/auth"
	"storefront/internal/service/cart"
	"storefront/internal/service/category"
	"storefront/internal/service/customization"
	"storefront/internal/service/order"
	"storefront/internal/service/product"
	"storefront/internal/service/review"
	"storefront/internal/service/shipping"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(accessToken string) (auth.Principal, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
}

type ProductService interface {
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, ref string, includeHidden bool) (*domain.Product, error)
	Create(ctx context.Context, in product.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, in product.UpdateInput) (*domain.Product, error)
	Related(ctx context.Context, ref string, limit int) ([]domain.Product, error)
	Publish(ctx context.Context, id int64) (*domain.Product, error)
	Archive(ctx context.Context, id int64) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	ListAll(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, in category.Input) (*domain.Category, error)
	Update(ctx context.Context, id int64, in category.Input) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type ReviewService interface {
	List(ctx context.Context, ref string, limit, offset int) ([]domain.Review, error)
	Create(ctx context.Context, userID int64, ref string, in review.CreateInput) (*domain.Review, error)
}

type AddressService interface {
	Create(ctx context.Context, userID int64, in address.Input) (*domain.Address, error)
	List(ctx context.Context, userID int64) ([]domain.Address, error)
	Get(ctx context.Context, userID, id int64) (*domain.Address, error)
	Update(ctx context.Context, userID, id int64, in address.Input) (*domain.Address, error)
	Delete(ctx context.Context, userID, id int64) error
	SetDefault(ctx context.Context, userID, id int64) (*domain.Address, error)
}

type ShippingService interface {
	Options(ctx context.Context) ([]domain.ShippingOption, error)
	Option(ctx context.Context, id int64) (*domain.ShippingOption, error)
	Rates(country, postalCode string) ([]domain.ShippingRate, error)
	AllOptions(ctx context.Context) ([]domain.ShippingOption, error)
	CreateOption(ctx context.Context, in shipping.OptionInput) (*domain.ShippingOption, error)
	UpdateOption(ctx context.Context, id int64, in shipping.OptionInput) (*domain.ShippingOption, error)
	DeleteOption(ctx context.Context, id int64) error
}

type CartService interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID int64, in cart.AddItemInput) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID int64) (bool, error)
	Clear(ctx context.Context, userID int64) (int64, error)
}

type CustomizationService interface {
	Save(ctx context.Context, userID int64, in customization.SaveInput) (*domain.Customization, error)
	Get(ctx context.Context, userID, id int64) (*domain.Customization, error)
	List(ctx context.Context, userID int64) ([]domain.Customization, error)
	GenerateImage(ctx context.Context, userID int64, in customization.GenerateInput) (string, error)
}

type OrderService interface {
	Create(ctx context.Context, userID int64, in order.CheckoutInput) (*domain.Order, error)
	Get(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	List(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
	Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, in order.UpdateStatusInput) (*domain.Order, error)
}

// RateLimiter is optional; a nil limiter disables limiting.
type RateLimiter interface {
	Allow(ctx context.Context, subject string) (ratelimit.Result, error)
	Max() int
}

// Deps bundles the services the router dispatches to.
type Deps struct {
	AuthSvc          AuthService
	ProductSvc       ProductService
	CategorySvc      CategoryService
	ReviewSvc        ReviewService
	AddressSvc       AddressService
	ShippingSvc      ShippingService
	CartSvc          CartService
	CustomizationSvc CustomizationService
	OrderSvc         OrderService
	Limiter          RateLimiter
}

func (d Deps) validate() error {
	switch {
	case d.AuthSvc == nil:
		return errors.New("auth service required")
	case d.ProductSvc == nil:
		return errors.New("product service required")
	case d.CategorySvc == nil:
		return errors.New("category service required")
	case d.ReviewSvc == nil:
		return errors.New("review service required")
	case d.AddressSvc == nil:
		return errors.New("address service required")
	case d.ShippingSvc == nil:
		return errors.New("shipping service required")
	case d.CartSvc == nil:
		return errors.New("cart service required")
	case d.CustomizationSvc == nil:
		return errors.New("customization service required")
	case d.OrderSvc == nil:
		return errors.New("order service required")
	}
	return nil
}

type Options struct {
	CORSOrigins []string
	// UploadDir is served under /uploads when set.
	UploadDir    string
	MaxBodyBytes int64
}

type handlers struct {
	deps   Deps
	logger logrus.FieldLogger
}

// buildRouter wires routes for the API.
func buildRouter(logger logrus.FieldLogger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.MaxBodyBytes > 0 {
		router.Use(bodyLimit(opts.MaxBodyBytes))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/api/v1")
	if deps.Limiter != nil {
		api.Use(rateLimit(deps.Limiter, logger))
	}
	authn := requireAuth(deps.AuthSvc)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/refresh", h.refresh)
	authGroup.POST("/logout", h.logout)
	authGroup.GET("/me", authn, h.me)

	api.GET("/products", h.listProducts)
	api.GET("/products/:ref", h.getProduct)
	api.GET("/products/:ref/related", h.relatedProducts)
	api.GET("/products/:ref/reviews", h.listReviews)
	api.POST("/products/:ref/reviews", authn, h.createReview)
	api.GET("/categories", h.listCategories)
	api.GET("/shipping/options", h.listShippingOptions)
	api.GET("/shipping/options/:id", h.getShippingOption)
	api.GET("/shipping/rates", h.shippingRates)

	addresses := api.Group("/addresses", authn)
	addresses.GET("", h.listAddresses)
	addresses.POST("", h.createAddress)
	addresses.GET("/:id", h.getAddress)
	addresses.PUT("/:id", h.updateAddress)
	addresses.DELETE("/:id", h.deleteAddress)
	addresses.POST("/:id/default", h.setDefaultAddress)

	carts := api.Group("/cart", authn)
	carts.GET("", h.getCart)
	carts.DELETE("", h.clearCart)
	carts.POST("/items", h.addCartItem)
	carts.PUT("/items/:id", h.updateCartItem)
	carts.DELETE("/items/:id", h.removeCartItem)

	customizations := api.Group("/customizations", authn)
	customizations.GET("", h.listCustomizations)
	customizations.POST("", h.saveCustomization)
	customizations.POST("/generate-image", h.generateImage)
	customizations.GET("/:id", h.getCustomization)

	orders := api.Group("/orders", authn)
	orders.GET("", h.listOrders)
	orders.POST("", h.createOrder)
	orders.GET("/:id", h.getOrder)
	orders.POST("/:id/cancel", h.cancelOrder)

	admin := api.Group("/admin", authn, requireAdmin())
	admin.POST("/products", h.createProduct)
	admin.PATCH("/products/:id", h.updateProduct)
	admin.POST("/products/:id/publish", h.publishProduct)
	admin.POST("/products/:id/archive", h.archiveProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.GET("/categories", h.listAllCategories)
	admin.POST("/categories", h.createCategory)
	admin.PUT("/categories/:id", h.updateCategory)
	admin.DELETE("/categories/:id", h.deleteCategory)
	admin.GET("/shipping/options", h.listAllShippingOptions)
	admin.POST("/shipping/options", h.createShippingOption)
	admin.PUT("/shipping/options/:id", h.updateShippingOption)
	admin.DELETE("/shipping/options/:id", h.deleteShippingOption)
	admin.PATCH("/orders/:id", h.updateOrderStatus)

	return router, nil
}
