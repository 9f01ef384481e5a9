package main

import (
	"context"
	"fmt"
	"log"

	"meeplemart/internal/caching"
	"meeplemart/internal/config"
	"meeplemart/internal/email"
	"meeplemart/internal/handlers"
	"meeplemart/internal/jobs/background"
	"meeplemart/internal/middleware"
	"meeplemart/internal/repositories"
	"meeplemart/internal/services"
	"meeplemart/pkg/database"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	cacheService := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cacheService.Ping(ctx); err != nil {
		log.Printf("WARNING: Redis unreachable at startup: %v", err)
	}

	storage, err := services.NewMinioStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create object storage client: %v", err)
	}
	if err := services.EnsureBucket(ctx, storage); err != nil {
		log.Fatalf("Failed to ensure storage bucket: %v", err)
	}

	invalidator, err := services.NewCloudFrontInvalidator(cfg.CDN)
	if err != nil {
		log.Fatalf("Failed to create CDN invalidator: %v", err)
	}

	// Repositories
	productRepo := repositories.NewProductRepo(pool)
	imageRepo := repositories.NewProductImageRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	brandRepo := repositories.NewBrandRepo(pool)
	gameTypeRepo := repositories.NewGameTypeRepo(pool)
	audienceRepo := repositories.NewAudienceRepo(pool)
	reviewRepo := repositories.NewReviewRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	cartRepo := repositories.NewCartRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)

	// Services
	mailer := email.NewSMTPSender(cfg.SMTP)
	generator := services.NewVariantGenerator()
	imageService := services.NewImageService(productRepo, imageRepo, storage, generator, invalidator)
	productService := services.NewProductService(productRepo, brandRepo, categoryRepo, imageService, cacheService)
	reviewService := services.NewReviewService(reviewRepo, productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	stripeService := services.NewStripeService(cfg.Stripe.SecretKey)
	orderService := services.NewOrderService(orderRepo, cartRepo, productRepo, userRepo, stripeService, mailer)
	authService := services.NewAuthService(userRepo, cacheService, mailer, cfg.JWTSecret)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool, cacheService)
	authHandlers := handlers.NewAuthHandlers(authService)
	userHandlers := handlers.NewUserHandlers(userRepo)
	catalogHandlers := handlers.NewCatalogHandlers(categoryRepo, brandRepo, gameTypeRepo, audienceRepo)
	productHandlers := handlers.NewProductHandlers(productService)
	imageHandlers := handlers.NewProductImageHandlers(imageService)
	reviewHandlers := handlers.NewReviewHandlers(reviewService)
	cartHandlers := handlers.NewCartHandlers(cartService)
	orderHandlers := handlers.NewOrderHandlers(orderService)

	// Background jobs
	scheduler, err := background.NewJobScheduler(cacheService, cartRepo, productRepo)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Probes
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := e.Group("/v1")

	// Public auth endpoints
	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)
	auth.POST("/password-reset", authHandlers.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandlers.ResetPassword)

	// Public storefront endpoints
	v1.GET("/products", productHandlers.SearchProducts)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.GET("/products/:id/images", imageHandlers.ListImages)
	v1.GET("/products/:id/reviews", reviewHandlers.ListReviews)
	v1.GET("/categories", catalogHandlers.ListCategories)
	v1.GET("/brands", catalogHandlers.ListBrands)
	v1.GET("/game-types", catalogHandlers.ListGameTypes)
	v1.GET("/audiences", catalogHandlers.ListAudiences)

	// Authenticated endpoints
	authed := v1.Group("", middleware.JWT(cfg.JWTSecret))
	authed.GET("/users/me", userHandlers.GetMe)
	authed.PUT("/users/me", userHandlers.UpdateMe)
	authed.POST("/products/:id/reviews", reviewHandlers.CreateReview)
	authed.GET("/cart", cartHandlers.ListItems)
	authed.DELETE("/cart", cartHandlers.Clear)
	authed.POST("/cart/items", cartHandlers.AddItem)
	authed.PUT("/cart/items/:id", cartHandlers.UpdateItem)
	authed.DELETE("/cart/items/:id", cartHandlers.RemoveItem)
	authed.POST("/orders", orderHandlers.Checkout)
	authed.GET("/orders", orderHandlers.ListOrders)
	authed.GET("/orders/:id", orderHandlers.GetOrder)
	authed.PUT("/orders/:id/status", orderHandlers.UpdateOrderStatus)
	authed.POST("/orders/:id/payment-intent", orderHandlers.CreatePaymentIntent)

	// Admin endpoints
	admin := v1.Group("/admin", middleware.JWT(cfg.JWTSecret), middleware.AdminOnly())
	admin.GET("/users", userHandlers.ListUsers)
	admin.POST("/products", productHandlers.CreateProduct)
	admin.PUT("/products/:id", productHandlers.UpdateProduct)
	admin.DELETE("/products/:id", productHandlers.DeleteProduct)
	admin.POST("/products/:id/images", imageHandlers.UploadImage)
	admin.PUT("/products/:id/images/order", imageHandlers.ReorderImages)
	admin.DELETE("/products/:id/images/:imageId", imageHandlers.DeleteImage)
	admin.DELETE("/products/:id/reviews/:reviewId", reviewHandlers.DeleteReview)
	admin.POST("/categories", catalogHandlers.CreateCategory)
	admin.PUT("/categories/:id", catalogHandlers.UpdateCategory)
	admin.DELETE("/categories/:id", catalogHandlers.DeleteCategory)
	admin.POST("/brands", catalogHandlers.CreateBrand)
	admin.DELETE("/brands/:id", catalogHandlers.DeleteBrand)
	admin.POST("/game-types", catalogHandlers.CreateGameType)
	admin.DELETE("/game-types/:id", catalogHandlers.DeleteGameType)
	admin.POST("/audiences", catalogHandlers.CreateAudience)
	admin.DELETE("/audiences/:id", catalogHandlers.DeleteAudience)

	log.Printf("Starting server on port %d", cfg.Port)
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
