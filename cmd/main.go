package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/satorioh/dashop/internal/api"
	"github.com/satorioh/dashop/internal/cache"
	"github.com/satorioh/dashop/internal/config"
	"github.com/satorioh/dashop/internal/notifier"
	"github.com/satorioh/dashop/internal/payment"
	"github.com/satorioh/dashop/internal/repository"
	"github.com/satorioh/dashop/internal/service"
	"github.com/satorioh/dashop/migrations"
)

func main() {
	_ = godotenv.Load()

	db, err := config.NewMySQL()
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}

	if err := migrations.AutoMigrateSKUs(3, db); err != nil {
		log.Fatalf("Failed to migrate skus table: %v", err)
	}
	if err := migrations.AutoMigrateAddresses(3, db); err != nil {
		log.Fatalf("Failed to migrate addresses table: %v", err)
	}
	if err := migrations.AutoMigrateOrders(3, db); err != nil {
		log.Fatalf("Failed to migrate orders table: %v", err)
	}
	if err := migrations.AutoMigrateOrderGoods(3, db); err != nil {
		log.Fatalf("Failed to migrate order_goods table: %v", err)
	}

	carts := cache.NewRedisStore(config.NewRedisShards())
	kafkaWriter := config.NewKafkaWriter("order-topic")

	catalog := repository.NewSKURepository(db)
	checkoutRepo := repository.NewCheckoutRepository(db)

	cartSvc := service.NewCartService(carts, catalog)
	checkoutSvc := service.NewCheckoutService(
		carts,
		catalog,
		checkoutRepo,
		notifier.NewKafka(kafkaWriter),
		payment.NewSandbox(config.GetEnvOrDefault("PAY_BASE_URL", "http://localhost:8090")),
	)

	handler := api.NewHandler(cartSvc, checkoutSvc)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(20),
				Burst:     40,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.Request().RemoteAddr, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	handler.Register(e, api.AuthMiddleware(config.JWTSecret()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "dashop",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":" + config.GetEnvOrDefault("PORT", "8000")))
}
