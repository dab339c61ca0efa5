package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/events"
	"github.com/wearvault/storefront-service/internal/handler"
	"github.com/wearvault/storefront-service/internal/repository"
	"github.com/wearvault/storefront-service/internal/service"
	"github.com/wearvault/storefront-service/pkg/auth"
	"github.com/wearvault/storefront-service/pkg/config"
	"github.com/wearvault/storefront-service/pkg/middleware"
	pkgtls "github.com/wearvault/storefront-service/pkg/tls"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	dynamoClient, err := repository.NewDynamoDBClient(cfg)
	if err != nil {
		log.Fatal("Failed to create DynamoDB client:", err)
	}

	productRepo := repository.NewProductRepository(dynamoClient, cfg.ProductTableName)
	userRepo := repository.NewUserRepository(dynamoClient, cfg.UserTableName)
	orderRepo := repository.NewOrderRepository(dynamoClient, cfg.OrderTableName)

	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	var publisher service.EventPublisher
	if cfg.KafkaEnabled {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		publisher = producer
	}

	catalogService := service.NewCatalogService(productRepo, logger)
	orderService := service.NewOrderService(productRepo, productRepo, orderRepo, userRepo, publisher, logger)
	userService := service.NewUserService(userRepo, tokens, logger)

	productHandler := handler.NewProductHandler(catalogService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	userHandler := handler.NewUserHandler(userService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/signup", userHandler.Signup)
		v1.POST("/auth/login", userHandler.Login)

		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.POST("/products", productHandler.CreateProduct)

		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "healthy", "timestamp": time.Now()})
		})

		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(tokens, logger))
		{
			authed.GET("/user/profile", userHandler.GetProfile)
			authed.POST("/orders", orderHandler.CreateOrder)
			authed.GET("/orders", orderHandler.ListOrders)
			authed.GET("/orders/:id", orderHandler.GetOrder)
			authed.POST("/wishlist", userHandler.AddToWishlist)
			authed.DELETE("/wishlist/:productId", userHandler.RemoveFromWishlist)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	tlsConfig, err := pkgtls.LoadTLSConfig(&cfg.TLS, logger)
	if err != nil {
		log.Fatal("Failed to load TLS config:", err)
	}
	defer pkgtls.Cleanup()

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		var serveErr error
		if tlsConfig != nil {
			srv.TLSConfig = tlsConfig
			go pkgtls.WatchCertificates(&cfg.TLS, logger)
			serveErr = srv.ListenAndServeTLS("", "")
		} else {
			serveErr = srv.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(serveErr))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
