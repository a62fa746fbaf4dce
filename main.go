package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perfectism-co/easyBuy/catalog"
	appconfig "github.com/perfectism-co/easyBuy/config"
	"github.com/perfectism-co/easyBuy/controllers"
	"github.com/perfectism-co/easyBuy/database"
	"github.com/perfectism-co/easyBuy/events"
	"github.com/perfectism-co/easyBuy/kafka"
	"github.com/perfectism-co/easyBuy/locks"
	"github.com/perfectism-co/easyBuy/logger"
	"github.com/perfectism-co/easyBuy/middleware"
	"github.com/perfectism-co/easyBuy/repository"
	"github.com/perfectism-co/easyBuy/routes"
	"github.com/perfectism-co/easyBuy/services"
)

func main() {
	cfg := appconfig.Load()

	logger.Initialize(cfg.Env)
	defer logger.Sync()

	mongoClient, db, err := database.ConnectMongo(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		logger.Log.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = database.CloseMongo(mongoClient) }()

	userRepo := repository.NewMongoUserRepository(db)
	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Log.Fatal("could not create indexes", zap.Error(err))
	}

	var gateway catalog.Gateway = catalog.NewHTTPGateway(cfg.CatalogURL)
	if redisClient, err := database.ConnectRedis(cfg.RedisURL); err != nil {
		logger.Log.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
	} else {
		gateway = catalog.NewCachedGateway(gateway, redisClient, cfg.CatalogTTL)
		defer func() { _ = redisClient.Close() }()
	}

	var publishers []services.EventPublisher
	if cfg.KafkaBrokers != "" {
		producer := kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer producer.Close()
		publishers = append(publishers, producer)
	}
	if cfg.SNSTopicArn != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			logger.Log.Warn("aws config unavailable, SNS fan-out disabled", zap.Error(err))
		} else {
			publishers = append(publishers, events.NewSNSPublisher(awsCfg, cfg.SNSTopicArn))
		}
	}

	userLocks := locks.NewKeyedMutex()
	tokenService := services.NewTokenService(cfg.JWTSecret, userRepo, userLocks)
	authService := services.NewAuthService(userRepo, tokenService)
	cartService := services.NewCartService(userRepo, gateway, userLocks)
	orderService := services.NewOrderService(userRepo, gateway, userLocks, publishers...)
	reviewService := services.NewReviewService(userRepo, userLocks)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.RateLimit())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	routes.Register(r,
		tokenService,
		controllers.NewAuthController(authService),
		controllers.NewCartController(cartService),
		controllers.NewOrderController(orderService),
		controllers.NewReviewController(reviewService),
	)

	logger.Log.Info("easyBuy backend started", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("error starting server", zap.Error(err))
	}
}
