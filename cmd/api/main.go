package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"slem/internal/adapter/api"
	"slem/internal/adapter/api/handler"
	apimiddleware "slem/internal/adapter/api/middleware"
	"slem/internal/adapter/api/router"
	"slem/internal/adapter/repository"
	domainrepo "slem/internal/domain/repository"
	"slem/internal/infrastructure/cache"
	"slem/internal/infrastructure/firebase"
	"slem/internal/infrastructure/jwt"
	"slem/internal/infrastructure/messaging"
	"slem/internal/infrastructure/ratelimit"
	"slem/internal/infrastructure/storage"
	"slem/internal/infrastructure/websocket"
	"slem/internal/usecase"
	"slem/pkg/config"
	"slem/pkg/logger"
	"slem/pkg/response"
)

type repositories struct {
	users    domainrepo.UserRepository
	products domainrepo.ProductRepository
	ledger   domainrepo.StockLedger
	carts    domainrepo.CartRepository
	orders   domainrepo.OrderRepository
	chats    domainrepo.ChatRepository
	reviews  domainrepo.ReviewRepository
	profiles domainrepo.SellerProfileRepository
}

func firestoreRepositories(client *firestore.Client) repositories {
	return repositories{
		users:    repository.NewFirestoreUserRepository(client),
		products: repository.NewFirestoreProductRepository(client),
		ledger:   repository.NewFirestoreStockLedger(client),
		carts:    repository.NewFirestoreCartRepository(client),
		orders:   repository.NewFirestoreOrderRepository(client),
		chats:    repository.NewFirestoreChatRepository(client),
		reviews:  repository.NewFirestoreReviewRepository(client),
		profiles: repository.NewFirestoreSellerProfileRepository(client),
	}
}

func memoryRepositories() repositories {
	store := repository.NewMemoryStore()
	return repositories{
		users:    repository.NewMemoryUserRepository(store),
		products: repository.NewMemoryProductRepository(store),
		ledger:   repository.NewMemoryStockLedger(store),
		carts:    repository.NewMemoryCartRepository(store),
		orders:   repository.NewMemoryOrderRepository(store),
		chats:    repository.NewMemoryChatRepository(store),
		reviews:  repository.NewMemoryReviewRepository(store),
		profiles: repository.NewMemorySellerProfileRepository(store),
	}
}

func googleCredentials(cfg *config.Config) option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	}
	if cfg.FirebaseServiceAccountPath != "" {
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		return option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []option.ClientOption
	if opt := googleCredentials(cfg); opt != nil {
		opts = append(opts, opt)
	}

	var repos repositories
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		repos = memoryRepositories()
	default:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		repos = firestoreRepositories(firestoreClient)
	}

	tokens := jwt.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)

	var productCache usecase.ProductCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		productCache = cache.NewRedisCache(redisClient, "slem:products", cfg.ProductCacheTTL)
	} else {
		productCache = cache.NewMemoryCache(cfg.ProductCacheTTL)
	}

	var notifier interface {
		usecase.Notifier
		Close() error
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier, err := messaging.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		if err != nil {
			log.Fatalf("Failed to connect to Kafka: %v", err)
		}
		notifier = kafkaNotifier
	} else {
		notifier = messaging.NewLogNotifier()
	}
	defer notifier.Close()

	var images usecase.ImageStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		images = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set; product image upload is disabled")
	}

	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Rule{
		ratelimit.ActionCart:        {Burst: cfg.CartRateLimit, Window: cfg.CartRateWindow},
		ratelimit.ActionSendMessage: {Burst: cfg.ChatRateLimit, Window: cfg.ChatRateWindow},
		ratelimit.ActionAuth:        {Burst: 10, Window: time.Minute},
	})
	limiter.StartCleanupRoutine(ctx)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	authUseCase := usecase.NewAuthUseCase(repos.users, repos.profiles, tokens)
	userUseCase := usecase.NewUserUseCase(repos.users)
	productUseCase := usecase.NewProductUseCase(repos.products, repos.ledger, repos.users, productCache, images)
	cartUseCase := usecase.NewCartUseCase(repos.carts, repos.products)
	orderUseCase := usecase.NewOrderUseCase(repos.orders, repos.products, repos.ledger, repos.users, wsManager, notifier, cfg.DeliveryFee)
	chatUseCase := usecase.NewChatUseCase(repos.chats, repos.users, repos.products, wsManager, notifier, limiter)
	reviewUseCase := usecase.NewReviewUseCase(repos.reviews, repos.orders)
	profileUseCase := usecase.NewSellerProfileUseCase(repos.profiles, repos.users)

	resolvers := []apimiddleware.IdentityResolver{apimiddleware.NewJWTResolver(tokens, repos.users)}
	if cfg.FirebaseAuthEnabled {
		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		resolvers = append(resolvers, apimiddleware.NewFirebaseResolver(firebase.NewFirebaseAuthClient(authClient), repos.users, authUseCase))
	}
	authMiddleware := apimiddleware.NewAuthMiddleware(resolvers...)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	router.Setup(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authUseCase),
		User:      handler.NewUserHandler(userUseCase),
		Product:   handler.NewProductHandler(productUseCase),
		Cart:      handler.NewCartHandler(cartUseCase),
		Order:     handler.NewOrderHandler(orderUseCase),
		Chat:      handler.NewChatHandler(chatUseCase),
		Review:    handler.NewReviewHandler(reviewUseCase),
		Seller:    handler.NewSellerProfileHandler(profileUseCase),
		WebSocket: handler.NewWebSocketHandler(wsManager, authMiddleware, handler.NewChatGateway(chatUseCase)),
		Health:    handler.NewHealthHandler(wsManager),
	}, authMiddleware, limiter)

	go func() {
		log.Printf("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
