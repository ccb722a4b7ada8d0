package bootstrap

import (
	"context"
	"log"
	"os"
	"time"

	"ai-recall-be/internal/config"
	"ai-recall-be/internal/constant"
	"ai-recall-be/internal/controller"
	"ai-recall-be/internal/pkg/logger"
	"ai-recall-be/internal/pkg/mailer"
	"ai-recall-be/internal/repository/contract"
	"ai-recall-be/internal/repository/memory"
	"ai-recall-be/internal/repository/redislock"
	"ai-recall-be/internal/repository/unitofwork"
	"ai-recall-be/internal/service"
	"ai-recall-be/pkg/embedding"
	"ai-recall-be/pkg/llm/factory"
	"ai-recall-be/pkg/rag/response"
	"ai-recall-be/pkg/rag/search"
	"ai-recall-be/pkg/source"
	"ai-recall-be/pkg/syncengine"

	pktNats "ai-recall-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	ConnectionController controller.IConnectionController
	SyncController       controller.ISyncController
	UploadController     controller.IUploadController
	ChatController       controller.IChatController

	// Background services (exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.App.ClientURL,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	embedder, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.GeminiApiKey,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.EmbeddingDimension,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s, dim=%d)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimension)

	// Memoize so re-embedding an unchanged document during
	// reconciliation does not spend provider quota.
	memoized := embedding.NewMemoizingProvider(embedder, 1*time.Hour)
	pipeline := syncengine.NewPipeline(memoized)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	lockTTL := time.Duration(cfg.Sources.SyncLockTTLSeconds) * time.Second
	var syncLocker contract.SyncLocker
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		// Single-instance fallback. The in-memory lock still serializes
		// runs within this process, which is the common deployment.
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory sync lock", err)
		syncLocker = memory.NewSyncLockRepository(lockTTL)
	} else {
		syncLocker = redislock.NewSyncLockRepository(rdb, lockTTL)
	}

	// 5. Platform providers
	providers := map[string]source.Provider{
		source.TagTwitter: source.NewTwitterProvider(
			source.NewCallPolicy(cfg.Sources.TwitterRequestsPerMinute, 1),
		),
		source.TagReddit: source.NewRedditProvider(
			source.NewCallPolicy(cfg.Sources.RedditRequestsPerMinute, 2),
			cfg.Sources.RedditUserAgent,
		),
	}

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, constant.TopicSyncJobs)

	engineLog := log.New(os.Stdout, "", log.LstdFlags)
	syncService := service.NewSyncService(
		uowFactory,
		providers,
		pipeline,
		syncLocker,
		publisherService,
		natsPub,
		sysLogger,
		engineLog,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		constant.TopicSyncJobs,
		syncService,
	)

	searcher := search.NewSearcher(pipeline, service.NewSearchStore(uowFactory), engineLog)
	generator := response.NewGenerator(llmProvider, engineLog)

	authService := service.NewAuthService(uowFactory)
	connectionService := service.NewConnectionService(uowFactory)
	chatService := service.NewChatService(uowFactory, searcher, generator)

	notificationService := service.NewNotificationService(uowFactory, natsSub, emailService, sysLogger)

	// 7. Controllers
	return &Container{
		AuthController:       controller.NewAuthController(authService),
		ConnectionController: controller.NewConnectionController(connectionService),
		SyncController:       controller.NewSyncController(syncService),
		UploadController:     controller.NewUploadController(syncService),
		ChatController:       controller.NewChatController(chatService),

		ConsumerService:     consumerService,
		NotificationService: notificationService,
	}
}
