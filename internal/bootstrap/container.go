package bootstrap

import (
	"context"
	"log"

	"ai-docassist/internal/config"
	"ai-docassist/internal/controller"
	"ai-docassist/internal/handler"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/pkg/mailer"
	"ai-docassist/internal/repository/memory"
	"ai-docassist/internal/repository/unitofwork"
	"ai-docassist/internal/service"
	"ai-docassist/internal/websocket"
	"ai-docassist/pkg/agent"
	"ai-docassist/pkg/embedding"
	"ai-docassist/pkg/llm/factory"
	pktNats "ai-docassist/pkg/nats"
	"ai-docassist/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController  controller.IAuthController
	OAuthController controller.IOAuthController
	ChatController  controller.IChatController
	AgentController controller.IAgentController

	// Background services (exposed for main.go to run)
	ConsumerService service.IDocumentConsumerService
	AuditService    service.IAuditService

	// WebSockets
	WebSocketHandler *handler.WebSocketHandler
	WebSocketHub     *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLoggerWithCores(
		cfg.App.LogFilePath,
		cfg.App.Environment == "production",
		logger.NewDBCore(db),
	)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. In-process event bus for the document pipeline
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbedModel,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	searchClient := websearch.NewClient(cfg.Ai.TavilyAPIKey)

	// In-memory processing status mirror
	statusStore := memory.NewProcessingStatusStore()

	// 4. Infrastructure: NATS, Redis, WebSocket hub
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Agents
	retriever := service.NewChunkRetriever(uowFactory, embeddingProvider)
	registry := agent.NewRegistry(
		agent.NewLightweightAgent(llmProvider),
		agent.NewChatAgent(llmProvider),
		agent.NewDocumentAgent(llmProvider, retriever),
		agent.NewMultimodalAgent(llmProvider, retriever),
		agent.NewResearchAgent(llmProvider, searchClient),
	)
	selector := agent.NewSelector()

	// 6. Services
	authService := service.NewAuthService(uowFactory, emailService, natsPub, cfg, sysLogger)
	oauthService := service.NewOAuthService(uowFactory, authService, cfg, natsPub, sysLogger)
	chatService := service.NewChatService(uowFactory)
	documentService := service.NewDocumentService(
		uowFactory,
		pubSub,
		cfg.Ai.ProcessTopic,
		statusStore,
		natsPub,
		sysLogger,
	)
	consumerService := service.NewDocumentConsumerService(
		pubSub,
		cfg.Ai.ProcessTopic,
		uowFactory,
		embeddingProvider,
		statusStore,
		natsPub,
		wsHub,
		sysLogger,
	)
	agentService := service.NewAgentService(
		registry,
		selector,
		chatService,
		documentService,
		uowFactory,
		rdb,
		natsPub,
		sysLogger,
	)
	healthService := service.NewHealthService(db, rdb, natsPub, cfg.Ai.LLMProvider+"/"+cfg.Ai.LLMModel)

	auditService := service.NewAuditService(natsSub, uowFactory, sysLogger)
	if err := auditService.Start(); err != nil {
		log.Printf("[WARN] Failed to start audit trail: %v", err)
	}

	// 7. Handlers & controllers
	wsHandler := handler.NewWebSocketHandler(wsHub, cfg, wsLogger)

	return &Container{
		AuthController:  controller.NewAuthController(authService),
		OAuthController: controller.NewOAuthController(oauthService),
		ChatController:  controller.NewChatController(chatService),
		AgentController: controller.NewAgentController(agentService, documentService, healthService, sysLogger),

		ConsumerService: consumerService,
		AuditService:    auditService,

		WebSocketHandler: wsHandler,
		WebSocketHub:     wsHub,
	}
}
