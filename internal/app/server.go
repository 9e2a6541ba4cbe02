// internal/app/server.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"leadscout-service/internal/config"
	"leadscout-service/internal/db"
	domainauth "leadscout-service/internal/domain/auth"
	wstypes "leadscout-service/internal/domain/websocket"
	adminHandler "leadscout-service/internal/handlers/admin"
	authHandler "leadscout-service/internal/handlers/auth"
	candidateHandler "leadscout-service/internal/handlers/candidate"
	leadHandler "leadscout-service/internal/handlers/lead"
	messageHandler "leadscout-service/internal/handlers/message"
	paymentHandler "leadscout-service/internal/handlers/payment"
	planHandler "leadscout-service/internal/handlers/plan"
	scrapeHandler "leadscout-service/internal/handlers/scrape"
	subscriptionHandler "leadscout-service/internal/handlers/subscription"
	wsHandler "leadscout-service/internal/handlers/websocket"
	"leadscout-service/internal/middleware"
	"leadscout-service/internal/pkg/events"
	"leadscout-service/internal/pkg/jwt"
	"leadscout-service/internal/pkg/roles"
	"leadscout-service/internal/pkg/session"
	"leadscout-service/internal/repository/postgres"
	adminService "leadscout-service/internal/service/admin"
	authService "leadscout-service/internal/service/auth"
	leadService "leadscout-service/internal/service/lead"
	messageService "leadscout-service/internal/service/message"
	paymentService "leadscout-service/internal/service/payment"
	scrapeService "leadscout-service/internal/service/scrape"
	subscriptionService "leadscout-service/internal/service/subscription"
	"leadscout-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start(ctx context.Context) error {
	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	defer pool.Close()

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Event Bus -----
	bus := events.NewBus()
	bridge := events.NewBridge(bus, redisClient, logger)
	go bridge.Run(ctx)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(jwtManager.Verifier, sessionManager, logger)
	go hub.Run(ctx)

	// Fan bus events out to connected browsers.
	bus.Subscribe(func(evt events.Event) {
		switch evt.Type {
		case events.TypeSubscriptionChanged:
			hub.BroadcastSubscriptionChanged(evt.UserID)
		case events.TypeScrapeProgress:
			// Events relayed from another instance come through JSON, so
			// numbers may arrive as float64.
			data := wstypes.ScrapeProgressData{}
			switch v := evt.Data["job_id"].(type) {
			case int64:
				data.JobID = v
			case float64:
				data.JobID = int64(v)
			}
			if v, ok := evt.Data["reference"].(string); ok {
				data.Reference = v
			}
			if v, ok := evt.Data["status"].(string); ok {
				data.Status = v
			}
			switch v := evt.Data["profile_count"].(type) {
			case int:
				data.ProfileCount = v
			case float64:
				data.ProfileCount = int(v)
			}
			hub.BroadcastScrapeProgress(evt.UserID, data)
		}
	})

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	refreshRepo := postgres.NewRefreshTokenRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	subRepo := postgres.NewSubscriptionRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	scrapeRepo := postgres.NewScrapeRepository(pool)
	candidateRepo := postgres.NewCandidateRepository(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)

	// ----- Services -----
	authSvc := authService.NewService(userRepo, refreshRepo, sessionManager, rateLimiter, jwtManager, logger)
	subSvc := subscriptionService.NewService(planRepo, subRepo, bus, logger)
	paymentSvc := paymentService.NewService(paymentRepo, subSvc, logger)
	scrapeSvc := scrapeService.NewService(scrapeRepo, candidateRepo, subSvc, bus, s.cfg.ScraperEngineURL, logger)
	leadSvc := leadService.NewService(leadRepo, candidateRepo, logger)
	messageSvc := messageService.NewService(messageRepo, leadRepo, logger)
	adminSvc := adminService.NewService(userRepo, refreshRepo, &adminService.RepoStats{
		Subscriptions: subRepo,
		Scrapes:       scrapeRepo,
		Candidates:    candidateRepo,
		Payments:      paymentRepo,
	}, paymentRepo, scrapeRepo, hub, logger)

	// ----- Bootstrap Admin -----
	if err := s.bootstrapAdmin(ctx, userRepo); err != nil {
		logger.Error("failed to bootstrap admin account", zap.Error(err))
	}

	// ----- Handlers -----
	handlers := &Handlers{
		Auth:         authHandler.NewAuthHandler(authSvc),
		Plan:         planHandler.NewPlanHandler(subSvc),
		Subscription: subscriptionHandler.NewSubscriptionHandler(subSvc),
		Payment:      paymentHandler.NewPaymentHandler(paymentSvc),
		Scrape:       scrapeHandler.NewScrapeHandler(scrapeSvc),
		Candidate:    candidateHandler.NewCandidateHandler(scrapeSvc),
		Lead:         leadHandler.NewLeadHandler(leadSvc),
		Message:      messageHandler.NewMessageHandler(messageSvc),
		Admin:        adminHandler.NewAdminHandler(adminSvc),
		WS:           wsHandler.NewWSHandler(hub, s.cfg.AllowedOrigins, logger),
		AuthMW:       middleware.NewAuthMiddleware(jwtManager.Verifier, sessionManager, subSvc, logger),
		EngineAuth:   middleware.EngineAuth(s.cfg.ScraperEngineToken),
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)

	SetupRouter(s.engine, handlers)

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// bootstrapAdmin creates the first administrator account if configured and
// not already present.
func (s *Server) bootstrapAdmin(ctx context.Context, users *postgres.UserRepository) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		s.logger.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	exists, err := users.ExistsByEmail(ctx, s.cfg.AdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &domainauth.User{
		Email:        s.cfg.AdminEmail,
		PasswordHash: string(hash),
		FullName:     sql.NullString{String: s.cfg.AdminName, Valid: true},
		Status:       domainauth.StatusActive,
		Roles:        []string{roles.Prefix + roles.Admin, roles.Prefix + roles.User},
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("admin account created", zap.String("email", s.cfg.AdminEmail))
	return nil
}
