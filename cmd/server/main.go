package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tipsats.backend/internal/config"
	"tipsats.backend/internal/infrastructure/blockchain"
	"tipsats.backend/internal/infrastructure/custody"
	"tipsats.backend/internal/infrastructure/datasources/postgres"
	"tipsats.backend/internal/infrastructure/jobs"
	"tipsats.backend/internal/infrastructure/models"
	"tipsats.backend/internal/infrastructure/pricing"
	"tipsats.backend/internal/infrastructure/repositories"
	"tipsats.backend/internal/infrastructure/turnkey"
	"tipsats.backend/internal/interfaces/http/handlers"
	"tipsats.backend/internal/interfaces/http/middleware"
	"tipsats.backend/internal/usecases"
	"tipsats.backend/pkg/jwt"
	"tipsats.backend/pkg/logger"
	"tipsats.backend/pkg/redis"
)

const (
	shutdownTimeout    = 10 * time.Second
	nodeRequestTimeout = 15 * time.Second
	otpChallengeTTL    = 10 * time.Minute
)

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.Init
	initRedis       = redis.Init
	openDB          = postgres.NewConnection
	newSessionStore = redis.NewSessionStore
	runServer       = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	shutdownSignal  = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL")

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info(ctx, "Database schema migrated")
	}

	network, err := blockchain.NetworkByName(cfg.Stacks.Network, cfg.Stacks.CoreAPIURL, cfg.Stacks.ExplorerURL)
	if err != nil {
		return err
	}
	// one client, shared by the request path and the sweeper
	node := blockchain.NewStacksClient(network, &http.Client{Timeout: nodeRequestTimeout})

	custodian, otp, err := buildCustody(cfg, network)
	if err != nil {
		return err
	}

	oracle, err := buildOracle(cfg.Pricing)
	if err != nil {
		return err
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	creatorRepo := repositories.NewCreatorRepository(db)
	tipRepo := repositories.NewTipRepository(db)
	uow := repositories.NewUnitOfWork(db)

	authUsecase := usecases.NewAuthUsecase(userRepo, otp, redis.NewOTPChallengeStore(otpChallengeTTL), jwtService, sessionStore)
	walletUsecase := usecases.NewWalletUsecase(walletRepo, custodian, node, network)
	tipUsecase := usecases.NewTipUsecase(creatorRepo, walletRepo, tipRepo, uow, custodian, node, oracle, network)
	creatorUsecase := usecases.NewCreatorUsecase(creatorRepo, tipRepo, network, cfg.Tips.TipLinkBaseURL)

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	sweeper := jobs.NewPendingTipSweeper(tipRepo, tipUsecase, node, cfg.Jobs.PendingSweepInterval, cfg.Jobs.PendingStaleAfter)
	go sweeper.Start(jobCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware("/health", "/metrics"))
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.CORS.AllowedOrigins)
	registerHealthRoute(r, cfg.Server.Version)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:        handlers.NewAuthHandler(authUsecase, sessionStore),
		walletHandler:      handlers.NewWalletHandler(walletUsecase),
		tipHandler:         handlers.NewTipHandler(tipUsecase),
		creatorHandler:     handlers.NewCreatorHandler(creatorUsecase),
		authMiddleware:     middleware.AuthMiddleware(jwtService, sessionStore),
		optionalAuth:       middleware.OptionalAuth(jwtService, sessionStore),
		requireIdempotency: cfg.Tips.RequireIdempotencyKey,
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-shutdownSignal()
		logger.Info(ctx, "Shutting down server")
		sweeper.Stop()
		cancelJobs()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "TipSats backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("network", network.Name),
		zap.String("custody_mode", cfg.Wallet.CustodyMode),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// buildCustody wires the local deriver and, when credentials are present,
// the remote signer. The remote client also serves email OTP.
func buildCustody(cfg *config.Config, network blockchain.Network) (*custody.Router, usecases.OTPProvider, error) {
	deriver, err := custody.NewDeriver(cfg.Wallet.EncryptionSalt, network)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize wallet deriver: %w", err)
	}
	derived := custody.NewDerivedCustodian(deriver)

	var (
		remote *custody.RemoteCustodian
		otp    usecases.OTPProvider
	)
	if cfg.Turnkey.Enabled() {
		stamper, err := turnkey.NewStamper(cfg.Turnkey.APIPublicKey, cfg.Turnkey.APIPrivateKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load custody API key: %w", err)
		}
		client := turnkey.NewClient(turnkey.Options{
			BaseURL:        cfg.Turnkey.BaseURL,
			OrganizationID: cfg.Turnkey.OrganizationID,
			PollInterval:   cfg.Turnkey.PollInterval,
			PollMaxWait:    cfg.Turnkey.PollMaxWait,
		}, stamper)
		remote = custody.NewRemoteCustodian(client, network)
		otp = client
	}

	router, err := custody.NewRouter(cfg.Wallet.CustodyMode, derived, remote)
	if err != nil {
		return nil, nil, err
	}
	return router, otp, nil
}

func buildOracle(cfg config.PricingConfig) (pricing.Oracle, error) {
	fixed, err := pricing.NewFixedOracle(cfg.FixedUSDPerSTX)
	if err != nil {
		return nil, fmt.Errorf("invalid fixed STX price: %w", err)
	}
	if cfg.Source == "coingecko" {
		return pricing.NewCoinGeckoOracle(cfg.CoinGeckoURL, cfg.CacheTTL, fixed, nil), nil
	}
	return fixed, nil
}
