package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/config"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/internal/infrastructure/cache"
	"github.com/sangkips/gstpos-api/internal/infrastructure/database"
	"github.com/sangkips/gstpos-api/internal/infrastructure/journal"
	"github.com/sangkips/gstpos-api/internal/infrastructure/messaging"
	"github.com/sangkips/gstpos-api/internal/infrastructure/observability"
	"github.com/sangkips/gstpos-api/internal/infrastructure/repository"
	"github.com/sangkips/gstpos-api/internal/presentation/http/handler"
	"github.com/sangkips/gstpos-api/internal/presentation/http/routes"
	"github.com/sangkips/gstpos-api/pkg/email"
	"github.com/sangkips/gstpos-api/pkg/oauth"
	"github.com/sangkips/gstpos-api/pkg/printer"
	"github.com/sangkips/gstpos-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLogger(cfg.App.Env, cfg.Observability.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.TracingEnabled {
		shutdownTracer, err := observability.InitTracer(cfg.App.Name, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracer(sctx)
			}()
		}
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.IsProduction())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.SeedDefaultData(ctx, db, cfg.Admin); err != nil {
		logger.Warn("failed to seed default data", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	dataAdminRepo := repository.NewDataAdminRepository(db)

	var idempotencyRepo domainRepo.IdempotencyRepository = repository.NewIdempotencyRepository(db)
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("redis unavailable, idempotency keys stay in postgres", zap.Error(err))
		} else {
			defer rdb.Close()
			idempotencyRepo = cache.NewIdempotencyRepository(rdb)
		}
	}
	go sweepIdempotencyKeys(ctx, idempotencyRepo, time.Hour, logger)

	// Audit journal
	var auditJournal domainRepo.AuditJournal
	if cfg.Journal.Path != "" {
		if j, err := journal.Open(cfg.Journal.Path); err != nil {
			logger.Warn("audit journal disabled", zap.Error(err))
		} else {
			defer j.Close()
			auditJournal = j
		}
	}
	auditService := service.NewAuditService(auditRepo, auditJournal, logger)
	if auditJournal != nil {
		go auditService.RunJournalFlusher(ctx, cfg.Journal.FlushInterval)
	}

	// Sale events
	var events service.EventPublisher = messaging.NopProducer{}
	if cfg.Kafka.Enabled {
		producer := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.SalesTopic)
		defer producer.Close()
		events = producer
	}

	storeHeader := entity.ReceiptHeader{
		StoreName: cfg.Store.Name,
		Address:   cfg.Store.Address,
		Phone:     cfg.Store.Phone,
		GSTIN:     cfg.Store.GSTIN,
	}

	var mailer service.InvoiceMailer
	if cfg.Email.Enabled {
		emailService := email.NewEmailService(email.EmailConfig{
			SMTPHost:     cfg.Email.SMTPHost,
			SMTPPort:     cfg.Email.SMTPPort,
			SMTPUsername: cfg.Email.SMTPUsername,
			SMTPPassword: cfg.Email.SMTPPassword,
			FromName:     cfg.Email.FromName,
			FromEmail:    cfg.Email.FromEmail,
		})
		mailer = service.NewEmailInvoiceMailer(emailService, storeHeader)
	}

	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
		StateSecret:        cfg.JWT.Secret,
	})

	printerCfg := printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	}
	thermalPrinter, err := printer.New(printerCfg)
	if err != nil {
		logger.Warn("failed to initialize printer, receipts will be returned as JSON", zap.Error(err))
		printerCfg = printer.Config{Type: printer.TypeNone}
		thermalPrinter, _ = printer.New(printerCfg)
	}
	defer thermalPrinter.Close()

	// Services
	authService := service.NewAuthService(userRepo, roleRepo, jwtManager, logger)
	userService := service.NewUserService(userRepo, roleRepo, auditService)
	productService := service.NewProductService(productRepo, auditService)
	customerService := service.NewCustomerService(customerRepo, auditService)
	checkoutService := service.NewCheckoutService(productRepo, customerRepo, invoiceRepo, auditService, events, mailer, logger)
	invoiceService := service.NewInvoiceService(invoiceRepo)
	dashboardService := service.NewDashboardService(productRepo, customerRepo, invoiceRepo, analyticsRepo)
	exportService := service.NewExportService(productRepo, customerRepo, invoiceRepo, userRepo, dataAdminRepo, auditService, logger)
	printerService := service.NewPrinterService(thermalPrinter, printerCfg, cfg.Printer.CharWidth, invoiceService, storeHeader, logger)

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService, googleOAuthService, cfg.JWT.ExpiryHours, logger),
		Product:   handler.NewProductHandler(productService),
		Customer:  handler.NewCustomerHandler(customerService),
		Checkout:  handler.NewCheckoutHandler(checkoutService),
		Invoice:   handler.NewInvoiceHandler(invoiceService, printerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Audit:     handler.NewAuditHandler(auditService),
		User:      handler.NewUserHandler(userService),
		Export:    handler.NewExportHandler(exportService, logger),
		Printer:   handler.NewPrinterHandler(printerService),
		Health:    handler.NewHealthHandler(sqlDB),
	}

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Approvals:       userService,
		RateLimiter:     rateLimiter,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("name", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := checkoutService.Drain(shutdownCtx); err != nil {
		logger.Warn("invoice e-mails still queued at shutdown were dropped", zap.Error(err))
	}
}

func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				logger.Warn("failed to sweep idempotency keys", zap.Error(err))
			}
		}
	}
}
