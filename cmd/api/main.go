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
	"github.com/mahavirtraders/flowtrack/internal/application/service"
	"github.com/mahavirtraders/flowtrack/internal/config"
	domainRepo "github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/internal/infrastructure/cache"
	"github.com/mahavirtraders/flowtrack/internal/infrastructure/database"
	"github.com/mahavirtraders/flowtrack/internal/infrastructure/memory"
	"github.com/mahavirtraders/flowtrack/internal/infrastructure/repository"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/handler"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/middleware"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/routes"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/printer"
	"github.com/mahavirtraders/flowtrack/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Session ports: Redis when configured so several tills behind a load
	// balancer share carts, locks and sign-outs; in process otherwise.
	hub := events.NewHub(64)
	var (
		carts     domainRepo.CartStore
		guard     domainRepo.FinalizeGuard
		blocklist domainRepo.TokenBlocklist
		publisher events.Publisher = hub
	)
	healthChecks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()

		carts = cache.NewCartStore(client, cfg.Sales.CartTTL)
		guard = cache.NewFinalizeGuard(client, cfg.Sales.FinalizeLockTTL)
		blocklist = cache.NewTokenBlocklist(client)
		relay := cache.NewEventRelay(client, hub)
		publisher = relay
		go relay.Run(ctx)

		healthChecks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		log.Printf("Session state in redis at %s", cfg.Redis.Addr)
	} else {
		carts = memory.NewCartStore(cfg.Sales.CartTTL)
		guard = memory.NewFinalizeGuard()
		blocklist = memory.NewTokenBlocklist()
		log.Println("REDIS_ADDR not set, session state kept in process")
	}

	// Initialize repositories
	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	sequenceRepo := repository.NewInvoiceSequenceRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	closingRepo := repository.NewDayClosingRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	printerService := service.NewPrinterService(thermalPrinter, cfg.Printer.Type, service.ReceiptSettings{
		StoreName: cfg.Store.Name,
		Address:   cfg.Store.Address,
		Phone:     cfg.Store.Phone,
		Footer:    cfg.Store.ReceiptFooter,
		Width:     cfg.Printer.Width,
	})
	printQueue := service.NewPrintQueue(printerService, cfg.Printer.QueueSize)
	printQueue.Start(cfg.Printer.Workers)

	// Initialize services
	loc := cfg.Store.Location()
	authService := service.NewAuthService(userRepo, blocklist, jwtManager)
	userService := service.NewUserService(userRepo, roleRepo, transactor, publisher)
	productService := service.NewProductService(productRepo, publisher)
	stockService := service.NewStockService(productRepo, transactor, publisher)
	cartService := service.NewCartService(carts, productRepo)
	salesService := service.NewSalesService(
		carts,
		guard,
		transactor,
		saleRepo,
		sequenceRepo,
		stockService,
		printQueue,
		publisher,
		service.InvoiceSettings{
			Prefix:         cfg.Store.InvoicePrefix,
			Location:       loc,
			DateLayout:     cfg.Store.DateLayout,
			TimeLayout:     cfg.Store.TimeLayout,
			WalkInCustomer: cfg.Store.WalkInCustomer,
		},
	)
	purchaseService := service.NewPurchaseService(purchaseRepo, stockService, transactor, publisher)
	reportService := service.NewReportService(saleRepo, productRepo, expenseRepo, loc)
	attendanceService := service.NewAttendanceService(attendanceRepo, userRepo, publisher, loc)
	expenseService := service.NewExpenseService(expenseRepo, publisher)
	closingService := service.NewDayClosingService(closingRepo, saleRepo, expenseRepo, publisher, loc)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Product:  handler.NewProductHandler(productService, stockService),
		Cart:     handler.NewCartHandler(cartService),
		Sale:     handler.NewSaleHandler(salesService, reportService, loc),
		Purchase: handler.NewPurchaseHandler(purchaseService, loc),
		Report:   handler.NewReportHandler(reportService),
		Ledger:   handler.NewLedgerHandler(attendanceService, expenseService, closingService, loc),
		Printer:  handler.NewPrinterHandler(printerService, salesService, printQueue),
		Stream:   handler.NewStreamHandler(hub),
		Health:   handler.NewHealthHandler(cfg.App.Name, healthChecks),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Revocations:     authService,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Ctx:             ctx,
	})

	go middleware.RunIdempotencyCleanup(ctx, idempotencyRepo, time.Hour)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}

	// Print whatever receipts are still queued before exiting
	printQueue.Close()
	log.Println("Server stopped")
}
