package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carenest/config"
	"carenest/cron"
	"carenest/database"
	bookingRepo "carenest/database/repository/booking"
	transactionRepo "carenest/database/repository/transaction"
	userRepoPkg "carenest/database/repository/user"
	"carenest/handlers"
	"carenest/routes"
	"carenest/services/booking"
	"carenest/services/notification"
	"carenest/services/payment"
	"carenest/services/storage"
	"carenest/services/tasks"
	"carenest/services/user"
	"carenest/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	otpCache := utils.GetOTPCacheClient()
	stripe.Key = config.AppConfig.StripeKey

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// repositories.
	db := database.DB()
	userRepo := userRepoPkg.NewMongoUserRepo(db)
	txnRepo := transactionRepo.NewMongoTransactionRepo(db)
	bookRepo := bookingRepo.NewMongoBookingRepo(db)

	indexCtx, cancelIndexes := context.WithTimeout(rootCtx, 30*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"users":        userRepo.EnsureIndexes,
		"transactions": txnRepo.EnsureIndexes,
		"bookings":     bookRepo.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Fatal("main: failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	cancelIndexes()

	// notifications.
	var dispatcher notification.Dispatcher = notification.LogDispatcher{Logger: logger}
	if fcmClient, err := utils.InitFCM(rootCtx, config.AppConfig.FirebaseCredentialsFile); err != nil {
		logger.Warn("main: push notifications disabled, logging them instead", zap.Error(err))
	} else if fcm, err := notification.NewFCMDispatcher(userRepo, fcmClient, logger); err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	} else {
		dispatcher = fcm
	}
	notifyQueue := notification.NewQueue(dispatcher, config.AppConfig.NotifyQueueSize, config.AppConfig.NotifyTimeout, logger)
	notifyQueue.Start(rootCtx)
	sms := notification.LogSMSSender{Logger: logger, Redact: config.IsProduction()}

	// reminders.
	queueOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	asynqClient := asynq.NewClient(queueOpts)
	defer asynqClient.Close()
	reminderWorker := cron.InitReminderWorker(bookRepo, notifyQueue, logger)

	qrSweeper, err := cron.StartQRSweeper(bookRepo, logger)
	if err != nil {
		logger.Fatal("main: failed to schedule qr sweeper", zap.Error(err))
	}

	// optional integrations.
	var store storage.StorageService
	if config.AppConfig.CloudinaryCloudName != "" {
		cld, err := storage.NewStorageService(config.AppConfig.CloudinaryCloudName, config.AppConfig.CloudinaryAPIKey, config.AppConfig.CloudinaryAPISecret, logger)
		if err != nil {
			logger.Fatal("main: failed to initialize cloudinary storage service", zap.Error(err))
		}
		store = cld
	}
	var refunder payment.Refunder
	if stripe.Key != "" {
		refunder = payment.NewStripeRefunder()
	}

	// services.
	userService, err := user.NewUserService(userRepo, txnRepo, user.NewRedisCodeStore(otpCache), sms, user.AuthSettings{
		OTPTTL:      config.AppConfig.LoginOTPTTL,
		MaxAttempts: config.AppConfig.LoginOTPMaxAttempts,
		ExposeCodes: !config.IsProduction(),
	}, logger)
	if err != nil {
		logger.Fatal("main: failed to build user service", zap.Error(err))
	}

	settings := booking.DefaultSettings()
	settings.CancellationCutoff = config.AppConfig.CancellationCutoff
	settings.CompletionOTPTTL = config.AppConfig.CompletionOTPTTL
	settings.QRTokenTTL = config.AppConfig.QRTokenTTL
	settings.ReminderLead = config.AppConfig.ReminderLead
	settings.AllowDirectCompletion = config.AppConfig.AllowDirectCompletion
	settings.ExposeCodes = !config.IsProduction()
	settings.Location = config.Location()
	settings.NotifyTimeout = config.AppConfig.NotifyTimeout

	bookingService, err := booking.NewBookingService(
		bookRepo,
		userRepo,
		notifyQueue,
		sms,
		tasks.NewAsynqScheduler(asynqClient),
		store,
		refunder,
		settings,
		logger,
	)
	if err != nil {
		logger.Fatal("main: failed to build booking service", zap.Error(err))
	}

	queueRedis := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueRedis.Close()
	utils.StartHealthMonitor(rootCtx, []*redis.Client{otpCache, queueRedis}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	handlerBundle := handlers.NewHandlerBundle(userService, bookingService)
	routes.RegisterRoutes(router, handlerBundle, userRepo, logger)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	<-qrSweeper.Stop().Done()
	reminderWorker.Shutdown()
	stopBackground()
	notifyQueue.Wait()

	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect failed: %v", err)
	}
	logger.Sugar().Info("main: server stopped gracefully")
}
