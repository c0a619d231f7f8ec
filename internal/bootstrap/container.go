package bootstrap

import (
	"context"
	"log"
	"time"

	"carematch-be/internal/config"
	"carematch-be/internal/controller"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/pkg/mailer"
	"carematch-be/internal/pkg/serverutils"
	"carematch-be/internal/repository/memory"
	"carematch-be/internal/repository/unitofwork"
	"carematch-be/internal/service"
	"carematch-be/pkg/eventbus"
	"carematch-be/pkg/events"
	"carematch-be/pkg/gateway"
	"carematch-be/pkg/gateway/midtrans"
	"carematch-be/pkg/gateway/mock"
	"carematch-be/pkg/lock"

	pktNats "carematch-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	MatchController        controller.IMatchController
	ConversationController controller.IConversationController
	ReviewController       controller.IReviewController
	TransactionController  controller.ITransactionController
	UserController         controller.IUserController
	HealthController       controller.IHealthController

	MatchService        service.IMatchService
	TransactionService  service.ITransactionService
	SweeperService      service.ISweeperService
	NotificationService *service.NotificationService

	Logger logger.ILogger
	Bus    *eventbus.Bus

	natsPub *pktNats.Publisher
	rdb     *redis.Client
	cfg     *config.Config
}

// NewContainer wires every dependency. A nil db selects the in-memory store.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var uowFactory unitofwork.RepositoryFactory
	checks := map[string]controller.HealthCheck{}
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	} else {
		log.Printf("[WARN] Using in-memory store, data is lost on restart")
		uowFactory = memory.NewStore()
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			cfg.App.BaseURL,
			sysLogger,
		)
	} else {
		emailService = mailer.NewLogOnlyEmailService(sysLogger)
	}

	bus := eventbus.New(sysLogger)
	publishers := []events.Publisher{bus}

	natsPub, err := pktNats.NewPublisher(context.Background(), cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		publishers = append(publishers, natsPub)
	}
	publisher := events.NewMultiPublisher(publishers...)

	var locker lock.Locker
	rdb := newRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb)
	}

	paymentGateway := newGateway(cfg)

	profiles := service.NewProfileResolver(uowFactory, cfg.App.ProfileCacheTTL)
	matchService := service.NewMatchService(uowFactory, profiles, publisher, sysLogger, cfg.Match.RequestTTL)
	messagingService := service.NewMessagingService(uowFactory, publisher, sysLogger)
	reviewService := service.NewReviewService(uowFactory, publisher, sysLogger)
	transactionService := service.NewTransactionService(uowFactory, paymentGateway, publisher, sysLogger, service.PaymentSettings{
		Currency:       cfg.Payment.Currency,
		ReturnURL:      cfg.App.BaseURL + cfg.Payment.ReturnPath,
		CancelURL:      cfg.App.BaseURL + cfg.Payment.CancelPath,
		GatewayTimeout: cfg.Payment.GatewayTimeout,
		PendingTTL:     cfg.Payment.PendingTTL,
	})
	accountService := service.NewAccountService(uowFactory, profiles, sysLogger)
	sweeperService := service.NewSweeperService(matchService, transactionService, locker, cfg.Match.SweepInterval, sysLogger)
	notificationService := service.NewNotificationService(uowFactory, emailService, sysLogger)

	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	auth := serverutils.JwtMiddleware(cfg.Auth.JwtSecret)

	return &Container{
		MatchController:        controller.NewMatchController(matchService, profiles, auth),
		ConversationController: controller.NewConversationController(messagingService, auth),
		ReviewController:       controller.NewReviewController(reviewService, auth),
		TransactionController:  controller.NewTransactionController(transactionService, auth),
		UserController:         controller.NewUserController(accountService, auth),
		HealthController:       controller.NewHealthController(checks),

		MatchService:        matchService,
		TransactionService:  transactionService,
		SweeperService:      sweeperService,
		NotificationService: notificationService,

		Logger: sysLogger,
		Bus:    bus,

		natsPub: natsPub,
		rdb:     rdb,
		cfg:     cfg,
	}
}

// Start launches the sweeper and, when enabled, in-process notifications.
// Both stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	if c.cfg.App.InProcessNotifications {
		if err := c.Bus.Subscribe(ctx, "notifications", c.NotificationService.HandleEvent); err != nil {
			return err
		}
	}
	go c.SweeperService.Run(ctx)
	return nil
}

func (c *Container) Close() {
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	if err := c.Bus.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	_ = c.Logger.Sync()
}

func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Sweeps will not be coordinated across instances", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newGateway(cfg *config.Config) gateway.Gateway {
	if cfg.Payment.Provider == "midtrans" {
		log.Printf("[INFO] Using payment gateway: MIDTRANS (production=%v)", cfg.Payment.MidtransProduction)
		return midtrans.New(cfg.Payment.MidtransServerKey, cfg.Payment.MidtransProduction)
	}
	log.Printf("[INFO] Using payment gateway: MOCK")
	return mock.New(cfg.App.BaseURL + "/mock-gateway")
}
