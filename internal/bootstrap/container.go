package bootstrap

import (
	"context"
	"log"
	"time"

	"marketplace-billing-be/internal/config"
	"marketplace-billing-be/internal/controller"
	"marketplace-billing-be/internal/pkg/logger"
	"marketplace-billing-be/internal/pkg/mailer"
	"marketplace-billing-be/internal/repository/memory"
	"marketplace-billing-be/internal/repository/unitofwork"
	"marketplace-billing-be/internal/service"
	"marketplace-billing-be/pkg/fraud"
	"marketplace-billing-be/pkg/gateway"

	pktNats "marketplace-billing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BillingEventsTopic is the in-process bus topic every domain event goes
// through before fan-out to NATS and email.
const BillingEventsTopic = "billing_events"

type Container struct {
	// Controllers
	SubscriptionController controller.ISubscriptionController
	PaymentController      controller.IPaymentController
	AdminController        controller.IAdminController

	// Background Services (Exposed for main.go to run)
	NotifierService service.INotifierService

	// Exposed for the sweep command
	SubscriptionService service.ISubscriptionService
	ReconcilerService   service.IReconcilerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Fraud screening
	fraudChecker := fraud.NewClient(fraud.Config{
		BaseURL:  cfg.Fraud.BaseURL,
		APIKey:   cfg.Fraud.APIKey,
		FailOpen: cfg.Fraud.FailOpen,
	})

	// 3. Services
	publisherService := service.NewPublisherService(BillingEventsTopic, pubSub)
	settledCache := memory.NewSettledCache()

	// The simulated gateway delivers its confirmation webhook straight into
	// the reconciler, which does not exist yet at gateway construction time.
	// The gateway takes the notify hook late, behind its own lock.
	var bindNotify func(gateway.SimulatedNotifyFunc)

	var paymentGateway gateway.Gateway
	if cfg.Gateway.Provider == "midtrans" {
		paymentGateway = gateway.NewMidtransGateway(gateway.MidtransConfig{
			ServerKey:    cfg.Gateway.ServerKey,
			IsProduction: cfg.Gateway.IsProduction,
			FinishURL:    cfg.Gateway.FinishURL,
			Timeout:      time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		})
		log.Printf("[INFO] Using Payment Gateway: MIDTRANS (production=%v)", cfg.Gateway.IsProduction)
	} else {
		simulated := gateway.NewSimulatedGateway(gateway.SimulatedConfig{
			ServerKey:    cfg.Gateway.ServerKey,
			RedirectURL:  cfg.Gateway.FinishURL,
			ConfirmAfter: time.Duration(cfg.Gateway.SimulatedConfirmSec) * time.Second,
		}, nil)
		paymentGateway = simulated
		bindNotify = simulated.SetNotify
		log.Printf("[INFO] Using Payment Gateway: SIMULATED (confirm after %ds)", cfg.Gateway.SimulatedConfirmSec)
	}

	walletService := service.NewWalletService(uowFactory, publisherService, sysLogger)
	referralService := service.NewReferralService(uowFactory, publisherService, sysLogger)
	statsService := service.NewStatsService(uowFactory, sysLogger)

	subscriptionService := service.NewSubscriptionService(
		uowFactory,
		paymentGateway,
		fraudChecker,
		publisherService,
		rdb,
		cfg.Billing,
		sysLogger,
	)

	reconcilerService := service.NewReconcilerService(
		uowFactory,
		subscriptionService,
		walletService,
		referralService,
		statsService,
		publisherService,
		settledCache,
		cfg.Gateway.ServerKey,
		cfg.Billing,
		sysLogger,
	)
	if bindNotify != nil {
		bindNotify(reconcilerService.Process)
	}

	notifierService := service.NewNotifierService(
		pubSub,
		BillingEventsTopic,
		uowFactory,
		natsPub,
		emailService,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),
		PaymentController:      controller.NewPaymentController(reconcilerService, subscriptionService, sysLogger),
		AdminController:        controller.NewAdminController(walletService, statsService, subscriptionService),

		NotifierService:     notifierService,
		SubscriptionService: subscriptionService,
		ReconcilerService:   reconcilerService,
		Logger:              sysLogger,
	}
}
