package setup

import (
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/skylane/skylane-fulfillment-service/internal/client"
	"github.com/skylane/skylane-fulfillment-service/internal/config"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/kafka"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/metrics"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/repository"
	redisinfra "github.com/skylane/skylane-fulfillment-service/internal/infrastructure/redis"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.FulfillmentConfig
	DB           *gorm.DB
	Redis        *redis.Client
	Publisher    *kafka.EventPublisher
	Subscriber   *kafka.EventSubscriber
	Scheduler    *redisinfra.PollJobScheduler
	Metrics      *metrics.FulfillmentMetrics
	Repositories *Repositories
	Booking      domain.BookingProvider
	Payments     domain.PaymentProvider
}

type Repositories struct {
	OrderRepo        domain.OrderRepository
	TicketRepo       domain.TicketDocumentRepository
	WebhookEventRepo domain.WebhookEventRepository
	Ledger           domain.IdempotencyLedger
	CancellationRepo domain.CancellationRepository
	ChangeRepo       domain.ChangeRepository
	RefundRepo       domain.RefundRepository
}

func InitializeDependencies() (*Dependencies, error) {
	cfg := config.MustLoad()

	db := postgres.MustInitDB(cfg)

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisService.Addr,
		DB:   cfg.RedisService.DB,
	})

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}

	repos := &Repositories{
		OrderRepo:        repository.NewDefaultOrderRepository(db),
		TicketRepo:       repository.NewDefaultTicketDocumentRepository(db),
		WebhookEventRepo: repository.NewDefaultWebhookEventRepository(db),
		Ledger:           repository.NewDefaultIdempotencyLedger(db),
		CancellationRepo: repository.NewDefaultCancellationRepository(db),
		ChangeRepo:       repository.NewDefaultChangeRepository(db),
		RefundRepo:       repository.NewDefaultRefundRepository(db),
	}

	return &Dependencies{
		Config:       cfg,
		DB:           db,
		Redis:        redisClient,
		Publisher:    kafka.NewEventPublisher(brokers, cfg.KafkaService.Topic),
		Subscriber:   kafka.NewEventSubscriber(brokers),
		Scheduler:    redisinfra.NewPollJobScheduler(redisClient),
		Metrics:      metrics.NewFulfillmentMetrics(),
		Repositories: repos,
		Booking:      client.NewBookingClient(cfg.BookingProvider.BaseURL, cfg.BookingProvider.APIToken, nil),
		Payments:     client.NewPaymentClient(cfg.PaymentProvider.BaseURL, cfg.PaymentProvider.APIKey, nil),
	}, nil
}
