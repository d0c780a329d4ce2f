package postgres

import (
	"log"

	"github.com/skylane/skylane-fulfillment-service/internal/config"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.FulfillmentConfig) *gorm.DB {
	dsn := cfg.FulfillmentDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.OrderModel{},
		&models.TicketDocumentModel{},
		&models.WebhookEventModel{},
		&models.IdempotencyKeyModel{},
		&models.CancellationModel{},
		&models.ChangeRequestModel{},
		&models.ChangeOfferModel{},
		&models.ChangeModel{},
		&models.RefundModel{},
	)

	return db
}
