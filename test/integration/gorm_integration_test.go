package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/repository/unitofwork"
	"marketplace-billing-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.SubscriptionRepository())
	assert.NotNil(t, uow.PaymentRepository())
	assert.NotNil(t, uow.WalletRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Subscription Repository", func(t *testing.T) {
		count, err := uow.SubscriptionRepository().CountByStatus(context.Background(), entity.SubscriptionStatusActive)
		assert.NoError(t, err)
		t.Logf("Active subscription count: %d", count)
	})

	t.Run("Check Payment CAS absorbs unknown transaction", func(t *testing.T) {
		won, err := uow.PaymentRepository().CompletePending(
			context.Background(),
			"SUB-"+uuid.New().String(),
			entity.PaymentStateSuccess,
			nil,
			"",
			time.Now(),
		)
		assert.NoError(t, err)
		assert.False(t, won)
	})

	t.Run("Check Wallet row under transaction", func(t *testing.T) {
		ctx := context.Background()
		txUow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, txUow.Begin(ctx))
		defer txUow.Rollback()

		wallet, err := txUow.WalletRepository().FindForUpdate(ctx)
		require.NoError(t, err)
		require.NotNil(t, wallet)
		assert.True(t, wallet.Balanced())
	})
}
