// Seeding tool that fills an empty transactions table with generated sales.
// Usage (env overrides):
//
//	SEED_COUNT=150 SEED_BATCH_SIZE=50
//
// Reads DATABASE_URL and DB_DRIVER via salesledger/pkg/config. A table that
// already holds rows is left untouched.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"salesledger/internal/repository/postgres"
	"salesledger/internal/seed"
	"salesledger/pkg/config"
	"salesledger/pkg/errors"
	"salesledger/pkg/logger"
	"salesledger/pkg/validator"
)

func main() {
	cfg := config.Load()
	log := logger.NewWithLevel("seed", cfg.Log.Level)

	cfg.Store.Driver = config.StoreSQL
	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	repo := postgres.NewTransactionRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	existing, err := repo.CountAll(ctx)
	if err != nil {
		log.Fatal("Failed to count transactions", map[string]interface{}{"error": err.Error()})
	}
	if existing > 0 {
		log.Info("Transactions table not empty, skipping seed", map[string]interface{}{"existing": existing})
		return
	}

	records := seed.Generate(cfg.Seed.Count, rand.New(rand.NewSource(time.Now().UnixNano())))

	val := validator.New()
	for _, rec := range records {
		if err := val.Validate(rec); err != nil {
			log.Fatal("Generated record failed validation", map[string]interface{}{
				"error":          errors.Wrap(errors.ErrInvalidRecord, err.Error()).Error(),
				"transaction_id": rec.TransactionID,
			})
		}
	}

	for i, batch := range seed.Batches(records, cfg.Seed.BatchSize) {
		if err := repo.InsertBatch(ctx, batch); err != nil {
			log.Fatal("Failed to insert batch", map[string]interface{}{
				"error": err.Error(),
				"batch": i,
			})
		}
		log.Debug("Batch inserted", map[string]interface{}{"batch": i, "size": len(batch)})
	}

	log.Info("Transactions seeded", map[string]interface{}{"count": len(records)})
	fmt.Printf("OK: %d transactions seeded\n", len(records))
}
