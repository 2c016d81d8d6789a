// Command admin_seed provisions the ledger's admin user, records the default
// exchange rates when none are configured and prints an admin access token.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"kudi/internal/config"
	"kudi/internal/logger"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/services/rates"
	"kudi/internal/utils"

	"go.uber.org/zap"
)

const tokenTTL = 24 * time.Hour

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	adminID := config.GetEnv("ADMIN_USER_ID", "admin")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		log.Fatal("ADMIN_EMAIL must be set in environment")
	}

	db, err := repositories.Open(cfg)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store := repositories.NewStore(db)

	if err := store.Users.Upsert(ctx, &models.User{
		UserID:   adminID,
		Email:    adminEmail,
		Role:     models.RoleAdmin,
		IsActive: true,
	}); err != nil {
		log.Fatal("failed to create admin user", zap.Error(err))
	}
	log.Info("admin user ready", zap.String("user_id", adminID), zap.String("email", adminEmail))

	rateSvc := rates.NewService(store, nil, rates.Config{}, log)
	for from, targets := range rates.Defaults {
		for to, value := range targets {
			existing, err := store.Rates.Active(ctx, from, to, time.Now().UTC())
			if err != nil {
				log.Fatal("failed to read exchange rates", zap.Error(err))
			}
			if existing != nil {
				continue
			}
			err = store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
				_, err := rateSvc.SetRateTx(ctx, tx, from, to, value, adminID)
				return err
			})
			if err != nil {
				log.Fatal("failed to seed exchange rate", zap.Error(err))
			}
			log.Info("seeded exchange rate",
				zap.String("from", string(from)),
				zap.String("to", string(to)),
				zap.String("rate", value.String()))
		}
	}

	token, err := utils.GenerateToken(models.UserClaims{
		UserID: adminID,
		Email:  adminEmail,
		Role:   models.RoleAdmin,
	}, cfg.JWTSecret, tokenTTL)
	if err != nil {
		log.Fatal("failed to sign admin token", zap.Error(err))
	}
	fmt.Println(token)
}
