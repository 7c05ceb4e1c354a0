package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"donationhub/internal/config"
	"donationhub/internal/db"
	"donationhub/internal/model"
	"donationhub/internal/repository"
)

// openUserStore connects the credential store selected by STORE_DRIVER. The
// returned func releases its connections.
func openUserStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (repository.UserRepository, func() error, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("database init: %w", err)
		}
		if err := gormDB.WithContext(connectCtx).AutoMigrate(&model.User{}); err != nil {
			return nil, nil, fmt.Errorf("auto-migrate: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("database handle: %w", err)
		}
		log.Info("using mysql user store")
		return repository.NewUserRepository(gormDB), sqlDB.Close, nil

	case config.DriverRedis:
		client, err := db.NewRedis(connectCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("addr", cfg.Redis.Addr).Info("using redis user store")
		return repository.NewRedisUserRepository(client), client.Close, nil

	case config.DriverDynamoDB:
		client, err := db.NewDynamoDB(connectCtx, cfg.DynamoDB)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(logrus.Fields{
			"region": cfg.DynamoDB.Region,
			"table":  cfg.DynamoDB.Table,
		}).Info("using dynamodb user store")
		return repository.NewDynamoUserRepository(client, cfg.DynamoDB.Table), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
