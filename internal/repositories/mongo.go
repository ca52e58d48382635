package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/dafailyasa/salt-be-test/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoConfig holds the connection settings for MongoDB.
type MongoConfig struct {
	URI               string
	Database          string
	ConnectionTimeout time.Duration
	SocketTimeout     time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// ConnectMongo connects to MongoDB and verifies the connection with a ping,
// retrying up to cfg.RetryAttempts times with a linear backoff.
func ConnectMongo(ctx context.Context, cfg MongoConfig, log logger.Logger) (*mongo.Client, error) {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout).
		SetServerSelectionTimeout(cfg.ConnectionTimeout)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				log.Info("connected to mongodb", zap.Int("attempt", attempt), zap.String("database", cfg.Database))
				return client, nil
			}
			_ = client.Disconnect(context.Background())
		}

		lastErr = err
		log.Warn("mongodb connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("mongodb connect cancelled: %w", ctx.Err())
			case <-time.After(delay * time.Duration(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", attempts, lastErr)
}
