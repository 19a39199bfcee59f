package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,48}$`)

// ValidTenantID reports whether id can be used as part of a database name.
func ValidTenantID(id string) bool {
	return tenantIDPattern.MatchString(id)
}

// Connect opens the MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info("Connected to MongoDB successfully")
	return client, nil
}

// TenantDatabase returns the isolated database of one tenant.
func TenantDatabase(client *mongo.Client, prefix, tenantID string) *mongo.Database {
	return client.Database(prefix + tenantID)
}
