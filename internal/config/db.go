package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client *mongo.Client
	dbMu   sync.Mutex
)

// ConnectDB initializes the shared Mongo client (idempotent).
func ConnectDB(env Env) (*mongo.Client, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if client != nil {
		return client, nil
	}

	opts := options.Client().
		ApplyURI(env.MongoURI).
		SetMaxPoolSize(25).
		SetMaxConnIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	client = c
	return client, nil
}

// PingDB reports whether the shared client is reachable.
func PingDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if client == nil {
		return fmt.Errorf("db not connected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx, readpref.Primary())
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
		client = nil
	}
}
