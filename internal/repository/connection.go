package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// OpenMongoStore connects, makes the key of every family unique and returns the store with
// its disconnect func. The client is disconnected again when index creation fails.
func OpenMongoStore(ctx context.Context, uri, database string, families ...Family) (*MongoStore, func(context.Context) error, error) {
	db, err := ConnectMongoDB(ctx, uri, database)
	if err != nil {
		return nil, nil, err
	}

	store := NewMongoStore(db)
	if err := store.CreateIndexes(ctx, families...); err != nil {
		if dErr := db.Client().Disconnect(context.WithoutCancel(ctx)); dErr != nil {
			err = errors.Join(err, fmt.Errorf("disconnect MongoDB: %w", dErr))
		}
		return nil, nil, err
	}
	return store, db.Client().Disconnect, nil
}

// NewDynamoClient loads the default AWS configuration for region. A non-empty endpoint points
// the client elsewhere, e.g. at dynamodb-local.
func NewDynamoClient(ctx context.Context, region, endpoint string, optFns ...func(*awsconfig.LoadOptions) error) (*dynamodb.Client, error) {
	opts := append([]func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}, optFns...)
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
