// Package store defines the document-store surface the data service runs
// on. The production implementation wraps a MongoDB collection; tests and
// driverless local runs use the in-memory implementation in store/memory.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// FindOptions carries the sort/skip/limit/projection of one paged read.
type FindOptions struct {
	Sort       bson.D
	Skip       int64
	Limit      int64
	Projection bson.M
}

// Collection is the operation surface one entity collection exposes.
// Single-document lookups return (nil, nil) when nothing matches; the
// service layer turns that into its not-found contract. Uniqueness
// violations surface as domain.ConflictError.
type Collection interface {
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error)
	FindOne(ctx context.Context, filter bson.M, projection bson.M) (bson.M, error)
	InsertOne(ctx context.Context, doc bson.M) (any, error)
	FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (bson.M, error)
	FindOneAndDelete(ctx context.Context, filter bson.M) (bson.M, error)
	UpdateMany(ctx context.Context, filter bson.M, update bson.M) (matched int64, modified int64, err error)
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
	CountDocuments(ctx context.Context, filter bson.M) (int64, error)
	Distinct(ctx context.Context, field string, filter bson.M) ([]any, error)
	Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error)
}
