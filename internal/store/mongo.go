package store

import (
	"context"
	"errors"
	"fmt"

	"schoolcampus/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection adapts *mongo.Collection to the Collection interface.
type MongoCollection struct {
	coll *mongo.Collection
}

func NewMongoCollection(coll *mongo.Collection) *MongoCollection {
	return &MongoCollection{coll: coll}
}

func (m *MongoCollection) wrapWrite(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return domain.ConflictError{Resource: m.coll.Name(), Msg: "duplicate key", Err: err}
	}
	return fmt.Errorf("%s: %w", m.coll.Name(), err)
}

func (m *MongoCollection) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if len(opts.Projection) > 0 {
		findOpts.SetProjection(opts.Projection)
	}

	cursor, err := m.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", m.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", m.coll.Name(), err)
	}
	return docs, nil
}

func (m *MongoCollection) FindOne(ctx context.Context, filter bson.M, projection bson.M) (bson.M, error) {
	opts := options.FindOne()
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}

	var doc bson.M
	err := m.coll.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: find one: %w", m.coll.Name(), err)
	}
	return doc, nil
}

func (m *MongoCollection) InsertOne(ctx context.Context, doc bson.M) (any, error) {
	res, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, m.wrapWrite(err)
	}
	return res.InsertedID, nil
}

func (m *MongoCollection) FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (bson.M, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	err := m.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, m.wrapWrite(err)
	}
	return doc, nil
}

func (m *MongoCollection) FindOneAndDelete(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := m.coll.FindOneAndDelete(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: delete: %w", m.coll.Name(), err)
	}
	return doc, nil
}

func (m *MongoCollection) UpdateMany(ctx context.Context, filter bson.M, update bson.M) (int64, int64, error) {
	res, err := m.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, 0, m.wrapWrite(err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

func (m *MongoCollection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: delete many: %w", m.coll.Name(), err)
	}
	return res.DeletedCount, nil
}

func (m *MongoCollection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	count, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: count: %w", m.coll.Name(), err)
	}
	return count, nil
}

func (m *MongoCollection) Distinct(ctx context.Context, field string, filter bson.M) ([]any, error) {
	values, err := m.coll.Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: distinct: %w", m.coll.Name(), err)
	}
	return values, nil
}

func (m *MongoCollection) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: aggregate: %w", m.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", m.coll.Name(), err)
	}
	return docs, nil
}
