// Package services holds the generic data service every resource is built
// on, plus the thin per-entity services that configure it.
package services

import (
	"context"
	"fmt"
	"time"

	"schoolcampus/internal/domain"
	"schoolcampus/internal/logger"
	"schoolcampus/internal/query"
	"schoolcampus/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentWindow = 30 * 24 * time.Hour

// Validator checks a document (possibly partial, on updates) against entity
// constraints. Returning a domain.ValidationError surfaces as HTTP 400.
type Validator func(doc bson.M) error

// Option configures a Service at construction. Per-entity behavior is
// injected here instead of through subclassing.
type Option func(*settings)

type settings struct {
	validate    Validator
	activeField string
}

// WithValidator installs the entity's constraint check, run before every
// create and update.
func WithValidator(v Validator) Option {
	return func(s *settings) { s.validate = v }
}

// WithActiveField names the boolean field GetStats partitions on. Services
// constructed without one report active == total, inactive == 0.
func WithActiveField(field string) Option {
	return func(s *settings) { s.activeField = field }
}

// Service is the entity-agnostic data service. It owns one collection
// handle and is generic over the decoded document type.
type Service[T any] struct {
	name string
	coll store.Collection
	settings
}

func New[T any](name string, coll store.Collection, opts ...Option) *Service[T] {
	svc := &Service[T]{name: name, coll: coll}
	for _, opt := range opts {
		opt(&svc.settings)
	}
	return svc
}

// Collection exposes the underlying handle for entity services that need
// store-native calls the generic surface does not cover.
func (s *Service[T]) Collection() store.Collection { return s.coll }

// Name returns the resource name used in errors and logs.
func (s *Service[T]) Name() string { return s.name }

// Create inserts a document. When user is set, createdBy, updatedBy and (if
// the user belongs to one) organisation are stamped on top of caller data;
// an absent user means an unauthenticated write and skips stamping.
func (s *Service[T]) Create(ctx context.Context, data bson.M, user *domain.AuthUser) (*T, error) {
	doc := copyShallow(data)
	if s.validate != nil {
		if err := s.validate(doc); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	doc["createdAt"] = now
	doc["updatedAt"] = now
	if user != nil {
		if user.Organisation != nil {
			doc["organisation"] = orgAttribution(user.Organisation)
		}
		doc["createdBy"] = userAttribution(user)
		doc["updatedBy"] = userAttribution(user)
	}

	id, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc["_id"] = id

	logger.App().Info("document created", zap.String("resource", s.name))
	return decode[T](doc)
}

// FindAll runs the query builder and issues the page read, the unconditional
// count and the filtered count concurrently.
func (s *Service[T]) FindAll(ctx context.Context, opts domain.ServiceOptions) (*domain.ServiceResponse[T], error) {
	opts = opts.Normalize()
	filter, sort, projection := query.Build(opts)
	skip := int64(opts.Page-1) * int64(opts.Limit)

	var (
		docs          []bson.M
		totalCount    int64
		filteredCount int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.coll.Find(gctx, filter, store.FindOptions{
			Sort:       sort,
			Skip:       skip,
			Limit:      int64(opts.Limit),
			Projection: projection,
		})
		return err
	})
	g.Go(func() error {
		var err error
		totalCount, err = s.coll.CountDocuments(gctx, bson.M{})
		return err
	})
	g.Go(func() error {
		var err error
		filteredCount, err = s.coll.CountDocuments(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		data = append(data, *item)
	}

	totalPages := int((filteredCount + int64(opts.Limit) - 1) / int64(opts.Limit))

	logger.App().Debug("list query",
		zap.String("resource", s.name),
		zap.Int64("total", totalCount),
		zap.Int64("filtered", filteredCount),
	)

	return &domain.ServiceResponse[T]{
		Data: data,
		Pagination: domain.Pagination{
			Current:      opts.Page,
			Total:        totalPages,
			Count:        len(data),
			TotalRecords: filteredCount,
			HasNext:      opts.Page < totalPages,
			HasPrev:      opts.Page > 1,
		},
		Filters: domain.AppliedFilters{
			Applied:       filter,
			SearchTerm:    opts.SearchTerm,
			TotalFiltered: filteredCount,
		},
	}, nil
}

// FindByID returns the document or (nil, nil) when absent. A malformed id is
// a validation error, not an internal one.
func (s *Service[T]) FindByID(ctx context.Context, id string, hideKeys []string) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	doc, err := s.coll.FindOne(ctx, bson.M{"_id": oid}, query.Projection(hideKeys))
	if err != nil || doc == nil {
		return nil, err
	}
	return decode[T](doc)
}

// FindOne looks a document up by an arbitrary equality filter ("by email").
func (s *Service[T]) FindOne(ctx context.Context, filter bson.M, hideKeys []string) (*T, error) {
	doc, err := s.coll.FindOne(ctx, filter, query.Projection(hideKeys))
	if err != nil || doc == nil {
		return nil, err
	}
	return decode[T](doc)
}

// UpdateByID patches a document and returns the post-update state, or
// (nil, nil) when no document matched. updatedBy and organisation are
// re-stamped; createdBy is left untouched.
func (s *Service[T]) UpdateByID(ctx context.Context, id string, patch bson.M, user *domain.AuthUser) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := copyShallow(patch)
	if s.validate != nil {
		if err := s.validate(set); err != nil {
			return nil, err
		}
	}
	set["updatedAt"] = time.Now().UTC()
	if user != nil {
		if user.Organisation != nil {
			set["organisation"] = orgAttribution(user.Organisation)
		}
		set["updatedBy"] = userAttribution(user)
	}

	doc, err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil || doc == nil {
		return nil, err
	}
	logger.App().Info("document updated", zap.String("resource", s.name))
	return decode[T](doc)
}

// UpdateMany patches every document matching filter. The bulk path stamps no
// user attribution; only updatedAt moves.
func (s *Service[T]) UpdateMany(ctx context.Context, filter bson.M, patch bson.M) (domain.UpdateResult, error) {
	set := copyShallow(patch)
	set["updatedAt"] = time.Now().UTC()

	matched, modified, err := s.coll.UpdateMany(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return domain.UpdateResult{}, err
	}
	return domain.UpdateResult{MatchedCount: matched, ModifiedCount: modified}, nil
}

// DeleteByID removes a document and returns it, or (nil, nil) when absent.
func (s *Service[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	doc, err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	logger.App().Info("document deleted", zap.String("resource", s.name))
	return decode[T](doc)
}

func (s *Service[T]) DeleteMany(ctx context.Context, filter bson.M) (domain.DeleteResult, error) {
	deleted, err := s.coll.DeleteMany(ctx, filter)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	return domain.DeleteResult{DeletedCount: deleted}, nil
}

func (s *Service[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.coll.CountDocuments(ctx, filter)
}

func (s *Service[T]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	doc, err := s.coll.FindOne(ctx, filter, nil)
	if err != nil {
		return false, err
	}
	return doc != nil, nil
}

func (s *Service[T]) Distinct(ctx context.Context, field string, filter bson.M) ([]any, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.coll.Distinct(ctx, field, filter)
}

// Aggregate is the escape hatch for store-native pipelines.
func (s *Service[T]) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	return s.coll.Aggregate(ctx, pipeline)
}

// GetStats computes the rollup for documents matching filter. Recently
// created/updated means within the last 30 days.
func (s *Service[T]) GetStats(ctx context.Context, filter bson.M) (domain.Stats, error) {
	if filter == nil {
		filter = bson.M{}
	}
	since := time.Now().UTC().Add(-recentWindow)

	var stats domain.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Total, err = s.coll.CountDocuments(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentlyCreated, err = s.coll.CountDocuments(gctx, withClause(filter, "createdAt", bson.M{"$gte": since}))
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentlyUpdated, err = s.coll.CountDocuments(gctx, withClause(filter, "updatedAt", bson.M{"$gte": since}))
		return err
	})
	if s.activeField != "" {
		g.Go(func() error {
			var err error
			stats.Active, err = s.coll.CountDocuments(gctx, withClause(filter, s.activeField, true))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Stats{}, err
	}

	if s.activeField == "" {
		stats.Active = stats.Total
	}
	stats.Inactive = stats.Total - stats.Active
	return stats, nil
}

// NormalizeLegacyNames is the one-shot migration pass converting string
// fields that hold a serialized name object into structured documents.
// Returns the number of rewritten documents.
func (s *Service[T]) NormalizeLegacyNames(ctx context.Context, field string) (int64, error) {
	docs, err := s.coll.Find(ctx, bson.M{field: bson.M{"$regex": `^\s*\{`, "$options": ""}}, store.FindOptions{})
	if err != nil {
		return 0, err
	}

	var rewritten int64
	for _, doc := range docs {
		raw, ok := doc[field].(string)
		if !ok {
			continue
		}
		name, ok := ParseLegacyName(raw)
		if !ok {
			continue
		}
		structured := bson.M{}
		if name.First != "" {
			structured["first"] = name.First
		}
		if name.Middle != "" {
			structured["middle"] = name.Middle
		}
		if name.Last != "" {
			structured["last"] = name.Last
		}
		if _, err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": doc["_id"]}, bson.M{"$set": bson.M{field: structured}}); err != nil {
			return rewritten, err
		}
		rewritten++
	}

	if rewritten > 0 {
		logger.App().Info("legacy names normalized",
			zap.String("resource", s.name),
			zap.Int64("count", rewritten),
		)
	}
	return rewritten, nil
}

func withClause(filter bson.M, field string, cond any) bson.M {
	merged := copyShallow(filter)
	merged[field] = cond
	return merged
}

func copyShallow(m bson.M) bson.M {
	out := make(bson.M, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func decode[T any](doc bson.M) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &out, nil
}

func parseID(id string) (any, error) {
	if id == "" {
		return nil, domain.ValidationError{Field: "_id", Msg: "required"}
	}
	return normalizeID(id), nil
}
