package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"schoolcampus/internal/domain"
	"schoolcampus/internal/store/memory"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type course struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title,omitempty"`
	Category     string             `bson:"category,omitempty"`
	Secret       string             `bson:"secret,omitempty"`
	IsActive     *bool              `bson:"isActive,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty"`
	CreatedBy    bson.M             `bson:"createdBy,omitempty"`
	UpdatedBy    bson.M             `bson:"updatedBy,omitempty"`
	Organisation bson.M             `bson:"organisation,omitempty"`
}

func newCourseService(opts ...Option) *Service[course] {
	return New[course]("course", memory.NewCollection("courses"), opts...)
}

func testPrincipal() *domain.AuthUser {
	return &domain.AuthUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: domain.Name{First: "Ada", Last: "Lovelace"},
		Role: "ADMIN",
		Organisation: &domain.OrgRef{
			ID:   primitive.NewObjectID().Hex(),
			Name: "North Campus",
		},
	}
}

func TestCreateStampsAuditAndAttribution(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	created, err := svc.Create(ctx, bson.M{"title": "Algebra"}, testPrincipal())
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatalf("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %#v", created)
	}
	if created.CreatedBy["name"] != "Ada Lovelace" {
		t.Fatalf("unexpected createdBy: %#v", created.CreatedBy)
	}
	if created.UpdatedBy["name"] != "Ada Lovelace" {
		t.Fatalf("unexpected updatedBy: %#v", created.UpdatedBy)
	}
	if created.Organisation["name"] != "North Campus" {
		t.Fatalf("unexpected organisation: %#v", created.Organisation)
	}
	if _, ok := created.CreatedBy["_id"].(primitive.ObjectID); !ok {
		t.Fatalf("createdBy id should be store-native, got %T", created.CreatedBy["_id"])
	}
}

func TestCreateWithoutUserSkipsAttribution(t *testing.T) {
	svc := newCourseService()

	created, err := svc.Create(context.Background(), bson.M{"title": "Algebra"}, nil)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if created.CreatedBy != nil || created.UpdatedBy != nil || created.Organisation != nil {
		t.Fatalf("unauthenticated create must not stamp attribution: %#v", created)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("timestamps are stamped regardless of user")
	}
}

func TestCreateRunsValidator(t *testing.T) {
	svc := newCourseService(WithValidator(func(doc bson.M) error {
		if _, ok := doc["title"]; !ok {
			return domain.ValidationError{Field: "title", Msg: "required"}
		}
		return nil
	}))

	_, err := svc.Create(context.Background(), bson.M{"category": "math"}, nil)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFindAllPagination(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := svc.Create(ctx, bson.M{"title": fmt.Sprintf("Math %02d", i), "category": "math"}, nil); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, bson.M{"title": fmt.Sprintf("Art %02d", i), "category": "art"}, nil); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	result, err := svc.FindAll(ctx, domain.ServiceOptions{
		Page:          2,
		Limit:         5,
		CustomFilters: map[string]any{"category": "math"},
	})
	if err != nil {
		t.Fatalf("findAll error: %v", err)
	}

	p := result.Pagination
	if p.Current != 2 || p.Total != 3 || p.Count != 5 {
		t.Fatalf("unexpected pagination: %#v", p)
	}
	if p.TotalRecords != 12 {
		t.Fatalf("expected 12 filtered records, got %d", p.TotalRecords)
	}
	if !p.HasNext || !p.HasPrev {
		t.Fatalf("page 2 of 3 has both neighbours: %#v", p)
	}
	if result.Filters.TotalFiltered != 12 {
		t.Fatalf("unexpected filters echo: %#v", result.Filters)
	}
	if result.Filters.Applied["category"] != "math" {
		t.Fatalf("applied filter should echo the compiled filter: %#v", result.Filters.Applied)
	}
}

func TestFindAllSearch(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	for _, title := range []string{"Go Programming", "Advanced Go", "Rust Basics"} {
		if _, err := svc.Create(ctx, bson.M{"title": title}, nil); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	result, err := svc.FindAll(ctx, domain.ServiceOptions{
		SearchKeys: []string{"title"},
		SearchTerm: "go",
	})
	if err != nil {
		t.Fatalf("findAll error: %v", err)
	}
	if len(result.Data) != 2 {
		t.Fatalf("case-insensitive search should match 2, got %d", len(result.Data))
	}
	if result.Filters.SearchTerm != "go" {
		t.Fatalf("search term should be echoed: %#v", result.Filters)
	}
}

func TestFindByIDHidesKeys(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	created, err := svc.Create(ctx, bson.M{"title": "Algebra", "secret": "s3cret"}, nil)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	found, err := svc.FindByID(ctx, created.ID.Hex(), []string{"secret"})
	if err != nil {
		t.Fatalf("findByID error: %v", err)
	}
	if found == nil {
		t.Fatalf("expected a document")
	}
	if found.Secret != "" {
		t.Fatalf("hidden key leaked: %q", found.Secret)
	}
	if found.Title != "Algebra" {
		t.Fatalf("non-hidden keys must survive: %#v", found)
	}
}

func TestFindByIDAbsentAndMalformed(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	found, err := svc.FindByID(ctx, primitive.NewObjectID().Hex(), nil)
	if err != nil || found != nil {
		t.Fatalf("absent id should be (nil, nil), got %v, %v", found, err)
	}

	// ids that are not object ids are legal lookups that match nothing
	found, err = svc.FindByID(ctx, "nonexistent-id", nil)
	if err != nil || found != nil {
		t.Fatalf("non-hex id should be (nil, nil), got %v, %v", found, err)
	}

	if _, err := svc.FindByID(ctx, "", nil); !domain.IsValidation(err) {
		t.Fatalf("empty id should be a validation error, got %v", err)
	}
}

func TestUpdateByID(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	creator := testPrincipal()
	created, err := svc.Create(ctx, bson.M{"title": "Algebra"}, creator)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	editor := testPrincipal()
	editor.Name = domain.Name{First: "Grace", Last: "Hopper"}
	updated, err := svc.UpdateByID(ctx, created.ID.Hex(), bson.M{"title": "Algebra II"}, editor)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if updated == nil {
		t.Fatalf("expected the updated document")
	}
	if updated.Title != "Algebra II" {
		t.Fatalf("patch not applied: %#v", updated)
	}
	if updated.UpdatedBy["name"] != "Grace Hopper" {
		t.Fatalf("updatedBy should be re-stamped: %#v", updated.UpdatedBy)
	}
	if updated.CreatedBy["name"] != "Ada Lovelace" {
		t.Fatalf("createdBy must not move on update: %#v", updated.CreatedBy)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
		t.Fatalf("updatedAt should advance: %#v", updated)
	}

	missing, err := svc.UpdateByID(ctx, "nonexistent-id", bson.M{"title": "x"}, editor)
	if err != nil || missing != nil {
		t.Fatalf("updating an absent id should be (nil, nil), got %v, %v", missing, err)
	}
}

func TestUpdateManyStampsNoAttribution(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, bson.M{"title": fmt.Sprintf("Math %d", i), "category": "math"}, nil); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	result, err := svc.UpdateMany(ctx, bson.M{"category": "math"}, bson.M{"category": "science"})
	if err != nil {
		t.Fatalf("updateMany error: %v", err)
	}
	if result.MatchedCount != 3 || result.ModifiedCount != 3 {
		t.Fatalf("unexpected counters: %#v", result)
	}

	after, err := svc.FindAll(ctx, domain.ServiceOptions{CustomFilters: map[string]any{"category": "science"}})
	if err != nil {
		t.Fatalf("findAll error: %v", err)
	}
	if len(after.Data) != 3 {
		t.Fatalf("expected 3 updated docs, got %d", len(after.Data))
	}
	for _, doc := range after.Data {
		if doc.UpdatedBy != nil {
			t.Fatalf("bulk update must not stamp attribution: %#v", doc.UpdatedBy)
		}
		if doc.UpdatedAt.IsZero() {
			t.Fatalf("bulk update still moves updatedAt")
		}
	}
}

func TestDeleteByIDReturnsRemovedDocument(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	created, err := svc.Create(ctx, bson.M{"title": "Algebra"}, nil)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	deleted, err := svc.DeleteByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if deleted == nil || deleted.Title != "Algebra" {
		t.Fatalf("expected the removed document back, got %#v", deleted)
	}

	count, err := svc.Count(ctx, nil)
	if err != nil || count != 0 {
		t.Fatalf("expected empty collection, got %d, %v", count, err)
	}

	again, err := svc.DeleteByID(ctx, created.ID.Hex())
	if err != nil || again != nil {
		t.Fatalf("second delete should be (nil, nil), got %v, %v", again, err)
	}
}

func TestExistsAndDistinct(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	for _, category := range []string{"math", "math", "art"} {
		if _, err := svc.Create(ctx, bson.M{"title": "T", "category": category}, nil); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	exists, err := svc.Exists(ctx, bson.M{"category": "art"})
	if err != nil || !exists {
		t.Fatalf("expected a match, got %v, %v", exists, err)
	}
	exists, err = svc.Exists(ctx, bson.M{"category": "law"})
	if err != nil || exists {
		t.Fatalf("expected no match, got %v, %v", exists, err)
	}

	values, err := svc.Distinct(ctx, "category", nil)
	if err != nil {
		t.Fatalf("distinct error: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 distinct categories, got %#v", values)
	}
}

func TestGetStatsPartitionsOnActiveField(t *testing.T) {
	coll := memory.NewCollection("courses")
	svc := New[course]("course", coll, WithActiveField("isActive"))
	ctx := context.Background()

	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	seed := []bson.M{
		{"title": "A", "isActive": true, "createdAt": time.Now().UTC(), "updatedAt": time.Now().UTC()},
		{"title": "B", "isActive": true, "createdAt": time.Now().UTC(), "updatedAt": time.Now().UTC()},
		{"title": "C", "isActive": false, "createdAt": old, "updatedAt": time.Now().UTC()},
		{"title": "D", "isActive": true, "createdAt": old, "updatedAt": old},
	}
	for _, doc := range seed {
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	stats, err := svc.GetStats(ctx, nil)
	if err != nil {
		t.Fatalf("stats error: %v", err)
	}
	if stats.Total != 4 || stats.Active != 3 || stats.Inactive != 1 {
		t.Fatalf("unexpected partition: %#v", stats)
	}
	if stats.RecentlyCreated != 2 {
		t.Fatalf("expected 2 recently created, got %d", stats.RecentlyCreated)
	}
	if stats.RecentlyUpdated != 3 {
		t.Fatalf("expected 3 recently updated, got %d", stats.RecentlyUpdated)
	}
}

func TestGetStatsWithoutActiveField(t *testing.T) {
	svc := newCourseService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, bson.M{"title": "T"}, nil); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	stats, err := svc.GetStats(ctx, nil)
	if err != nil {
		t.Fatalf("stats error: %v", err)
	}
	if stats.Active != stats.Total || stats.Inactive != 0 {
		t.Fatalf("no partition field means everything counts as active: %#v", stats)
	}
}

func TestNormalizeLegacyNames(t *testing.T) {
	coll := memory.NewCollection("teachers")
	svc := New[course]("teacher", coll)
	ctx := context.Background()

	if _, err := coll.InsertOne(ctx, bson.M{"name": `{ first: 'Ada', last: 'Lovelace' }`}); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	if _, err := coll.InsertOne(ctx, bson.M{"name": "Grace Hopper"}); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	rewritten, err := svc.NormalizeLegacyNames(ctx, "name")
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	if rewritten != 1 {
		t.Fatalf("expected 1 rewrite, got %d", rewritten)
	}

	doc, err := coll.FindOne(ctx, bson.M{"name.first": "Ada"}, nil)
	if err != nil || doc == nil {
		t.Fatalf("expected the structured document, got %v, %v", doc, err)
	}

	untouched, err := coll.FindOne(ctx, bson.M{"name": "Grace Hopper"}, nil)
	if err != nil || untouched == nil {
		t.Fatalf("plain display names must not be rewritten, got %v, %v", untouched, err)
	}
}
