package memory

import (
	"context"
	"testing"
	"time"

	"schoolcampus/internal/domain"
	"schoolcampus/internal/store"

	"go.mongodb.org/mongo-driver/bson"
)

func seedCollection(t *testing.T, docs ...bson.M) *Collection {
	t.Helper()
	c := NewCollection("test")
	for _, doc := range docs {
		if _, err := c.InsertOne(context.Background(), doc); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}
	return c
}

func TestFindSortSkipLimit(t *testing.T) {
	c := seedCollection(t,
		bson.M{"n": 3}, bson.M{"n": 1}, bson.M{"n": 5}, bson.M{"n": 2}, bson.M{"n": 4},
	)

	docs, err := c.Find(context.Background(), bson.M{}, store.FindOptions{
		Sort:  bson.D{{Key: "n", Value: 1}},
		Skip:  1,
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if len(docs) != 2 || docs[0]["n"] != 2 || docs[1]["n"] != 3 {
		t.Fatalf("unexpected page: %#v", docs)
	}

	// skip past the end yields an empty page, not an error
	docs, err = c.Find(context.Background(), bson.M{}, store.FindOptions{Skip: 10})
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected empty page, got %#v, %v", docs, err)
	}
}

func TestFindProjectionExcludes(t *testing.T) {
	c := seedCollection(t, bson.M{"name": "Ada", "password": "hash", "meta": bson.M{"secret": 1, "plain": 2}})

	docs, err := c.Find(context.Background(), bson.M{}, store.FindOptions{
		Projection: bson.M{"password": 0, "meta.secret": 0},
	})
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	doc := docs[0]
	if _, ok := doc["password"]; ok {
		t.Fatalf("projected-out key survived: %#v", doc)
	}
	meta := doc["meta"].(bson.M)
	if _, ok := meta["secret"]; ok {
		t.Fatalf("dotted projection should reach nested keys: %#v", meta)
	}
	if meta["plain"] != 2 {
		t.Fatalf("sibling keys must survive: %#v", meta)
	}
}

func TestMatchOperators(t *testing.T) {
	now := time.Now().UTC()
	c := seedCollection(t,
		bson.M{"age": 15, "role": "USER", "createdAt": now.Add(-time.Hour)},
		bson.M{"age": 20, "role": "ADMIN", "createdAt": now},
	)
	ctx := context.Background()

	cases := []struct {
		filter bson.M
		want   int64
	}{
		{bson.M{"age": bson.M{"$gte": 16}}, 1},
		{bson.M{"age": bson.M{"$lt": 16}}, 1},
		{bson.M{"age": bson.M{"$ne": 15}}, 1},
		{bson.M{"role": bson.M{"$in": []any{"ADMIN", "MANAGER"}}}, 1},
		{bson.M{"missing": bson.M{"$exists": false}}, 2},
		{bson.M{"createdAt": bson.M{"$gte": now.Add(-time.Minute)}}, 1},
		{bson.M{"$or": []bson.M{{"age": 15}, {"role": "ADMIN"}}}, 2},
		{bson.M{"role": bson.M{"$regex": "adm", "$options": "i"}}, 1},
	}
	for _, tc := range cases {
		count, err := c.CountDocuments(ctx, tc.filter)
		if err != nil {
			t.Fatalf("count error for %#v: %v", tc.filter, err)
		}
		if count != tc.want {
			t.Fatalf("filter %#v matched %d, want %d", tc.filter, count, tc.want)
		}
	}
}

func TestRegexFallsBackToSubstring(t *testing.T) {
	c := seedCollection(t, bson.M{"name": "a(b"})

	// an unescaped term that does not compile as a regex still matches as a
	// plain substring
	count, err := c.CountDocuments(context.Background(), bson.M{
		"name": bson.M{"$regex": "a(b", "$options": "i"},
	})
	if err != nil || count != 1 {
		t.Fatalf("expected substring fallback match, got %d, %v", count, err)
	}
}

func TestUniqueFieldConflicts(t *testing.T) {
	c := NewCollection("users", "email")
	ctx := context.Background()

	if _, err := c.InsertOne(ctx, bson.M{"email": "a@b.com"}); err != nil {
		t.Fatalf("first insert error: %v", err)
	}
	_, err := c.InsertOne(ctx, bson.M{"email": "a@b.com"})
	if !domain.IsConflict(err) {
		t.Fatalf("duplicate insert should conflict, got %v", err)
	}

	// updates into a taken value conflict the same way
	if _, err := c.InsertOne(ctx, bson.M{"email": "b@b.com"}); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	_, err = c.FindOneAndUpdate(ctx, bson.M{"email": "b@b.com"}, bson.M{"$set": bson.M{"email": "a@b.com"}})
	if !domain.IsConflict(err) {
		t.Fatalf("update into duplicate should conflict, got %v", err)
	}
}

func TestFindOneAndUpdateReturnsPostUpdateState(t *testing.T) {
	c := seedCollection(t, bson.M{"name": "Ada", "nested": bson.M{"a": 1}})
	ctx := context.Background()

	doc, err := c.FindOneAndUpdate(ctx, bson.M{"name": "Ada"}, bson.M{
		"$set":   bson.M{"name": "Grace", "nested.b": 2},
		"$unset": bson.M{"nested.a": ""},
	})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if doc["name"] != "Grace" {
		t.Fatalf("expected post-update state, got %#v", doc)
	}
	nested := doc["nested"].(bson.M)
	if nested["b"] != 2 {
		t.Fatalf("dotted set should create nested keys: %#v", nested)
	}
	if _, ok := nested["a"]; ok {
		t.Fatalf("unset key survived: %#v", nested)
	}

	missing, err := c.FindOneAndUpdate(ctx, bson.M{"name": "Nobody"}, bson.M{"$set": bson.M{"x": 1}})
	if err != nil || missing != nil {
		t.Fatalf("no match should be (nil, nil), got %v, %v", missing, err)
	}
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	c := seedCollection(t, bson.M{"name": "Ada", "tags": bson.M{"kind": "person"}})
	ctx := context.Background()

	doc, err := c.FindOne(ctx, bson.M{"name": "Ada"}, nil)
	if err != nil || doc == nil {
		t.Fatalf("findOne failed: %v", err)
	}
	doc["name"] = "mutated"
	doc["tags"].(bson.M)["kind"] = "mutated"

	fresh, err := c.FindOne(ctx, bson.M{"name": "Ada"}, nil)
	if err != nil || fresh == nil {
		t.Fatalf("stored doc was mutated through a returned copy")
	}
	if fresh["tags"].(bson.M)["kind"] != "person" {
		t.Fatalf("nested values must be deep-copied: %#v", fresh)
	}
}

func TestDeleteManyAndUpdateMany(t *testing.T) {
	c := seedCollection(t,
		bson.M{"kind": "a"}, bson.M{"kind": "a"}, bson.M{"kind": "b"},
	)
	ctx := context.Background()

	matched, modified, err := c.UpdateMany(ctx, bson.M{"kind": "a"}, bson.M{"$set": bson.M{"seen": true}})
	if err != nil || matched != 2 || modified != 2 {
		t.Fatalf("unexpected update counters: %d, %d, %v", matched, modified, err)
	}

	deleted, err := c.DeleteMany(ctx, bson.M{"kind": "a"})
	if err != nil || deleted != 2 {
		t.Fatalf("unexpected delete counter: %d, %v", deleted, err)
	}
	count, _ := c.CountDocuments(ctx, bson.M{})
	if count != 1 {
		t.Fatalf("expected 1 survivor, got %d", count)
	}
}

func TestDistinct(t *testing.T) {
	c := seedCollection(t,
		bson.M{"role": "USER"}, bson.M{"role": "USER"}, bson.M{"role": "ADMIN"}, bson.M{"other": 1},
	)

	values, err := c.Distinct(context.Background(), "role", bson.M{})
	if err != nil {
		t.Fatalf("distinct error: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 distinct roles, got %#v", values)
	}
}

func TestAggregateGroupSortLimit(t *testing.T) {
	c := seedCollection(t,
		bson.M{"type": "SCHOOL"}, bson.M{"type": "SCHOOL"}, bson.M{"type": "COLLEGE"},
		bson.M{"type": "UNIVERSITY"}, bson.M{"type": "SCHOOL"},
	)

	rows, err := c.Aggregate(context.Background(), []bson.M{
		{"$match": bson.M{"type": bson.M{"$ne": "UNIVERSITY"}}},
		{"$group": bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
		{"$limit": 1},
	})
	if err != nil {
		t.Fatalf("aggregate error: %v", err)
	}
	if len(rows) != 1 || rows[0]["_id"] != "SCHOOL" {
		t.Fatalf("unexpected top group: %#v", rows)
	}
	if toFloat(rows[0]["count"]) != 3 {
		t.Fatalf("unexpected count: %#v", rows[0])
	}
}
