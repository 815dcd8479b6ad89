// Package memory is an in-process Collection implementation covering the
// operator subset the query builder emits. It backs the service and handler
// tests and MONGO_URI=memory local runs.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"schoolcampus/internal/domain"
	"schoolcampus/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Collection struct {
	name    string
	mu      sync.RWMutex
	docs    []bson.M
	uniques []string
}

var _ store.Collection = (*Collection)(nil)

func NewCollection(name string, uniqueFields ...string) *Collection {
	return &Collection{name: name, uniques: uniqueFields}
}

func (c *Collection) Find(ctx context.Context, filter bson.M, opts store.FindOptions) ([]bson.M, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := c.matchAll(filter)
	sortDocs(matched, opts.Sort)

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := make([]bson.M, 0, len(matched))
	for _, doc := range matched {
		out = append(out, project(copyDoc(doc), opts.Projection))
	}
	return out, nil
}

func (c *Collection) FindOne(ctx context.Context, filter bson.M, projection bson.M) (bson.M, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, doc := range c.docs {
		if match(doc, filter) {
			return project(copyDoc(doc), projection), nil
		}
	}
	return nil, nil
}

func (c *Collection) InsertOne(ctx context.Context, doc bson.M) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := copyDoc(doc)
	if _, ok := stored["_id"]; !ok {
		stored["_id"] = primitive.NewObjectID()
	}
	if err := c.checkUniques(stored, -1); err != nil {
		return nil, err
	}
	c.docs = append(c.docs, stored)
	return stored["_id"], nil
}

func (c *Collection) FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if !match(doc, filter) {
			continue
		}
		next := copyDoc(doc)
		applyUpdate(next, update)
		if err := c.checkUniques(next, i); err != nil {
			return nil, err
		}
		c.docs[i] = next
		return copyDoc(next), nil
	}
	return nil, nil
}

func (c *Collection) FindOneAndDelete(ctx context.Context, filter bson.M) (bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if match(doc, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return copyDoc(doc), nil
		}
	}
	return nil, nil
}

func (c *Collection) UpdateMany(ctx context.Context, filter bson.M, update bson.M) (int64, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched, modified int64
	for i, doc := range c.docs {
		if !match(doc, filter) {
			continue
		}
		matched++
		next := copyDoc(doc)
		applyUpdate(next, update)
		if err := c.checkUniques(next, i); err != nil {
			return matched, modified, err
		}
		c.docs[i] = next
		modified++
	}
	return matched, modified, nil
}

func (c *Collection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.docs[:0]
	var deleted int64
	for _, doc := range c.docs {
		if match(doc, filter) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept
	return deleted, nil
}

func (c *Collection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.matchAll(filter))), nil
}

func (c *Collection) Distinct(ctx context.Context, field string, filter bson.M) ([]any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := map[string]bool{}
	values := []any{}
	for _, doc := range c.matchAll(filter) {
		v, ok := getPath(doc, field)
		if !ok || v == nil {
			continue
		}
		key := fmt.Sprintf("%T:%v", v, v)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, v)
	}
	return values, nil
}

// Aggregate supports the pipeline subset the services emit: $match, $group
// with $sum accumulators, $sort on group output and $limit.
func (c *Collection) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	c.mu.RLock()
	docs := make([]bson.M, len(c.docs))
	for i, d := range c.docs {
		docs[i] = copyDoc(d)
	}
	c.mu.RUnlock()

	for _, stage := range pipeline {
		var err error
		docs, err = applyStage(docs, stage)
		if err != nil {
			return nil, fmt.Errorf("%s: aggregate: %w", c.name, err)
		}
	}
	return docs, nil
}

func (c *Collection) matchAll(filter bson.M) []bson.M {
	matched := []bson.M{}
	for _, doc := range c.docs {
		if match(doc, filter) {
			matched = append(matched, doc)
		}
	}
	return matched
}

func (c *Collection) checkUniques(doc bson.M, selfIndex int) error {
	for _, field := range c.uniques {
		v, ok := getPath(doc, field)
		if !ok || v == nil {
			continue
		}
		for i, other := range c.docs {
			if i == selfIndex {
				continue
			}
			ov, ok := getPath(other, field)
			if ok && equalValues(v, ov) {
				return domain.ConflictError{Resource: c.name, Msg: "duplicate key"}
			}
		}
	}
	return nil
}

func applyStage(docs []bson.M, stage bson.M) ([]bson.M, error) {
	for op, spec := range stage {
		switch op {
		case "$match":
			filter, ok := toM(spec)
			if !ok {
				return nil, fmt.Errorf("$match wants a document")
			}
			out := []bson.M{}
			for _, doc := range docs {
				if match(doc, filter) {
					out = append(out, doc)
				}
			}
			return out, nil
		case "$group":
			return applyGroup(docs, spec)
		case "$sort":
			spec, ok := toM(spec)
			if !ok {
				return nil, fmt.Errorf("$sort wants a document")
			}
			keys := make(bson.D, 0, len(spec))
			for k, v := range spec {
				keys = append(keys, bson.E{Key: k, Value: v})
			}
			sortDocs(docs, keys)
			return docs, nil
		case "$limit":
			n := int(toFloat(spec))
			if n < len(docs) {
				docs = docs[:n]
			}
			return docs, nil
		default:
			return nil, fmt.Errorf("unsupported stage %s", op)
		}
	}
	return docs, nil
}

func applyGroup(docs []bson.M, spec any) ([]bson.M, error) {
	groupSpec, ok := toM(spec)
	if !ok {
		return nil, fmt.Errorf("$group wants a document")
	}

	keyExpr, _ := groupSpec["_id"].(string)
	groups := map[string]bson.M{}
	order := []string{}

	for _, doc := range docs {
		var key any
		if strings.HasPrefix(keyExpr, "$") {
			key, _ = getPath(doc, strings.TrimPrefix(keyExpr, "$"))
		}
		mapKey := fmt.Sprintf("%v", key)
		group, exists := groups[mapKey]
		if !exists {
			group = bson.M{"_id": key}
			groups[mapKey] = group
			order = append(order, mapKey)
		}
		for name, accSpec := range groupSpec {
			if name == "_id" {
				continue
			}
			acc, ok := toM(accSpec)
			if !ok {
				continue
			}
			sumExpr, ok := acc["$sum"]
			if !ok {
				continue
			}
			current := toFloat(group[name])
			if ref, isRef := sumExpr.(string); isRef && strings.HasPrefix(ref, "$") {
				v, _ := getPath(doc, strings.TrimPrefix(ref, "$"))
				group[name] = current + toFloat(v)
			} else {
				group[name] = current + toFloat(sumExpr)
			}
		}
	}

	out := make([]bson.M, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k])
	}
	return out, nil
}

func match(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		if key == "$or" {
			if !matchOr(doc, cond) {
				return false
			}
			continue
		}
		value, exists := getPath(doc, key)
		if ops, ok := toM(cond); ok && isOperatorDoc(ops) {
			if !matchOps(value, exists, ops) {
				return false
			}
			continue
		}
		if !exists || !equalValues(value, cond) {
			return false
		}
	}
	return true
}

func matchOr(doc bson.M, cond any) bool {
	branches := toSlice(cond)
	for _, branch := range branches {
		if m, ok := toM(branch); ok && match(doc, m) {
			return true
		}
	}
	return false
}

func matchOps(value any, exists bool, ops bson.M) bool {
	for op, operand := range ops {
		switch op {
		case "$gte":
			if !exists || compareValues(value, operand) < 0 {
				return false
			}
		case "$gt":
			if !exists || compareValues(value, operand) <= 0 {
				return false
			}
		case "$lte":
			if !exists || compareValues(value, operand) > 0 {
				return false
			}
		case "$lt":
			if !exists || compareValues(value, operand) >= 0 {
				return false
			}
		case "$ne":
			if exists && equalValues(value, operand) {
				return false
			}
		case "$in":
			found := false
			for _, candidate := range toSlice(operand) {
				if exists && equalValues(value, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "$exists":
			want := operand == true
			if exists != want {
				return false
			}
		case "$regex":
			s, ok := value.(string)
			if !ok {
				return false
			}
			if !matchRegex(s, ops) {
				return false
			}
		case "$options":
			// handled with $regex
		default:
			return false
		}
	}
	return true
}

func matchRegex(value string, ops bson.M) bool {
	pattern, _ := ops["$regex"].(string)
	opts, _ := ops["$options"].(string)
	if strings.Contains(opts, "i") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		// raw terms are passed through unescaped; fall back to a plain
		// substring check when they do not compile
		return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimPrefix(pattern, "(?i)")))
	}
	return re.MatchString(value)
}

func applyUpdate(doc bson.M, update bson.M) {
	for op, spec := range update {
		switch op {
		case "$set":
			if m, ok := toM(spec); ok {
				for k, v := range m {
					setPath(doc, k, copyValue(v))
				}
			}
		case "$unset":
			if m, ok := toM(spec); ok {
				for k := range m {
					unsetPath(doc, k)
				}
			}
		}
	}
}

func isOperatorDoc(m bson.M) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func getPath(doc bson.M, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = doc
	for _, part := range parts {
		m, ok := toM(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func setPath(doc bson.M, path string, value any) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := toM(current[part])
		if !ok {
			next = bson.M{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func unsetPath(doc bson.M, path string) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := toM(current[part])
		if !ok {
			return
		}
		current = next
	}
	delete(current, parts[len(parts)-1])
}

func project(doc bson.M, projection bson.M) bson.M {
	for key := range projection {
		unsetPath(doc, key)
	}
	return doc
}

func sortDocs(docs []bson.M, keys bson.D) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			a, _ := getPath(docs[i], key.Key)
			b, _ := getPath(docs[j], key.Key)
			cmp := compareValues(a, b)
			if cmp == 0 {
				continue
			}
			if toFloat(key.Value) < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	if oa, ok := a.(primitive.ObjectID); ok {
		if ob, ok := b.(primitive.ObjectID); ok {
			return oa == ob
		}
	}
	if isNumeric(a) && isNumeric(b) {
		return toFloat(a) == toFloat(b)
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b) && fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

func compareValues(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	if isNumeric(a) && isNumeric(b) {
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func toM(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return bson.M(m), true
	case bson.D:
		out := bson.M{}
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []bson.M:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out
	case bson.A:
		return []any(s)
	case []string:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out
	}
	return nil
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch value := v.(type) {
	case bson.M:
		return copyDoc(value)
	case map[string]any:
		return copyDoc(bson.M(value))
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = copyValue(item)
		}
		return out
	case bson.A:
		out := make(bson.A, len(value))
		for i, item := range value {
			out[i] = copyValue(item)
		}
		return out
	case []bson.M:
		out := make([]bson.M, len(value))
		for i, item := range value {
			out[i] = copyDoc(item)
		}
		return out
	}
	return v
}
