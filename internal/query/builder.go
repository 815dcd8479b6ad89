// Package query compiles a ServiceOptions configuration into a store-native
// filter, sort and projection. It performs no I/O.
package query

import (
	"schoolcampus/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
)

// Clause is one tagged fragment of a filter expression. Clauses are applied
// in order; a later clause overwrites any key an earlier one set, so "most
// specific wins" is a property of the compile order rather than of map
// merging.
type Clause interface {
	apply(filter bson.M)
}

// Raw merges a store-native fragment verbatim. Used for the pre/post filter
// escape hatches.
type Raw struct {
	Fragment bson.M
}

func (r Raw) apply(filter bson.M) {
	for k, v := range r.Fragment {
		filter[k] = v
	}
}

// Search expands to an OR-group of case-insensitive substring conditions,
// one per key. An empty term or empty key set expands to nothing.
type Search struct {
	Keys []string
	Term string
}

func (s Search) apply(filter bson.M) {
	if s.Term == "" || len(s.Keys) == 0 {
		return
	}
	or := make([]bson.M, 0, len(s.Keys))
	for _, key := range s.Keys {
		or = append(or, bson.M{key: bson.M{"$regex": s.Term, "$options": "i"}})
	}
	filter["$or"] = or
}

// Range bounds one field inclusively. Nil bounds are omitted; a Range with
// both bounds nil expands to nothing.
type Range struct {
	Field string
	GTE   any
	LTE   any
}

func (r Range) apply(filter bson.M) {
	cond := bson.M{}
	if r.GTE != nil {
		cond["$gte"] = r.GTE
	}
	if r.LTE != nil {
		cond["$lte"] = r.LTE
	}
	if len(cond) == 0 {
		return
	}
	filter[r.Field] = cond
}

// Equals is an exact-match condition on one field.
type Equals struct {
	Field string
	Value any
}

func (e Equals) apply(filter bson.M) {
	filter[e.Field] = e.Value
}

// Clauses assembles the ordered clause list for one query. Precedence, from
// weakest to strongest: preFilter, search, dateRange, customFilters,
// postFilter. Custom filters with nil or empty-string values are dropped so
// a blank form field can never hide every row.
func Clauses(o domain.ServiceOptions) []Clause {
	clauses := []Clause{}
	if len(o.PreFilter) > 0 {
		clauses = append(clauses, Raw{Fragment: o.PreFilter})
	}
	clauses = append(clauses, Search{Keys: o.SearchKeys, Term: o.SearchTerm})
	if dr := o.DateRange; dr != nil && dr.Field != "" {
		r := Range{Field: dr.Field}
		if dr.StartDate != nil {
			r.GTE = *dr.StartDate
		}
		if dr.EndDate != nil {
			r.LTE = *dr.EndDate
		}
		clauses = append(clauses, r)
	}
	for field, value := range o.CustomFilters {
		if value == nil || value == "" {
			continue
		}
		clauses = append(clauses, Equals{Field: field, Value: value})
	}
	if len(o.PostFilter) > 0 {
		clauses = append(clauses, Raw{Fragment: o.PostFilter})
	}
	return clauses
}

// Compile folds a clause list into a single filter document.
func Compile(clauses []Clause) bson.M {
	filter := bson.M{}
	for _, c := range clauses {
		c.apply(filter)
	}
	return filter
}

// Sort compiles the sort specification, defaulting to creation-time
// descending.
func Sort(fields []domain.SortField) bson.D {
	if len(fields) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	sort := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: f.Field, Value: dir})
	}
	return sort
}

// Projection compiles hideKeys into an exclusion projection. All fields not
// listed remain included; there is no allow-list mode.
func Projection(hideKeys []string) bson.M {
	if len(hideKeys) == 0 {
		return nil
	}
	projection := bson.M{}
	for _, key := range hideKeys {
		projection[key] = 0
	}
	return projection
}

// Build runs the full compilation for one ServiceOptions.
func Build(o domain.ServiceOptions) (filter bson.M, sort bson.D, projection bson.M) {
	return Compile(Clauses(o)), Sort(o.Sort), Projection(o.HideKeys)
}
