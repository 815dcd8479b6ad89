package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"schoolcampus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson"
)

// Options extraction is the one place request shape is known. Every
// recognized option reads from the JSON body first, then from the query
// string, then falls back to its default, so the same contract serves both
// POST list endpoints and plain GET links. Query-string encodings: comma
// lists for key sets, "-field" for descending sort, dateField/startDate/
// endDate for the date range.

// bodyMap returns the cached JSON body as a document; empty when absent.
func bodyMap(c *gin.Context) bson.M {
	var m bson.M
	if c.Request == nil || c.Request.Body == nil {
		return bson.M{}
	}
	if err := c.ShouldBindBodyWith(&m, binding.JSON); err != nil || m == nil {
		return bson.M{}
	}
	return m
}

// ExtractOptions builds the ServiceOptions for one request.
func ExtractOptions(c *gin.Context) domain.ServiceOptions {
	body := bodyMap(c)

	opts := domain.ServiceOptions{
		Page:          intOption(body, c, "page", domain.DefaultPage),
		Limit:         intOption(body, c, "limit", domain.DefaultLimit),
		Sort:          sortOption(body, c),
		SearchKeys:    keysOption(body, c, "searchKeys"),
		SearchTerm:    stringOption(body, c, "searchTerm"),
		HideKeys:      keysOption(body, c, "hideKeys"),
		PreFilter:     docOption(body, "preFilter"),
		PostFilter:    docOption(body, "postFilter"),
		CustomFilters: docOption(body, "customFilters"),
		DateRange:     dateRangeOption(body, c),
	}
	return opts.Normalize()
}

// ExtractFilter reads the raw filter document used by stats/count/exists
// and the bulk operations: from the body first, else from a JSON-encoded
// "filter" query param so the GET-shaped routes stay filterable.
func ExtractFilter(c *gin.Context) bson.M {
	body := bodyMap(c)
	if filter, ok := toDoc(body["filter"]); ok {
		return filter
	}
	if q := c.Query("filter"); q != "" {
		var filter bson.M
		if err := json.Unmarshal([]byte(q), &filter); err == nil && len(filter) > 0 {
			return filter
		}
	}
	return bson.M{}
}

func intOption(body bson.M, c *gin.Context, key string, fallback int) int {
	if v, ok := body[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case string:
			if parsed, err := strconv.Atoi(n); err == nil {
				return parsed
			}
		}
	}
	if q := c.Query(key); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil {
			return parsed
		}
	}
	return fallback
}

func stringOption(body bson.M, c *gin.Context, key string) string {
	if s, ok := body[key].(string); ok && s != "" {
		return s
	}
	return c.Query(key)
}

// keysOption accepts a JSON array, a comma-separated body string, or a
// comma-separated query string, trimming each entry.
func keysOption(body bson.M, c *gin.Context, key string) []string {
	if v, ok := body[key]; ok {
		switch keys := v.(type) {
		case []any:
			out := []string{}
			for _, item := range keys {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if out := splitKeys(keys); len(out) > 0 {
				return out
			}
		}
	}
	return splitKeys(c.Query(key))
}

func splitKeys(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// sortOption reads a body object ({"createdAt": -1}) or a query list
// ("-createdAt,name"). The body object is re-read from the cached raw
// bytes in key order; a decoded map would shuffle multi-key sorts.
func sortOption(body bson.M, c *gin.Context) []domain.SortField {
	if raw, ok := toDoc(body["sort"]); ok {
		fields := orderedSortFields(cachedBody(c))
		if len(fields) == 0 {
			for field, dir := range raw {
				fields = append(fields, domain.SortField{Field: field, Desc: sortDesc(dir)})
			}
		}
		if len(fields) > 0 {
			return fields
		}
	}

	fields := []domain.SortField{}
	for _, part := range splitKeys(c.Query("sort")) {
		if strings.HasPrefix(part, "-") {
			fields = append(fields, domain.SortField{Field: strings.TrimPrefix(part, "-"), Desc: true})
		} else {
			fields = append(fields, domain.SortField{Field: part})
		}
	}
	return fields
}

// cachedBody returns the raw body bytes ShouldBindBodyWith stashed on the
// context, or nil before any body read.
func cachedBody(c *gin.Context) []byte {
	if v, ok := c.Get(gin.BodyBytesKey); ok {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	return nil
}

// orderedSortFields token-walks the raw body to the top-level "sort"
// object and returns its entries in document order.
func orderedSortFields(raw []byte) []domain.SortField {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		if key, _ := keyTok.(string); key != "sort" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
			continue
		}

		if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
			return nil
		}
		fields := []domain.SortField{}
		for dec.More() {
			fieldTok, err := dec.Token()
			if err != nil {
				return nil
			}
			field, _ := fieldTok.(string)
			var dir any
			if err := dec.Decode(&dir); err != nil {
				return nil
			}
			fields = append(fields, domain.SortField{Field: field, Desc: sortDesc(dir)})
		}
		return fields
	}
	return nil
}

func sortDesc(dir any) bool {
	switch d := dir.(type) {
	case float64:
		return d < 0
	case string:
		return d == "desc" || d == "-1"
	}
	return false
}

func docOption(body bson.M, key string) bson.M {
	if doc, ok := toDoc(body[key]); ok {
		return doc
	}
	return nil
}

func toDoc(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		if len(m) > 0 {
			return m, true
		}
	case map[string]any:
		if len(m) > 0 {
			return bson.M(m), true
		}
	}
	return nil, false
}

func dateRangeOption(body bson.M, c *gin.Context) *domain.DateRange {
	if raw, ok := toDoc(body["dateRange"]); ok {
		field, _ := raw["field"].(string)
		if field != "" {
			return &domain.DateRange{
				Field:     field,
				StartDate: parseTime(raw["startDate"]),
				EndDate:   parseTime(raw["endDate"]),
			}
		}
	}

	if field := c.Query("dateField"); field != "" {
		return &domain.DateRange{
			Field:     field,
			StartDate: parseTime(c.Query("startDate")),
			EndDate:   parseTime(c.Query("endDate")),
		}
	}
	return nil
}

func parseTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
