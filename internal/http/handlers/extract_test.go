package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(method, target string, body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
		c.Request = httptest.NewRequest(method, target, reader)
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	return c
}

func TestExtractOptionsFromQueryString(t *testing.T) {
	c := testContext(http.MethodGet,
		"/students?page=2&limit=5&sort=-createdAt,name&searchTerm=ada&searchKeys=name,email&hideKeys=password&dateField=createdAt&startDate=2026-01-01&endDate=2026-02-01",
		"")

	opts := ExtractOptions(c)
	if opts.Page != 2 || opts.Limit != 5 {
		t.Fatalf("unexpected paging: %#v", opts)
	}
	if len(opts.Sort) != 2 || opts.Sort[0].Field != "createdAt" || !opts.Sort[0].Desc || opts.Sort[1].Field != "name" || opts.Sort[1].Desc {
		t.Fatalf("unexpected sort: %#v", opts.Sort)
	}
	if opts.SearchTerm != "ada" || len(opts.SearchKeys) != 2 {
		t.Fatalf("unexpected search: %#v", opts)
	}
	if len(opts.HideKeys) != 1 || opts.HideKeys[0] != "password" {
		t.Fatalf("unexpected hide keys: %#v", opts.HideKeys)
	}
	if opts.DateRange == nil || opts.DateRange.Field != "createdAt" {
		t.Fatalf("unexpected date range: %#v", opts.DateRange)
	}
	if opts.DateRange.StartDate == nil || opts.DateRange.EndDate == nil {
		t.Fatalf("bounds should parse: %#v", opts.DateRange)
	}
}

func TestExtractOptionsBodyWinsOverQuery(t *testing.T) {
	c := testContext(http.MethodPost, "/students/query?page=9&limit=9", `{
		"page": 3,
		"limit": 20,
		"sort": {"name": -1},
		"searchTerm": "grace",
		"customFilters": {"status": "active"},
		"preFilter": {"kind": "a"},
		"dateRange": {"field": "createdAt", "startDate": "2026-01-01T00:00:00Z"}
	}`)

	opts := ExtractOptions(c)
	if opts.Page != 3 || opts.Limit != 20 {
		t.Fatalf("body paging should win: %#v", opts)
	}
	if len(opts.Sort) != 1 || opts.Sort[0].Field != "name" || !opts.Sort[0].Desc {
		t.Fatalf("unexpected sort: %#v", opts.Sort)
	}
	if opts.SearchTerm != "grace" {
		t.Fatalf("unexpected search term: %q", opts.SearchTerm)
	}
	if opts.CustomFilters["status"] != "active" {
		t.Fatalf("unexpected custom filters: %#v", opts.CustomFilters)
	}
	if opts.PreFilter["kind"] != "a" {
		t.Fatalf("unexpected pre filter: %#v", opts.PreFilter)
	}
	if opts.DateRange == nil || opts.DateRange.StartDate == nil {
		t.Fatalf("unexpected date range: %#v", opts.DateRange)
	}
}

func TestExtractOptionsDefaults(t *testing.T) {
	c := testContext(http.MethodGet, "/students", "")

	opts := ExtractOptions(c)
	if opts.Page != 1 || opts.Limit != 10 {
		t.Fatalf("expected defaults, got %#v", opts)
	}
	if opts.DateRange != nil || len(opts.Sort) != 0 {
		t.Fatalf("absent options should stay empty: %#v", opts)
	}
}

func TestExtractFilter(t *testing.T) {
	c := testContext(http.MethodPost, "/students/exists", `{"filter": {"email": "a@b.com"}}`)
	filter := ExtractFilter(c)
	if filter["email"] != "a@b.com" {
		t.Fatalf("unexpected filter: %#v", filter)
	}

	c = testContext(http.MethodPost, "/students/exists", `{}`)
	if len(ExtractFilter(c)) != 0 {
		t.Fatalf("missing filter should come back empty")
	}
}

func TestExtractFilterFromQueryString(t *testing.T) {
	target := "/students/stats?filter=" + url.QueryEscape(`{"role":"ADMIN"}`)
	c := testContext(http.MethodGet, target, "")
	filter := ExtractFilter(c)
	if filter["role"] != "ADMIN" {
		t.Fatalf("query filter should parse: %#v", filter)
	}

	// a body filter still wins over the query string
	c = testContext(http.MethodPost, target, `{"filter": {"role": "USER"}}`)
	filter = ExtractFilter(c)
	if filter["role"] != "USER" {
		t.Fatalf("body filter should win: %#v", filter)
	}

	// malformed query JSON falls back to empty
	c = testContext(http.MethodGet, "/students/stats?filter=not-json", "")
	if len(ExtractFilter(c)) != 0 {
		t.Fatalf("bad query filter should come back empty")
	}
}

func TestExtractOptionsSortKeepsBodyOrder(t *testing.T) {
	c := testContext(http.MethodPost, "/students/query", `{
		"sort": {"year": -1, "name.last": 1, "name.first": 1, "email": -1, "createdAt": 1}
	}`)

	opts := ExtractOptions(c)
	want := []struct {
		field string
		desc  bool
	}{
		{"year", true},
		{"name.last", false},
		{"name.first", false},
		{"email", true},
		{"createdAt", false},
	}
	if len(opts.Sort) != len(want) {
		t.Fatalf("unexpected sort length: %#v", opts.Sort)
	}
	for i, w := range want {
		if opts.Sort[i].Field != w.field || opts.Sort[i].Desc != w.desc {
			t.Fatalf("got %q at position %d, want %q: %#v", opts.Sort[i].Field, i, w.field, opts.Sort)
		}
	}
}

func TestBodyMapIsReusable(t *testing.T) {
	c := testContext(http.MethodPost, "/students", `{"a": 1}`)

	// the cached body read must survive repeated calls
	first := bodyMap(c)
	second := bodyMap(c)
	if first["a"] == nil || second["a"] == nil {
		t.Fatalf("body should be readable more than once: %#v, %#v", first, second)
	}
}
