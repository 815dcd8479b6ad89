package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SortField is one entry of an ordered sort specification.
type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// DateRange bounds one field inclusively on either or both ends.
type DateRange struct {
	Field     string     `json:"field"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// ServiceOptions configures a single filtered, paginated read. It is built
// fresh per request and never persisted.
type ServiceOptions struct {
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Sort  []SortField `json:"sort,omitempty"`

	SearchKeys []string `json:"searchKeys,omitempty"`
	SearchTerm string   `json:"searchTerm,omitempty"`

	HideKeys []string `json:"hideKeys,omitempty"`

	// PreFilter and PostFilter are raw store-native fragments merged below
	// and above the generated clauses respectively (escape hatch).
	PreFilter  bson.M `json:"preFilter,omitempty"`
	PostFilter bson.M `json:"postFilter,omitempty"`

	// CustomFilters maps field -> exact-match value. Nil and empty-string
	// values never reach the store.
	CustomFilters map[string]any `json:"customFilters,omitempty"`

	DateRange *DateRange `json:"dateRange,omitempty"`
}

// Normalize fills defaults so every consumer sees page >= 1 and limit >= 1.
func (o ServiceOptions) Normalize() ServiceOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	return o
}

// Pagination describes one page of a filtered result set. Field names are
// part of the wire contract.
type Pagination struct {
	Current      int   `json:"current"`
	Total        int   `json:"total"`
	Count        int   `json:"count"`
	TotalRecords int64 `json:"totalRecords"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// AppliedFilters echoes the resolved filter back to the caller for
// observability. It is not meant to be fed back into another query.
type AppliedFilters struct {
	Applied       bson.M `json:"applied"`
	SearchTerm    string `json:"searchTerm,omitempty"`
	TotalFiltered int64  `json:"totalFiltered"`
}

// ServiceResponse is the result of a filtered, paginated read.
type ServiceResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Filters    AppliedFilters `json:"filters"`
}

// Stats is the rollup computed by GetStats. The active/inactive partition
// follows the service's configured partition field; services without one
// report active == total.
type Stats struct {
	Total           int64 `json:"total"`
	Active          int64 `json:"active"`
	Inactive        int64 `json:"inactive"`
	RecentlyCreated int64 `json:"recentlyCreated"`
	RecentlyUpdated int64 `json:"recentlyUpdated"`
}

// UpdateResult mirrors the store's bulk update counters.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult mirrors the store's bulk delete counter.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
