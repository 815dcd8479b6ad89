package handlers

import (
	"net/http"

	"schoolcampus/internal/domain"
	"schoolcampus/internal/http/middleware"
	"schoolcampus/internal/services"

	"github.com/gin-gonic/gin"
)

// Controller is the HTTP-shape adapter over the generic data service. It
// holds no business rules; per-entity route files configure one with the
// entity's default search keys and always-hidden fields.
type Controller[T any] struct {
	Service *services.Service[T]

	// SearchKeys is used when a request names none of its own.
	SearchKeys []string
	// HideKeys is merged into every requested projection; the caller can
	// hide more fields but never unhide these.
	HideKeys []string
}

func NewController[T any](service *services.Service[T], searchKeys, hideKeys []string) *Controller[T] {
	return &Controller[T]{Service: service, SearchKeys: searchKeys, HideKeys: hideKeys}
}

func (ct *Controller[T]) options(c *gin.Context) domain.ServiceOptions {
	opts := ExtractOptions(c)
	if len(opts.SearchKeys) == 0 {
		opts.SearchKeys = ct.SearchKeys
	}
	opts.HideKeys = ct.mergeHideKeys(opts.HideKeys)
	return opts
}

func (ct *Controller[T]) mergeHideKeys(requested []string) []string {
	merged := append([]string{}, ct.HideKeys...)
	seen := map[string]bool{}
	for _, key := range merged {
		seen[key] = true
	}
	for _, key := range requested {
		if !seen[key] {
			seen[key] = true
			merged = append(merged, key)
		}
	}
	return merged
}

// failWrite classifies a write error: constraint problems are the caller's
// fault, the rest is ours.
func failWrite(c *gin.Context, err error, fallback string) {
	switch {
	case domain.IsConflict(err):
		Fail(c, http.StatusBadRequest, "Duplicate entry", err)
	case domain.IsValidation(err):
		Fail(c, http.StatusBadRequest, "Validation failed", err)
	default:
		Fail(c, http.StatusInternalServerError, fallback, err)
	}
}

// HandleCreate inserts the request body as a new record, stamping
// attribution from the authenticated principal when one is present.
func (ct *Controller[T]) HandleCreate(c *gin.Context) {
	data, err := ct.Service.Create(c.Request.Context(), bodyMap(c), middleware.GetAuthUser(c))
	if err != nil {
		failWrite(c, err, "Creation failed")
		return
	}
	Success(c, http.StatusCreated, "Created successfully", data)
}

// HandleGetAll lists records with filtering and pagination.
func (ct *Controller[T]) HandleGetAll(c *gin.Context) {
	result, err := ct.Service.FindAll(c.Request.Context(), ct.options(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to retrieve data", err)
		return
	}
	Success(c, http.StatusOK, "Data retrieved successfully", result)
}

// HandleGetByID fetches one record; the identifier comes from the route
// param or, failing that, the body.
func (ct *Controller[T]) HandleGetByID(c *gin.Context) {
	id := c.Param("_id")
	if id == "" {
		id, _ = bodyMap(c)["_id"].(string)
	}
	if id == "" {
		Fail(c, http.StatusBadRequest, "ID is required", nil)
		return
	}

	hideKeys := ct.mergeHideKeys(keysOption(bodyMap(c), c, "hideKeys"))
	data, err := ct.Service.FindByID(c.Request.Context(), id, hideKeys)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to retrieve data", err)
		return
	}
	if data == nil {
		Fail(c, http.StatusNotFound, "Record not found", nil)
		return
	}
	Success(c, http.StatusOK, "Data retrieved successfully", data)
}

// HandleUpdate patches one record, re-stamping updatedBy/organisation.
func (ct *Controller[T]) HandleUpdate(c *gin.Context) {
	id := c.Param("_id")
	if id == "" {
		Fail(c, http.StatusBadRequest, "ID is required", nil)
		return
	}

	data, err := ct.Service.UpdateByID(c.Request.Context(), id, bodyMap(c), middleware.GetAuthUser(c))
	if err != nil {
		failWrite(c, err, "Update failed")
		return
	}
	if data == nil {
		Fail(c, http.StatusNotFound, "Record not found", nil)
		return
	}
	Success(c, http.StatusOK, "Updated successfully", data)
}

// HandleDelete removes one record and echoes it back.
func (ct *Controller[T]) HandleDelete(c *gin.Context) {
	id := c.Param("_id")
	if id == "" {
		Fail(c, http.StatusBadRequest, "ID is required", nil)
		return
	}

	data, err := ct.Service.DeleteByID(c.Request.Context(), id)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Delete failed", err)
		return
	}
	if data == nil {
		Fail(c, http.StatusNotFound, "Record not found", nil)
		return
	}
	Success(c, http.StatusOK, "Deleted successfully", data)
}

// HandleSearch is HandleGetAll with a mandatory search term.
func (ct *Controller[T]) HandleSearch(c *gin.Context) {
	opts := ct.options(c)
	if opts.SearchTerm == "" {
		Fail(c, http.StatusBadRequest, "Search term is required", nil)
		return
	}

	result, err := ct.Service.FindAll(c.Request.Context(), opts)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Search failed", err)
		return
	}
	Success(c, http.StatusOK, "Search completed successfully", gin.H{
		"results":    result.Data,
		"pagination": result.Pagination,
		"filters":    result.Filters,
	})
}

// HandleGetStats returns the rollup for documents matching the filter.
func (ct *Controller[T]) HandleGetStats(c *gin.Context) {
	stats, err := ct.Service.GetStats(c.Request.Context(), ExtractFilter(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to get statistics", err)
		return
	}
	Success(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

// HandleBulkDelete refuses an empty filter rather than deleting the whole
// collection.
func (ct *Controller[T]) HandleBulkDelete(c *gin.Context) {
	filter := ExtractFilter(c)
	if len(filter) == 0 {
		Fail(c, http.StatusBadRequest, "Filter is required for bulk delete", nil)
		return
	}

	result, err := ct.Service.DeleteMany(c.Request.Context(), filter)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Bulk delete failed", err)
		return
	}
	Success(c, http.StatusOK, "Bulk delete completed", result)
}

// HandleBulkUpdate applies one patch to every record matching the filter.
// The bulk path stamps no attribution.
func (ct *Controller[T]) HandleBulkUpdate(c *gin.Context) {
	body := bodyMap(c)
	filter, hasFilter := toDoc(body["filter"])
	patch, hasPatch := toDoc(body["updateData"])
	if !hasFilter || !hasPatch {
		Fail(c, http.StatusBadRequest, "Filter and updateData are required", nil)
		return
	}

	result, err := ct.Service.UpdateMany(c.Request.Context(), filter, patch)
	if err != nil {
		failWrite(c, err, "Bulk update failed")
		return
	}
	Success(c, http.StatusOK, "Bulk update completed", result)
}

// HandleGetCount counts records matching the (possibly empty) filter.
func (ct *Controller[T]) HandleGetCount(c *gin.Context) {
	count, err := ct.Service.Count(c.Request.Context(), ExtractFilter(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to get count", err)
		return
	}
	Success(c, http.StatusOK, "Count retrieved successfully", gin.H{"count": count})
}

// HandleGetDistinct lists the distinct values of one field.
func (ct *Controller[T]) HandleGetDistinct(c *gin.Context) {
	field := c.Param("field")
	if field == "" {
		field, _ = bodyMap(c)["field"].(string)
	}
	if field == "" {
		Fail(c, http.StatusBadRequest, "Field name is required", nil)
		return
	}

	values, err := ct.Service.Distinct(c.Request.Context(), field, ExtractFilter(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to get distinct values", err)
		return
	}
	Success(c, http.StatusOK, "Distinct values retrieved successfully", gin.H{
		"field":  field,
		"values": values,
	})
}

// HandleNormalizeNames runs the one-shot migration converting stringified
// name objects into structured documents. The field defaults to "name".
func (ct *Controller[T]) HandleNormalizeNames(c *gin.Context) {
	field, _ := bodyMap(c)["field"].(string)
	if field == "" {
		field = "name"
	}

	rewritten, err := ct.Service.NormalizeLegacyNames(c.Request.Context(), field)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Migration failed", err)
		return
	}
	Success(c, http.StatusOK, "Migration completed", gin.H{
		"field":     field,
		"rewritten": rewritten,
	})
}

// HandleExists reports whether any record matches the filter.
func (ct *Controller[T]) HandleExists(c *gin.Context) {
	filter := ExtractFilter(c)
	if len(filter) == 0 {
		Fail(c, http.StatusBadRequest, "Filter is required", nil)
		return
	}

	exists, err := ct.Service.Exists(c.Request.Context(), filter)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to check existence", err)
		return
	}
	Success(c, http.StatusOK, "Existence check completed", gin.H{"exists": exists})
}
