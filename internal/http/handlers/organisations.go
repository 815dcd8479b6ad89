package handlers

import (
	"net/http"

	"schoolcampus/internal/domain/models"
	"schoolcampus/internal/http/middleware"
	"schoolcampus/internal/services"

	"github.com/gin-gonic/gin"
)

type OrganisationHandler struct {
	*Controller[models.Organisation]
	Organisations *services.OrganisationService
}

func NewOrganisationHandler(organisations *services.OrganisationService) *OrganisationHandler {
	return &OrganisationHandler{
		Controller:    NewController(organisations.Service, services.OrganisationSearchKeys, nil),
		Organisations: organisations,
	}
}

// HandleCreate establishes through the organisation service so the slug is
// derived before insert.
func (h *OrganisationHandler) HandleCreate(c *gin.Context) {
	org, err := h.Organisations.Establish(c.Request.Context(), bodyMap(c), middleware.GetAuthUser(c))
	if err != nil {
		failWrite(c, err, "Creation failed")
		return
	}
	Success(c, http.StatusCreated, "Created successfully", org)
}

// HandleGetBySlug resolves an organisation by its URL slug.
func (h *OrganisationHandler) HandleGetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		Fail(c, http.StatusBadRequest, "Slug is required", nil)
		return
	}

	org, err := h.Organisations.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to retrieve data", err)
		return
	}
	if org == nil {
		Fail(c, http.StatusNotFound, "Record not found", nil)
		return
	}
	Success(c, http.StatusOK, "Data retrieved successfully", org)
}

// HandleTypeDistribution groups organisations by their type.
func (h *OrganisationHandler) HandleTypeDistribution(c *gin.Context) {
	distribution, err := h.Organisations.TypeDistribution(c.Request.Context())
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to get statistics", err)
		return
	}
	Success(c, http.StatusOK, "Statistics retrieved successfully", distribution)
}
