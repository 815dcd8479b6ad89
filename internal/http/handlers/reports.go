package handlers

import (
	"net/http"

	"schoolcampus/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	Reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

// Overview streams the campus overview report as a PDF attachment.
func (h *ReportHandler) Overview(c *gin.Context) {
	pdf, filename, err := h.Reports.GenerateOverview(c.Request.Context())
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Report generation failed", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
