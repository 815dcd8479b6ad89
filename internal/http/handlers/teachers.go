package handlers

import (
	"net/http"

	"schoolcampus/internal/domain/models"
	"schoolcampus/internal/http/middleware"
	"schoolcampus/internal/services"

	"github.com/gin-gonic/gin"
)

type TeacherHandler struct {
	*Controller[models.Teacher]
	Teachers *services.TeacherService
}

func NewTeacherHandler(teachers *services.TeacherService) *TeacherHandler {
	return &TeacherHandler{
		Controller: NewController(teachers.Service, services.TeacherSearchKeys, services.TeacherHideKeys),
		Teachers:   teachers,
	}
}

// HandleCreate onboards through the teacher service so optional passwords
// get hashed.
func (h *TeacherHandler) HandleCreate(c *gin.Context) {
	teacher, err := h.Teachers.Onboard(c.Request.Context(), bodyMap(c), middleware.GetAuthUser(c))
	if err != nil {
		failWrite(c, err, "Creation failed")
		return
	}
	Success(c, http.StatusCreated, "Created successfully", teacher)
}
