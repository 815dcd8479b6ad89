package handlers

import (
	"net/http"

	"schoolcampus/internal/domain/models"
	"schoolcampus/internal/http/middleware"
	"schoolcampus/internal/services"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	*Controller[models.Student]
	Students *services.StudentService
}

func NewStudentHandler(students *services.StudentService) *StudentHandler {
	return &StudentHandler{
		Controller: NewController(students.Service, services.StudentSearchKeys, nil),
		Students:   students,
	}
}

// HandleCreate enrolls through the student service so the required-field
// checks run before the generic create.
func (h *StudentHandler) HandleCreate(c *gin.Context) {
	student, err := h.Students.Enroll(c.Request.Context(), bodyMap(c), middleware.GetAuthUser(c))
	if err != nil {
		failWrite(c, err, "Creation failed")
		return
	}
	Success(c, http.StatusCreated, "Created successfully", student)
}
