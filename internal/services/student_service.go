package services

import (
	"context"
	"strings"

	"schoolcampus/internal/domain"
	"schoolcampus/internal/domain/models"
	"schoolcampus/internal/store"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	StudentSearchKeys = []string{"name.first", "name.last", "email"}
	StudentHideKeys   = []string{}
)

type StudentService struct {
	*Service[models.Student]
}

func NewStudentService(coll store.Collection) *StudentService {
	return &StudentService{
		Service: New[models.Student]("student", coll,
			WithValidator(validateStudent),
			WithActiveField("isActive"),
		),
	}
}

func validateStudent(doc bson.M) error {
	if email, ok := doc["email"].(string); ok && !strings.Contains(email, "@") {
		return domain.ValidationError{Field: "email", Msg: "must be a valid email address"}
	}
	if age, ok := doc["age"]; ok {
		switch n := age.(type) {
		case int:
			if n <= 0 {
				return domain.ValidationError{Field: "age", Msg: "must be positive"}
			}
		case int32:
			if n <= 0 {
				return domain.ValidationError{Field: "age", Msg: "must be positive"}
			}
		case int64:
			if n <= 0 {
				return domain.ValidationError{Field: "age", Msg: "must be positive"}
			}
		case float64:
			if n <= 0 {
				return domain.ValidationError{Field: "age", Msg: "must be positive"}
			}
		}
	}
	return nil
}

// Enroll creates a student after checking the fields the form must supply.
func (s *StudentService) Enroll(ctx context.Context, data bson.M, user *domain.AuthUser) (*models.Student, error) {
	doc := copyShallow(data)
	if _, ok := doc["name"]; !ok {
		return nil, domain.ValidationError{Field: "name", Msg: "required"}
	}
	if email, _ := doc["email"].(string); strings.TrimSpace(email) == "" {
		return nil, domain.ValidationError{Field: "email", Msg: "required"}
	}
	doc["email"] = strings.ToLower(strings.TrimSpace(doc["email"].(string)))
	if _, ok := doc["isActive"]; !ok {
		doc["isActive"] = true
	}
	return s.Create(ctx, doc, user)
}
