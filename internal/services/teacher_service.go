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
	TeacherSearchKeys = []string{"name.first", "name.last", "email"}
	TeacherHideKeys   = []string{"password"}
)

type TeacherService struct {
	*Service[models.Teacher]
}

func NewTeacherService(coll store.Collection) *TeacherService {
	return &TeacherService{
		Service: New[models.Teacher]("teacher", coll,
			WithValidator(validateTeacher),
			WithActiveField("isActive"),
		),
	}
}

func validateTeacher(doc bson.M) error {
	if email, ok := doc["email"].(string); ok && email != "" && !strings.Contains(email, "@") {
		return domain.ValidationError{Field: "email", Msg: "must be a valid email address"}
	}
	if password, ok := doc["password"].(string); ok && password != "" && len(password) < 6 {
		return domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}
	return nil
}

// Onboard creates a teacher record, hashing the optional password.
func (s *TeacherService) Onboard(ctx context.Context, data bson.M, user *domain.AuthUser) (*models.Teacher, error) {
	doc := copyShallow(data)
	if _, ok := doc["name"]; !ok {
		return nil, domain.ValidationError{Field: "name", Msg: "required"}
	}
	if email, ok := doc["email"].(string); ok && email != "" {
		doc["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	if password, ok := doc["password"].(string); ok && password != "" {
		hashed, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		doc["password"] = hashed
	}
	if _, ok := doc["isActive"]; !ok {
		doc["isActive"] = true
	}

	created, err := s.Create(ctx, doc, user)
	if err != nil {
		return nil, err
	}
	created.Password = ""
	return created, nil
}
