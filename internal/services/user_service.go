package services

import (
	"context"
	"strings"

	"schoolcampus/internal/domain"
	"schoolcampus/internal/domain/models"
	"schoolcampus/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// UserSearchKeys and UserHideKeys are the fixed request defaults for the
// users resource. The password never leaves the store on a read path.
var (
	UserSearchKeys = []string{"name", "email"}
	UserHideKeys   = []string{"password"}
)

type UserService struct {
	*Service[models.User]
}

func NewUserService(coll store.Collection) *UserService {
	return &UserService{
		Service: New[models.User]("user", coll,
			WithValidator(validateUser),
			WithActiveField("isActive"),
		),
	}
}

func validateUser(doc bson.M) error {
	if email, ok := doc["email"].(string); ok && !strings.Contains(email, "@") {
		return domain.ValidationError{Field: "email", Msg: "must be a valid email address"}
	}
	if password, ok := doc["password"].(string); ok && len(password) < 6 {
		return domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}
	if role, ok := doc["role"].(string); ok {
		switch role {
		case models.RoleUser, models.RoleManager, models.RoleAdmin:
		default:
			return domain.ValidationError{Field: "role", Msg: "unknown role"}
		}
	}
	return nil
}

// Register creates an account: required fields checked, email lowercased,
// password bcrypt-hashed before the generic create runs.
func (s *UserService) Register(ctx context.Context, data bson.M, user *domain.AuthUser) (*models.User, error) {
	doc := copyShallow(data)

	email, _ := doc["email"].(string)
	password, _ := doc["password"].(string)
	if strings.TrimSpace(email) == "" {
		return nil, domain.ValidationError{Field: "email", Msg: "required"}
	}
	if password == "" {
		return nil, domain.ValidationError{Field: "password", Msg: "required"}
	}

	doc["email"] = strings.ToLower(strings.TrimSpace(email))
	if _, ok := doc["role"]; !ok {
		doc["role"] = models.RoleUser
	}
	if _, ok := doc["isActive"]; !ok {
		doc["isActive"] = true
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	doc["password"] = hashed

	created, err := s.Create(ctx, doc, user)
	if err != nil {
		return nil, err
	}
	created.Password = ""
	return created, nil
}

// GetByEmail returns the user without the password field.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.FindOne(ctx, bson.M{"email": strings.ToLower(email)}, UserHideKeys)
}

// Authenticate checks credentials and returns the user (password cleared)
// when they hold. A bad email or password both come back as nil.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindOne(ctx, bson.M{"email": strings.ToLower(email)}, nil)
	if err != nil || user == nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.Exists(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *UserService) UpdatePassword(ctx context.Context, id, newPassword string, user *domain.AuthUser) (*models.User, error) {
	if len(newPassword) < 6 {
		return nil, domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	updated, err := s.UpdateByID(ctx, id, bson.M{"password": hashed}, user)
	if err != nil || updated == nil {
		return nil, err
	}
	updated.Password = ""
	return updated, nil
}

// ToggleStatus flips isActive on one user.
func (s *UserService) ToggleStatus(ctx context.Context, id string, user *domain.AuthUser) (*models.User, error) {
	current, err := s.FindByID(ctx, id, UserHideKeys)
	if err != nil || current == nil {
		return nil, err
	}
	next := current.IsActive == nil || !*current.IsActive
	return s.UpdateByID(ctx, id, bson.M{"isActive": next}, user)
}

// UserStats extends the generic rollup with per-role counts.
type UserStats struct {
	domain.Stats
	Admins   int64 `json:"admins"`
	Managers int64 `json:"managers"`
	Users    int64 `json:"users"`
}

func (s *UserService) GetUserStats(ctx context.Context, filter bson.M) (UserStats, error) {
	base, err := s.GetStats(ctx, filter)
	if err != nil {
		return UserStats{}, err
	}

	stats := UserStats{Stats: base}
	for role, dst := range map[string]*int64{
		models.RoleAdmin:   &stats.Admins,
		models.RoleManager: &stats.Managers,
		models.RoleUser:    &stats.Users,
	} {
		count, err := s.Count(ctx, withClause(filter, "role", role))
		if err != nil {
			return UserStats{}, err
		}
		*dst = count
	}
	return stats, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.InternalError{Msg: "hash password", Err: err}
	}
	return string(hashed), nil
}
