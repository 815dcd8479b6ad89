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
	OrganisationSearchKeys = []string{"name", "slug", "domain"}
	OrganisationHideKeys   = []string{}
)

type OrganisationService struct {
	*Service[models.Organisation]
}

func NewOrganisationService(coll store.Collection) *OrganisationService {
	return &OrganisationService{
		Service: New[models.Organisation]("organisation", coll,
			WithValidator(validateOrganisation),
			WithActiveField("isActive"),
		),
	}
}

func validateOrganisation(doc bson.M) error {
	if name, ok := doc["name"].(string); ok && strings.TrimSpace(name) == "" {
		return domain.ValidationError{Field: "name", Msg: "must not be blank"}
	}
	if orgType, ok := doc["organisationType"].(string); ok {
		switch orgType {
		case models.OrgTypeSchool, models.OrgTypeCollege, models.OrgTypeUniversity, models.OrgTypeInstitute:
		default:
			return domain.ValidationError{Field: "organisationType", Msg: "unknown organisation type"}
		}
	}
	return nil
}

// Establish creates an organisation, deriving the slug from the name when
// the caller leaves it out.
func (s *OrganisationService) Establish(ctx context.Context, data bson.M, user *domain.AuthUser) (*models.Organisation, error) {
	doc := copyShallow(data)
	name, _ := doc["name"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, domain.ValidationError{Field: "name", Msg: "required"}
	}
	if _, ok := doc["organisationType"]; !ok {
		return nil, domain.ValidationError{Field: "organisationType", Msg: "required"}
	}
	if slug, _ := doc["slug"].(string); slug == "" {
		doc["slug"] = Slugify(name)
	} else {
		doc["slug"] = strings.ToLower(slug)
	}
	if _, ok := doc["isActive"]; !ok {
		doc["isActive"] = true
	}
	return s.Create(ctx, doc, user)
}

// GetBySlug resolves an organisation by its URL slug.
func (s *OrganisationService) GetBySlug(ctx context.Context, slug string) (*models.Organisation, error) {
	return s.FindOne(ctx, bson.M{"slug": strings.ToLower(slug)}, nil)
}

// TypeDistribution counts organisations per organisationType through the
// aggregation escape hatch.
func (s *OrganisationService) TypeDistribution(ctx context.Context) (map[string]int64, error) {
	rows, err := s.Aggregate(ctx, []bson.M{
		{"$group": bson.M{"_id": "$organisationType", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
	})
	if err != nil {
		return nil, err
	}

	dist := map[string]int64{}
	for _, row := range rows {
		key, _ := row["_id"].(string)
		if key == "" {
			key = "UNKNOWN"
		}
		switch n := row["count"].(type) {
		case int32:
			dist[key] = int64(n)
		case int64:
			dist[key] = n
		case float64:
			dist[key] = int64(n)
		}
	}
	return dist, nil
}

// Slugify lowercases a name and collapses everything else to hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
