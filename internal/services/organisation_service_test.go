package services

import (
	"context"
	"testing"

	"schoolcampus/internal/domain"
	"schoolcampus/internal/domain/models"
	"schoolcampus/internal/store/memory"

	"go.mongodb.org/mongo-driver/bson"
)

func newOrganisationService() *OrganisationService {
	return NewOrganisationService(memory.NewCollection("organisations", "slug"))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"North Campus":          "north-campus",
		"  St. Mary's College ": "st-mary-s-college",
		"ALL CAPS":              "all-caps",
		"already-a-slug":        "already-a-slug",
		"Trailing!!":            "trailing",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEstablishDerivesSlug(t *testing.T) {
	svc := newOrganisationService()
	ctx := context.Background()

	org, err := svc.Establish(ctx, bson.M{
		"name":             "North Campus",
		"organisationType": models.OrgTypeSchool,
	}, nil)
	if err != nil {
		t.Fatalf("establish error: %v", err)
	}
	if org.Slug != "north-campus" {
		t.Fatalf("expected derived slug, got %q", org.Slug)
	}
	if org.IsActive == nil || !*org.IsActive {
		t.Fatalf("new organisations start active: %#v", org.IsActive)
	}

	// caller-provided slugs are kept, lowercased
	org, err = svc.Establish(ctx, bson.M{
		"name":             "South Campus",
		"organisationType": models.OrgTypeSchool,
		"slug":             "SOUTH",
	}, nil)
	if err != nil {
		t.Fatalf("establish error: %v", err)
	}
	if org.Slug != "south" {
		t.Fatalf("expected lowercased slug, got %q", org.Slug)
	}
}

func TestEstablishValidation(t *testing.T) {
	svc := newOrganisationService()
	ctx := context.Background()

	if _, err := svc.Establish(ctx, bson.M{"organisationType": models.OrgTypeSchool}, nil); !domain.IsValidation(err) {
		t.Fatalf("missing name should fail validation, got %v", err)
	}
	if _, err := svc.Establish(ctx, bson.M{"name": "X"}, nil); !domain.IsValidation(err) {
		t.Fatalf("missing type should fail validation, got %v", err)
	}
	if _, err := svc.Establish(ctx, bson.M{"name": "X", "organisationType": "GUILD"}, nil); !domain.IsValidation(err) {
		t.Fatalf("unknown type should fail validation, got %v", err)
	}
}

func TestGetBySlug(t *testing.T) {
	svc := newOrganisationService()
	ctx := context.Background()

	if _, err := svc.Establish(ctx, bson.M{"name": "North Campus", "organisationType": models.OrgTypeSchool}, nil); err != nil {
		t.Fatalf("establish error: %v", err)
	}

	org, err := svc.GetBySlug(ctx, "North-Campus")
	if err != nil || org == nil {
		t.Fatalf("slug lookup should be case-insensitive, got %v, %v", org, err)
	}
	missing, err := svc.GetBySlug(ctx, "nowhere")
	if err != nil || missing != nil {
		t.Fatalf("unknown slug should be (nil, nil), got %v, %v", missing, err)
	}
}

func TestTypeDistribution(t *testing.T) {
	svc := newOrganisationService()
	ctx := context.Background()

	seed := []string{models.OrgTypeSchool, models.OrgTypeSchool, models.OrgTypeCollege}
	for i, orgType := range seed {
		_, err := svc.Establish(ctx, bson.M{
			"name":             "Org",
			"slug":             Slugify("org") + "-" + string(rune('a'+i)),
			"organisationType": orgType,
		}, nil)
		if err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	dist, err := svc.TypeDistribution(ctx)
	if err != nil {
		t.Fatalf("distribution error: %v", err)
	}
	if dist[models.OrgTypeSchool] != 2 || dist[models.OrgTypeCollege] != 1 {
		t.Fatalf("unexpected distribution: %#v", dist)
	}
}
