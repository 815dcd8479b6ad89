package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrgTypeSchool     = "SCHOOL"
	OrgTypeCollege    = "COLLEGE"
	OrgTypeUniversity = "UNIVERSITY"
	OrgTypeInstitute  = "INSTITUTE"
)

type ContactInfo struct {
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Website string `bson:"website,omitempty" json:"website,omitempty"`
}

// Organisation is the multi-tenancy boundary: users and teachers are scoped
// to one organisation through the attribution object on their documents.
type Organisation struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Name             string               `bson:"name,omitempty" json:"name,omitempty"`
	Slug             string               `bson:"slug,omitempty" json:"slug,omitempty"`
	Domain           string               `bson:"domain,omitempty" json:"domain,omitempty"`
	Logo             string               `bson:"logo,omitempty" json:"logo,omitempty"`
	Established      *time.Time           `bson:"established,omitempty" json:"established,omitempty"`
	Motto            string               `bson:"motto,omitempty" json:"motto,omitempty"`
	Description      string               `bson:"description,omitempty" json:"description,omitempty"`
	OrganisationType string               `bson:"organisationType,omitempty" json:"organisationType,omitempty"`
	BoardType        string               `bson:"boardType,omitempty" json:"boardType,omitempty"`
	Address          []Address            `bson:"address,omitempty" json:"address,omitempty"`
	ContactInfo      *ContactInfo         `bson:"contactInfo,omitempty" json:"contactInfo,omitempty"`
	AdminIDs         []primitive.ObjectID `bson:"adminIds,omitempty" json:"adminIds,omitempty"`
	IsActive         *bool                `bson:"isActive,omitempty" json:"isActive,omitempty"`

	Audit `bson:",inline"`
}
