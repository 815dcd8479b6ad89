package models

import (
	"schoolcampus/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	Line1    string `bson:"line1,omitempty" json:"line1,omitempty"`
	Line2    string `bson:"line2,omitempty" json:"line2,omitempty"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	PostCode string `bson:"postCode,omitempty" json:"postCode,omitempty"`
	Country  string `bson:"country,omitempty" json:"country,omitempty"`
}

type Teacher struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"_id,omitempty"`
	Name           *domain.Name        `bson:"name,omitempty" json:"name,omitempty"`
	Address        *Address            `bson:"address,omitempty" json:"address,omitempty"`
	Email          string              `bson:"email,omitempty" json:"email,omitempty"`
	Password       string              `bson:"password,omitempty" json:"password,omitempty"`
	UserProfileID  *primitive.ObjectID `bson:"userProfileId,omitempty" json:"userProfileId,omitempty"`
	OrganisationID *primitive.ObjectID `bson:"organisationId,omitempty" json:"organisationId,omitempty"`
	IsActive       *bool               `bson:"isActive,omitempty" json:"isActive,omitempty"`

	Audit `bson:",inline"`
}
