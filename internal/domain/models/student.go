package models

import (
	"schoolcampus/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Student struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"_id,omitempty"`
	Name          *domain.Name        `bson:"name,omitempty" json:"name,omitempty"`
	Email         string              `bson:"email,omitempty" json:"email,omitempty"`
	Age           int                 `bson:"age,omitempty" json:"age,omitempty"`
	UserProfileID *primitive.ObjectID `bson:"userProfileId,omitempty" json:"userProfileId,omitempty"`
	IsActive      *bool               `bson:"isActive,omitempty" json:"isActive,omitempty"`

	Audit `bson:",inline"`
}
