package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser    = "USER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

// User is an account that can log in. Password is write-only; every read
// path hides it through the projection layer.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name     string             `bson:"name,omitempty" json:"name,omitempty"`
	Email    string             `bson:"email,omitempty" json:"email,omitempty"`
	Password string             `bson:"password,omitempty" json:"password,omitempty"`
	Role     string             `bson:"role,omitempty" json:"role,omitempty"`
	IsActive *bool              `bson:"isActive,omitempty" json:"isActive,omitempty"`

	Audit `bson:",inline"`
}
