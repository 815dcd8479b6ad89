package models

import (
	"time"

	"schoolcampus/internal/domain"
)

// Audit carries the attribution and timestamp fields the data service stamps
// on every write. Embed it inline in each entity.
type Audit struct {
	CreatedAt    time.Time           `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	CreatedBy    *domain.Attribution `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy    *domain.Attribution `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	Organisation *domain.Attribution `bson:"organisation,omitempty" json:"organisation,omitempty"`
}
