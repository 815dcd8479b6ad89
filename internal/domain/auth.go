package domain

// Name is the structured person name used across entities.
type Name struct {
	First  string `bson:"first,omitempty" json:"first,omitempty"`
	Middle string `bson:"middle,omitempty" json:"middle,omitempty"`
	Last   string `bson:"last,omitempty" json:"last,omitempty"`
}

// Attribution records which principal performed a write, or which tenant a
// document belongs to. The ID is always the store-native identifier, never a
// raw string.
type Attribution struct {
	ID   any    `bson:"_id" json:"_id"`
	Name string `bson:"name" json:"name"`
}

// OrgRef is the organisation a principal acts on behalf of.
type OrgRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// AuthUser is the attribution principal attached to a request after token
// verification. Name may be a plain string or a structured Name; legacy
// records occasionally hold other shapes, which FormatUserName tolerates.
type AuthUser struct {
	ID           string  `json:"_id"`
	Name         any     `json:"name,omitempty"`
	Role         string  `json:"role,omitempty"`
	Organisation *OrgRef `json:"organisation,omitempty"`
}
