package services

import (
	"regexp"
	"strings"

	"schoolcampus/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormatUserName normalizes a principal's name to a single display string.
// Accepts a plain string, a domain.Name, or a decoded document with
// first/middle/last keys; present parts are joined with single spaces.
func FormatUserName(name any) string {
	switch n := name.(type) {
	case nil:
		return ""
	case string:
		return n
	case domain.Name:
		return joinNameParts(n.First, n.Middle, n.Last)
	case *domain.Name:
		if n == nil {
			return ""
		}
		return joinNameParts(n.First, n.Middle, n.Last)
	case bson.M:
		return joinNameParts(stringAt(n, "first"), stringAt(n, "middle"), stringAt(n, "last"))
	case map[string]any:
		return joinNameParts(stringAt(n, "first"), stringAt(n, "middle"), stringAt(n, "last"))
	case bson.D:
		m := bson.M{}
		for _, e := range n {
			m[e.Key] = e.Value
		}
		return joinNameParts(stringAt(m, "first"), stringAt(m, "middle"), stringAt(m, "last"))
	}
	return ""
}

func joinNameParts(parts ...string) string {
	present := []string{}
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, " ")
}

func stringAt(m bson.M, key string) string {
	s, _ := m[key].(string)
	return s
}

var legacyNamePart = regexp.MustCompile(`(first|middle|last)['"]?\s*:\s*['"]([^'"]+)['"]`)

// ParseLegacyName recovers a structured name from a string that holds a
// serialized name object ("{ first: 'A', last: 'C' }"). It exists for the
// one-time migration pass (Service.NormalizeLegacyNames); steady-state code
// never sees such strings. Returns ok=false when nothing can be extracted.
func ParseLegacyName(raw string) (domain.Name, bool) {
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") || !strings.Contains(raw, "first") {
		return domain.Name{}, false
	}
	var name domain.Name
	found := false
	for _, m := range legacyNamePart.FindAllStringSubmatch(raw, -1) {
		found = true
		switch m[1] {
		case "first":
			name.First = m[2]
		case "middle":
			name.Middle = m[2]
		case "last":
			name.Last = m[2]
		}
	}
	return name, found
}

// userAttribution builds the {_id, name} pair stored on createdBy/updatedBy,
// normalizing the id to an ObjectID when it parses as one.
func userAttribution(user *domain.AuthUser) bson.M {
	return bson.M{
		"_id":  normalizeID(user.ID),
		"name": FormatUserName(user.Name),
	}
}

// orgAttribution builds the {_id, name} pair recording tenant ownership.
func orgAttribution(org *domain.OrgRef) bson.M {
	return bson.M{
		"_id":  normalizeID(org.ID),
		"name": org.Name,
	}
}

func normalizeID(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
