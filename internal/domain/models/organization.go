// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a tenant record. Slug is globally unique (unique index on
// the organizations collection) and URL-safe.
type Organization struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Slug   string             `bson:"slug" json:"slug"`

	// LogoRef is an opaque blob-storage reference; empty means no logo.
	LogoRef string `bson:"logo_ref,omitempty" json:"logo_ref,omitempty"`

	Plan string `bson:"plan" json:"plan"` // free | pro | enterprise

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Plan tiers.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// IsValidPlan reports whether plan is one of the known plan tiers.
func IsValidPlan(plan string) bool {
	return plan == PlanFree || plan == PlanPro || plan == PlanEnterprise
}
