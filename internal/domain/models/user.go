// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types.
const (
	UserTypeStudent  = "student"
	UserTypeBusiness = "business"
)

// User is keyed by the user id half of the authenticated principal
// ("<provider>|<userId>"), so _id is a string rather than an ObjectID.
type User struct {
	ID             string              `bson:"_id" json:"id"`
	Name           string              `bson:"name" json:"name"`
	NameCI         string              `bson:"name_ci" json:"-"`
	Email          string              `bson:"email,omitempty" json:"email,omitempty"`
	UserType       string              `bson:"user_type" json:"userType"` // student | business
	Bio            string              `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURI      string              `bson:"avatar_uri,omitempty" json:"avatarUri,omitempty"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organizationId,omitempty"`

	Projects         []primitive.ObjectID `bson:"projects" json:"projects"`
	PortfolioEntries []PortfolioEntry     `bson:"portfolio_entries" json:"portfolioEntries"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsBusiness reports whether the user is on the business side.
func (u User) IsBusiness() bool { return u.UserType == UserTypeBusiness }

// UserSummary is the display projection used when populating references.
type UserSummary struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// IsValidUserType reports whether t is a known user type.
func IsValidUserType(t string) bool {
	return t == UserTypeStudent || t == UserTypeBusiness
}
