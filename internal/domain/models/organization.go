// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization includes a case/diacritic-insensitive name for search.
// Liaisons is a set of user ids; writes go through $addToSet/$pull.
type Organization struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Domain      string             `bson:"domain,omitempty" json:"domain,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Website     string             `bson:"website,omitempty" json:"website,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Liaisons    []string           `bson:"liaisons" json:"liaisons"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`

	// Populated on read.
	LiaisonProfiles []UserSummary `bson:"-" json:"liaisonProfiles,omitempty"`
}

// HasLiaison reports whether userID is already a liaison.
func (o Organization) HasLiaison(userID string) bool {
	for _, id := range o.Liaisons {
		if id == userID {
			return true
		}
	}
	return false
}
