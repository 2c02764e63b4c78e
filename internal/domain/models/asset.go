// internal/domain/models/asset.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset is a named piece of content attached to a project (supplemental
// resource) or to an entry (submission). Uploaded files carry the object
// storage key they were written under.
type Asset struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type" json:"type"` // media type, e.g. image/png
	URI       string             `bson:"uri,omitempty" json:"uri,omitempty"`
	Text      string             `bson:"text,omitempty" json:"text,omitempty"`
	Key       string             `bson:"key,omitempty" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// IsImage reports whether the asset's media type is an image.
func (a Asset) IsImage() bool {
	return a.Type == "image" || strings.HasPrefix(a.Type, "image/")
}

// Message is a comment left on a project or an entry.
type Message struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID  string             `bson:"author_id" json:"authorId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`

	AuthorName string `bson:"-" json:"authorName,omitempty"`
}

// Reward describes what the selected student receives.
type Reward struct {
	Kind        string  `bson:"kind" json:"kind"` // cash | internship | certificate | other
	Amount      float64 `bson:"amount,omitempty" json:"amount,omitempty"`
	Currency    string  `bson:"currency,omitempty" json:"currency,omitempty"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
}
