// internal/domain/models/portfolio.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PortfolioEntry is the denormalized snapshot copied into a student's
// record when a project they took part in completes.
type PortfolioEntry struct {
	ProjectID      primitive.ObjectID `bson:"project_id" json:"projectId"`
	Title          string             `bson:"title" json:"title"`
	Summary        string             `bson:"summary" json:"summary"`
	Category       string             `bson:"category,omitempty" json:"category,omitempty"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organizationId"`
	LiaisonID      string             `bson:"liaison_id" json:"liaisonId"`
	Commentary     string             `bson:"commentary,omitempty" json:"commentary,omitempty"`
	Assets         []Asset            `bson:"assets" json:"assets"`
	Selected       bool               `bson:"selected" json:"selected"`
	CompletedAt    time.Time          `bson:"completed_at" json:"completedAt"`

	OrganizationName string `bson:"-" json:"organizationName,omitempty"`
	LiaisonName      string `bson:"-" json:"liaisonName,omitempty"`
}

// NewPortfolioEntry snapshots p together with one of its entries.
func NewPortfolioEntry(p Project, e Entry, at time.Time) PortfolioEntry {
	assets := e.Assets
	if assets == nil {
		assets = []Asset{}
	}
	return PortfolioEntry{
		ProjectID:      p.ID,
		Title:          p.Title,
		Summary:        p.Summary,
		Category:       p.Category,
		OrganizationID: p.OrganizationID,
		LiaisonID:      p.LiaisonID,
		Commentary:     e.Commentary,
		Assets:         assets,
		Selected:       e.Selected,
		CompletedAt:    at,
	}
}
