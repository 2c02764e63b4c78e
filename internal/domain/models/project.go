// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectReviewing = "reviewing"
	ProjectComplete  = "complete"
	ProjectCancelled = "cancelled"
)

// Entry statuses.
const (
	EntryActive    = "active"
	EntrySubmitted = "submitted"
)

// Project is the central aggregate. Entries, resources and comments are
// embedded so a single read returns the whole project.
type Project struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	Title             string             `bson:"title" json:"title"`
	Summary           string             `bson:"summary" json:"summary"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Category          string             `bson:"category,omitempty" json:"category,omitempty"`
	Deadline          *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Status            string             `bson:"status" json:"status"`
	LiaisonID         string             `bson:"liaison_id" json:"liaisonId"`
	OrganizationID    primitive.ObjectID `bson:"organization_id" json:"organizationId"`
	Deliverables      []string           `bson:"deliverables" json:"deliverables"`
	Resources         []Asset            `bson:"resources" json:"resources"`
	Comments          []Message          `bson:"comments" json:"comments"`
	Entries           []Entry            `bson:"entries" json:"entries"`
	SelectedStudentID string             `bson:"selected_student_id,omitempty" json:"selectedStudentId,omitempty"`
	Reward            *Reward            `bson:"reward,omitempty" json:"reward,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`

	// Populated on read.
	OrganizationName    string `bson:"-" json:"organizationName,omitempty"`
	LiaisonName         string `bson:"-" json:"liaisonName,omitempty"`
	SelectedStudentName string `bson:"-" json:"selectedStudentName,omitempty"`
}

// Entry is one student's submission, embedded in its project.
type Entry struct {
	StudentID  string    `bson:"student_id" json:"studentId"`
	Commentary string    `bson:"commentary,omitempty" json:"commentary,omitempty"`
	Status     string    `bson:"status" json:"status"`
	Assets     []Asset   `bson:"assets" json:"assets,omitempty"`
	Comments   []Message `bson:"comments" json:"comments,omitempty"`
	Selected   bool      `bson:"selected" json:"selected"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt,omitempty"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt,omitempty"`

	StudentName string `bson:"-" json:"studentName,omitempty"`
}

// NewEntry returns an active entry for studentID with empty asset and
// comment lists, ready to be pushed.
func NewEntry(studentID string, at time.Time) Entry {
	return Entry{
		StudentID: studentID,
		Status:    EntryActive,
		Assets:    []Asset{},
		Comments:  []Message{},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// Redacted returns the entry reduced to what non-managing callers may see.
func (e Entry) Redacted() Entry {
	return Entry{StudentID: e.StudentID, Status: e.Status, Selected: e.Selected}
}

// IsProjectStatus reports whether s is a known project status.
func IsProjectStatus(s string) bool {
	switch s {
	case ProjectActive, ProjectReviewing, ProjectComplete, ProjectCancelled:
		return true
	}
	return false
}

// IsEntryStatus reports whether s is a known entry status.
func IsEntryStatus(s string) bool {
	return s == EntryActive || s == EntrySubmitted
}

// AcceptsEntries reports whether students may still sign up.
func (p Project) AcceptsEntries() bool {
	return p.Status != ProjectComplete && p.Status != ProjectCancelled
}

// SelectEntry marks the entry for studentID as selected and every other
// entry as unselected. It reports whether the student had an entry.
func (p *Project) SelectEntry(studentID string) bool {
	found := false
	for i := range p.Entries {
		sel := p.Entries[i].StudentID == studentID
		p.Entries[i].Selected = sel
		if sel {
			found = true
		}
	}
	return found
}
