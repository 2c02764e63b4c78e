// internal/app/features/auditlog/types.go
package auditlog

import (
	"slices"
	"time"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
)

const pageSize = 50

// eventItem is one row of the history.
type eventItem struct {
	ID               string            `json:"id"`
	Timestamp        time.Time         `json:"timestamp"`
	Category         string            `json:"category"`
	EventType        string            `json:"eventType"`
	ActorID          string            `json:"actorId,omitempty"`
	ActorName        string            `json:"actorName,omitempty"`
	SubjectID        string            `json:"subjectId,omitempty"`
	ProjectID        string            `json:"projectId,omitempty"`
	OrganizationID   string            `json:"organizationId,omitempty"`
	OrganizationName string            `json:"organizationName,omitempty"`
	Success          bool              `json:"success"`
	FailureReason    string            `json:"failureReason,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Items      []eventItem `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
}

var categories = []string{
	audit.CategoryProject,
	audit.CategoryEntry,
	audit.CategoryOrganization,
	audit.CategoryUser,
	audit.CategoryWorkflow,
}

// eventTypesForCategory returns the event types recorded under category.
// An empty category means all of them; an unknown one yields nil.
func eventTypesForCategory(category string) []string {
	byCategory := map[string][]string{
		audit.CategoryProject:      {audit.EventProjectCreated, audit.EventProjectDeleted, audit.EventProjectStatusChanged},
		audit.CategoryEntry:        {audit.EventEntrySignup, audit.EventEntrySignoff},
		audit.CategoryOrganization: {audit.EventOrgCreated, audit.EventOrgUpdated, audit.EventLiaisonAdded, audit.EventLiaisonRemoved},
		audit.CategoryUser:         {audit.EventUserDeleted},
		audit.CategoryWorkflow:     {audit.EventWorkflowIncomplete},
	}
	if category != "" {
		return byCategory[category]
	}
	var all []string
	for _, c := range categories {
		all = append(all, byCategory[c]...)
	}
	return all
}

func validCategory(category string) bool {
	return category == "" || slices.Contains(categories, category)
}
