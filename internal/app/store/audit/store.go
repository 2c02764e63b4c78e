// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryProject      = "project"
	CategoryEntry        = "entry"
	CategoryOrganization = "organization"
	CategoryUser         = "user"
	CategoryWorkflow     = "workflow"
)

// Event types
const (
	EventProjectCreated       = "project_created"
	EventProjectDeleted       = "project_deleted"
	EventProjectStatusChanged = "project_status_changed"
	EventEntrySignup          = "entry_signup"
	EventEntrySignoff         = "entry_signoff"
	EventOrgCreated           = "org_created"
	EventOrgUpdated           = "org_updated"
	EventLiaisonAdded         = "liaison_added"
	EventLiaisonRemoved       = "liaison_removed"
	EventUserDeleted          = "user_deleted"
	EventWorkflowIncomplete   = "workflow_incomplete"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who did it, and to whom (user ids are principal-derived strings).
	ActorID   string `bson:"actor_id,omitempty"`
	SubjectID string `bson:"subject_id,omitempty"`

	ProjectID      *primitive.ObjectID `bson:"project_id,omitempty"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty"`

	IP        string `bson:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty"`
	RequestID string `bson:"request_id,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	ActorID        string
	ProjectID      *primitive.ObjectID
	OrganizationID *primitive.ObjectID
	Category       string
	EventType      string
	StartTime      *time.Time
	EndTime        *time.Time
	Limit          int64
	Offset         int64
}

func (f QueryFilter) query() bson.M {
	q := bson.M{}
	if f.ActorID != "" {
		q["actor_id"] = f.ActorID
	}
	if f.ProjectID != nil {
		q["project_id"] = *f.ProjectID
	}
	if f.OrganizationID != nil {
		q["organization_id"] = *f.OrganizationID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.StartTime != nil || f.EndTime != nil {
		ts := bson.M{}
		if f.StartTime != nil {
			ts["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			ts["$lte"] = *f.EndTime
		}
		q["timestamp"] = ts
	}
	return q
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// DeleteBefore removes events older than cutoff and returns how many went.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
