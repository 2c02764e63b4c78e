package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	return WithChiURLParams(r, map[string]string{key: value})
}

// WithChiURLParams adds several chi URL parameters at once.
func WithChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given id and type.
func (f *Fixtures) CreateUser(ctx context.Context, id, name, userType string, orgID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:               id,
		Name:             name,
		NameCI:           text.Fold(name),
		Email:            id + "@test.com",
		UserType:         userType,
		OrganizationID:   orgID,
		Projects:         []primitive.ObjectID{},
		PortfolioEntries: []models.PortfolioEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateStudent inserts a student.
func (f *Fixtures) CreateStudent(ctx context.Context, id, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, id, name, models.UserTypeStudent, nil)
}

// CreateBusiness inserts a business user, optionally tied to an organization.
func (f *Fixtures) CreateBusiness(ctx context.Context, id, name string, orgID *primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, id, name, models.UserTypeBusiness, orgID)
}

// CreateOrganization inserts an organization with the given liaisons.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string, liaisons ...string) models.Organization {
	f.t.Helper()

	if liaisons == nil {
		liaisons = []string{}
	}
	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Domain:    "example.com",
		Liaisons:  liaisons,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateProject inserts an active project owned by liaisonID.
func (f *Fixtures) CreateProject(ctx context.Context, title, liaisonID string, orgID primitive.ObjectID) models.Project {
	f.t.Helper()
	return f.CreateProjectWithEntries(ctx, title, liaisonID, orgID)
}

// CreateProjectWithEntries inserts an active project with one active entry
// per student id.
func (f *Fixtures) CreateProjectWithEntries(ctx context.Context, title, liaisonID string, orgID primitive.ObjectID, studentIDs ...string) models.Project {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	entries := make([]models.Entry, 0, len(studentIDs))
	for _, sid := range studentIDs {
		entries = append(entries, models.Entry{
			StudentID: sid,
			Status:    models.EntryActive,
			Assets:    []models.Asset{},
			Comments:  []models.Message{},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	p := models.Project{
		ID:             primitive.NewObjectID(),
		Title:          title,
		Summary:        title + " summary",
		Status:         models.ProjectActive,
		LiaisonID:      liaisonID,
		OrganizationID: orgID,
		Deliverables:   []string{},
		Resources:      []models.Asset{},
		Comments:       []models.Message{},
		Entries:        entries,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// Marketplace is a ready-made business side: one organization with one
// liaison, plus the given students.
type Marketplace struct {
	Org      models.Organization
	Liaison  models.User
	Students []models.User
}

// CreateMarketplace inserts an organization, its liaison and students
// named student-1..n.
func (f *Fixtures) CreateMarketplace(ctx context.Context, students int) Marketplace {
	f.t.Helper()

	org := f.CreateOrganization(ctx, "Acme Corp", "liaison-1")
	liaison := f.CreateBusiness(ctx, "liaison-1", "Lia Ison", &org.ID)
	m := Marketplace{Org: org, Liaison: liaison}
	for i := 1; i <= students; i++ {
		m.Students = append(m.Students, f.CreateStudent(ctx, fmt.Sprintf("student-%d", i), fmt.Sprintf("Student %d", i)))
	}
	return m
}
