package userstore_test

import (
	"testing"
	"time"

	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Upsert(ctx, "student-1", userstore.Profile{Name: "Sam", UserType: models.UserTypeStudent})
	if err != nil {
		t.Fatalf("Upsert (insert) failed: %v", err)
	}
	if created.ID != "student-1" || created.CreatedAt.IsZero() {
		t.Errorf("unexpected created user %+v", created)
	}
	if created.Projects == nil || created.PortfolioEntries == nil {
		t.Error("expected list fields initialised on insert")
	}

	pid := primitive.NewObjectID()
	if err := store.AddProject(ctx, "student-1", pid); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}

	updated, err := store.Upsert(ctx, "student-1", userstore.Profile{Name: "Samantha", UserType: models.UserTypeStudent, Bio: "hi"})
	if err != nil {
		t.Fatalf("Upsert (update) failed: %v", err)
	}
	if updated.Name != "Samantha" || updated.Bio != "hi" {
		t.Errorf("profile not updated: %+v", updated)
	}
	if len(updated.Projects) != 1 || updated.Projects[0] != pid {
		t.Errorf("projects not preserved: %v", updated.Projects)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, "nobody"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Projects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "student-1", "Sam")
	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()

	for _, pid := range []primitive.ObjectID{p1, p2, p1} {
		if err := store.AddProject(ctx, "student-1", pid); err != nil {
			t.Fatalf("AddProject failed: %v", err)
		}
	}
	u, _ := store.GetByID(ctx, "student-1")
	if len(u.Projects) != 2 {
		t.Fatalf("expected 2 projects (set semantics), got %v", u.Projects)
	}

	if err := store.RemoveProject(ctx, "student-1", p1); err != nil {
		t.Fatalf("RemoveProject failed: %v", err)
	}
	u, _ = store.GetByID(ctx, "student-1")
	if len(u.Projects) != 1 || u.Projects[0] != p2 {
		t.Errorf("projects = %v, want [%v]", u.Projects, p2)
	}

	if err := store.AddProject(ctx, "nobody", p1); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for missing user, got %v", err)
	}
}

func TestStore_Organization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateBusiness(ctx, "biz-1", "Bea", nil)
	org1, org2 := primitive.NewObjectID(), primitive.NewObjectID()

	if err := store.SetOrganization(ctx, "biz-1", org1); err != nil {
		t.Fatalf("SetOrganization failed: %v", err)
	}
	// Clearing a different organization leaves the reference alone.
	if err := store.ClearOrganization(ctx, "biz-1", org2); err != nil {
		t.Fatalf("ClearOrganization failed: %v", err)
	}
	u, _ := store.GetByID(ctx, "biz-1")
	if u.OrganizationID == nil || *u.OrganizationID != org1 {
		t.Fatalf("organization_id = %v, want %v", u.OrganizationID, org1)
	}

	if err := store.ClearOrganization(ctx, "biz-1", org1); err != nil {
		t.Fatalf("ClearOrganization failed: %v", err)
	}
	u, _ = store.GetByID(ctx, "biz-1")
	if u.OrganizationID != nil {
		t.Errorf("expected organization_id cleared, got %v", u.OrganizationID)
	}
}

func TestStore_PutPortfolioEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "student-1", "Sam")
	e := models.PortfolioEntry{ProjectID: primitive.NewObjectID(), Title: "Logo", CompletedAt: time.Now().UTC()}

	appended, err := store.PutPortfolioEntry(ctx, "student-1", e)
	if err != nil || !appended {
		t.Fatalf("first put: appended=%v err=%v", appended, err)
	}

	e.Selected = true
	e.Title = "Logo v2"
	appended, err = store.PutPortfolioEntry(ctx, "student-1", e)
	if err != nil || appended {
		t.Fatalf("second put: appended=%v err=%v", appended, err)
	}

	u, _ := store.GetByID(ctx, "student-1")
	if len(u.PortfolioEntries) != 1 {
		t.Fatalf("expected 1 portfolio entry, got %d", len(u.PortfolioEntries))
	}
	if got := u.PortfolioEntries[0]; !got.Selected || got.Title != "Logo v2" {
		t.Errorf("expected the entry replaced, got %+v", got)
	}

	if _, err := store.PutPortfolioEntry(ctx, "nobody", e); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for missing user, got %v", err)
	}
}

func TestStore_SetPortfolioAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "student-1", "Sam")
	entries := []models.PortfolioEntry{
		{ProjectID: primitive.NewObjectID(), Title: "A"},
		{ProjectID: primitive.NewObjectID(), Title: "B"},
	}
	if err := store.SetPortfolio(ctx, "student-1", entries); err != nil {
		t.Fatalf("SetPortfolio failed: %v", err)
	}
	u, _ := store.GetByID(ctx, "student-1")
	if len(u.PortfolioEntries) != 2 || u.PortfolioEntries[1].Title != "B" {
		t.Errorf("portfolio = %+v", u.PortfolioEntries)
	}

	sums, err := store.Summaries(ctx, []string{"student-1", "student-1", "nobody"})
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(sums) != 1 || sums["student-1"].Name != "Sam" {
		t.Errorf("Summaries = %v", sums)
	}

	n, err := store.Delete(ctx, "student-1")
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	n, _ = store.Delete(ctx, "student-1")
	if n != 0 {
		t.Errorf("second Delete removed %d", n)
	}
}
