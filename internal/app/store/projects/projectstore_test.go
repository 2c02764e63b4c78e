package projectstore_test

import (
	"errors"
	"testing"
	"time"

	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Project{
		Title:          "Logo design",
		Summary:        "Design a logo",
		Status:         models.ProjectActive,
		LiaisonID:      "liaison-1",
		OrganizationID: orgID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected an id to be assigned")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Logo design" || got.OrganizationID != orgID {
		t.Errorf("unexpected project %+v", got)
	}
	if got.Entries == nil || got.Resources == nil || got.Comments == nil {
		t.Error("expected embedded lists to be empty arrays, not null")
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_FindByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	p1 := fx.CreateProject(ctx, "One", "liaison-1", orgID)
	fx.CreateProject(ctx, "Two", "liaison-1", orgID)
	if err := store.SetStatus(ctx, p1.ID, models.ProjectReviewing, "", nil); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	active, err := store.Find(ctx, bson.M{"status": models.ProjectActive})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(active) != 1 || active[0].Title != "Two" {
		t.Errorf("active projects = %+v", active)
	}

	all, err := store.Find(ctx, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 projects, got %d", len(all))
	}

	byIDs, err := store.FindByIDs(ctx, []primitive.ObjectID{p1.ID, primitive.NewObjectID()})
	if err != nil || len(byIDs) != 1 {
		t.Errorf("FindByIDs = %v, %v", byIDs, err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Old", "liaison-1", primitive.NewObjectID())
	deadline := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	err := store.Update(ctx, p.ID, projectstore.Fields{
		Title:        "New",
		Summary:      "New summary",
		Deadline:     &deadline,
		Deliverables: []string{"pdf"},
		Reward:       &models.Reward{Kind: "cash", Amount: 100, Currency: "USD"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.Title != "New" || got.Reward == nil || got.Reward.Amount != 100 {
		t.Errorf("unexpected project after update: %+v", got)
	}
	if got.Deadline == nil || !got.Deadline.Equal(deadline) {
		t.Errorf("deadline = %v, want %v", got.Deadline, deadline)
	}

	// Full overwrite clears optional fields that are not supplied.
	if err := store.Update(ctx, p.ID, projectstore.Fields{Title: "New", Summary: "s"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ = store.GetByID(ctx, p.ID)
	if got.Deadline != nil || got.Reward != nil {
		t.Errorf("expected deadline and reward cleared, got %+v", got)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), projectstore.Fields{Title: "x"}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Entries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "P", "liaison-1", primitive.NewObjectID())
	now := time.Now().UTC()

	if err := store.PushEntry(ctx, p.ID, models.NewEntry("student-1", now)); err != nil {
		t.Fatalf("PushEntry failed: %v", err)
	}
	err := store.PushEntry(ctx, p.ID, models.NewEntry("student-1", now))
	if !errors.Is(err, projectstore.ErrAlreadySignedUp) {
		t.Fatalf("expected ErrAlreadySignedUp, got %v", err)
	}
	if err := store.PushEntry(ctx, primitive.NewObjectID(), models.NewEntry("student-1", now)); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for missing project, got %v", err)
	}

	commentary := "my take"
	status := models.EntrySubmitted
	if err := store.UpdateEntry(ctx, p.ID, "student-1", projectstore.EntryPatch{Commentary: &commentary, Status: &status}); err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}

	asset := models.Asset{ID: primitive.NewObjectID(), Name: "a.png", Type: "image/png", URI: "memory://objects/a.png", CreatedAt: now}
	if err := store.PushEntryAsset(ctx, p.ID, "student-1", asset); err != nil {
		t.Fatalf("PushEntryAsset failed: %v", err)
	}
	msg := models.Message{ID: primitive.NewObjectID(), AuthorID: "liaison-1", Text: "nice", CreatedAt: now}
	if err := store.PushEntryComment(ctx, p.ID, "student-1", msg); err != nil {
		t.Fatalf("PushEntryComment failed: %v", err)
	}

	got, _ := store.GetByID(ctx, p.ID)
	i := models.FindEntry(got.Entries, "student-1")
	if i < 0 {
		t.Fatal("entry not found")
	}
	e := got.Entries[i]
	if e.Commentary != commentary || e.Status != status || len(e.Assets) != 1 || len(e.Comments) != 1 {
		t.Errorf("unexpected entry %+v", e)
	}

	if err := store.PullEntryAsset(ctx, p.ID, "student-1", asset.ID); err != nil {
		t.Fatalf("PullEntryAsset failed: %v", err)
	}
	if err := store.PullEntryComment(ctx, p.ID, "student-1", primitive.NewObjectID()); err != nil {
		t.Fatalf("PullEntryComment of unknown id should be a no-op, got %v", err)
	}
	got, _ = store.GetByID(ctx, p.ID)
	e = got.Entries[models.FindEntry(got.Entries, "student-1")]
	if len(e.Assets) != 0 || len(e.Comments) != 1 {
		t.Errorf("unexpected entry after pulls %+v", e)
	}

	if err := store.PushEntryAsset(ctx, p.ID, "student-2", asset); !errors.Is(err, projectstore.ErrNoEntry) {
		t.Errorf("expected ErrNoEntry, got %v", err)
	}

	if err := store.PullEntry(ctx, p.ID, "student-1"); err != nil {
		t.Fatalf("PullEntry failed: %v", err)
	}
	if err := store.PullEntry(ctx, p.ID, "student-1"); !errors.Is(err, projectstore.ErrNoEntry) {
		t.Errorf("expected ErrNoEntry on second pull, got %v", err)
	}
}

func TestStore_ResourcesAndComments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "P", "liaison-1", primitive.NewObjectID())
	a1 := models.Asset{ID: primitive.NewObjectID(), Name: "brief", Type: "text/html", Text: "<p>x</p>"}
	a2 := models.Asset{ID: primitive.NewObjectID(), Name: "link", Type: "text/uri-list", URI: "https://example.com"}
	for _, a := range []models.Asset{a1, a2} {
		if err := store.PushResource(ctx, p.ID, a); err != nil {
			t.Fatalf("PushResource failed: %v", err)
		}
	}
	if err := store.PushComment(ctx, p.ID, models.Message{ID: primitive.NewObjectID(), AuthorID: "u", Text: "hi"}); err != nil {
		t.Fatalf("PushComment failed: %v", err)
	}

	if err := store.PullResource(ctx, p.ID, a1.ID); err != nil {
		t.Fatalf("PullResource failed: %v", err)
	}
	if err := store.PullResource(ctx, p.ID, primitive.NewObjectID()); err != nil {
		t.Fatalf("PullResource of unknown id should be a no-op, got %v", err)
	}

	got, _ := store.GetByID(ctx, p.ID)
	if len(got.Resources) != 1 || got.Resources[0].ID != a2.ID {
		t.Errorf("resources = %+v", got.Resources)
	}
	if len(got.Comments) != 1 {
		t.Errorf("comments = %+v", got.Comments)
	}

	if err := store.PushResource(ctx, primitive.NewObjectID(), a1); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_SetStatusAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProjectWithEntries(ctx, "P", "liaison-1", primitive.NewObjectID(), "student-1", "student-2")
	p.SelectEntry("student-2")
	if err := store.SetStatus(ctx, p.ID, models.ProjectComplete, "student-2", p.Entries); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.Status != models.ProjectComplete || got.SelectedStudentID != "student-2" {
		t.Errorf("unexpected status fields %+v", got)
	}
	selected := 0
	for _, e := range got.Entries {
		if e.Selected {
			selected++
		}
	}
	if selected != 1 {
		t.Errorf("expected exactly one selected entry, got %d", selected)
	}

	n, err := store.Delete(ctx, p.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
}
