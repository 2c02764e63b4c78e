// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrAlreadySignedUp = errors.New("student already has an entry for this project")
	ErrNoEntry         = errors.New("student has no entry for this project")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// Create inserts p with a fresh id. Nil embedded lists are stored as empty
// arrays so later $push/$pull operations always have an array to work on.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.Deliverables == nil {
		p.Deliverables = []string{}
	}
	if p.Resources == nil {
		p.Resources = []models.Asset{}
	}
	if p.Comments == nil {
		p.Comments = []models.Message{}
	}
	if p.Entries == nil {
		p.Entries = []models.Entry{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Find returns projects matching filter in storage order.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Project, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Project{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByIDs loads the given projects. Missing ids are skipped.
func (s *Store) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	return s.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// Fields are the liaison-editable project fields. Update overwrites all of
// them.
type Fields struct {
	Title        string
	Summary      string
	Description  string
	Category     string
	Deadline     *time.Time
	Deliverables []string
	Reward       *models.Reward
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, f Fields) error {
	if f.Deliverables == nil {
		f.Deliverables = []string{}
	}
	set := bson.M{
		"title":        f.Title,
		"summary":      f.Summary,
		"description":  f.Description,
		"category":     f.Category,
		"deliverables": f.Deliverables,
		"updated_at":   time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	unset := bson.M{}
	if f.Deadline != nil {
		set["deadline"] = f.Deadline.UTC()
	} else {
		unset["deadline"] = ""
	}
	if f.Reward != nil {
		set["reward"] = f.Reward
	} else {
		unset["reward"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return s.updateOne(ctx, bson.M{"_id": id}, update)
}

// Delete removes a project by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SetStatus persists a status transition together with the selection
// flags on every entry. entries is the full array as read by the caller;
// concurrent entry changes between that read and this write are lost.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status, selectedStudentID string, entries []models.Entry) error {
	if entries == nil {
		entries = []models.Entry{}
	}
	set := bson.M{
		"status":     status,
		"entries":    entries,
		"updated_at": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if selectedStudentID != "" {
		set["selected_student_id"] = selectedStudentID
	} else {
		update["$unset"] = bson.M{"selected_student_id": ""}
	}
	return s.updateOne(ctx, bson.M{"_id": id}, update)
}

// --- project resources and comments ---

func (s *Store) PushResource(ctx context.Context, id primitive.ObjectID, a models.Asset) error {
	return s.push(ctx, bson.M{"_id": id}, "resources", a)
}

// PullResource removes the resource with assetID. Pulling an id that is not
// present is not an error.
func (s *Store) PullResource(ctx context.Context, id, assetID primitive.ObjectID) error {
	return s.pull(ctx, bson.M{"_id": id}, "resources", assetID)
}

func (s *Store) PushComment(ctx context.Context, id primitive.ObjectID, m models.Message) error {
	return s.push(ctx, bson.M{"_id": id}, "comments", m)
}

func (s *Store) PullComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	return s.pull(ctx, bson.M{"_id": id}, "comments", commentID)
}

// --- entries ---

// PushEntry appends e unless the student already has an entry. The
// existence check is part of the update filter.
func (s *Store) PushEntry(ctx context.Context, id primitive.ObjectID, e models.Entry) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "entries.student_id": bson.M{"$ne": e.StudentID}},
		bson.M{
			"$push": bson.M{"entries": e},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOr(ctx, id, ErrAlreadySignedUp)
	}
	return nil
}

// PullEntry removes the student's entry.
func (s *Store) PullEntry(ctx context.Context, id primitive.ObjectID, studentID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "entries.student_id": studentID},
		bson.M{
			"$pull": bson.M{"entries": bson.M{"student_id": studentID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOr(ctx, id, ErrNoEntry)
	}
	return nil
}

// EntryPatch lists the student-editable entry fields; nil fields are left
// untouched.
type EntryPatch struct {
	Commentary *string
	Status     *string
}

func (s *Store) UpdateEntry(ctx context.Context, id primitive.ObjectID, studentID string, p EntryPatch) error {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now, "entries.$.updated_at": now}
	if p.Commentary != nil {
		set["entries.$.commentary"] = *p.Commentary
	}
	if p.Status != nil {
		set["entries.$.status"] = *p.Status
	}
	return s.entryUpdate(ctx, id, studentID, bson.M{"$set": set})
}

func (s *Store) PushEntryAsset(ctx context.Context, id primitive.ObjectID, studentID string, a models.Asset) error {
	return s.entryUpdate(ctx, id, studentID, bson.M{
		"$push": bson.M{"entries.$.assets": a},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) PullEntryAsset(ctx context.Context, id primitive.ObjectID, studentID string, assetID primitive.ObjectID) error {
	return s.entryUpdate(ctx, id, studentID, bson.M{
		"$pull": bson.M{"entries.$.assets": bson.M{"_id": assetID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) PushEntryComment(ctx context.Context, id primitive.ObjectID, studentID string, m models.Message) error {
	return s.entryUpdate(ctx, id, studentID, bson.M{
		"$push": bson.M{"entries.$.comments": m},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) PullEntryComment(ctx context.Context, id primitive.ObjectID, studentID string, commentID primitive.ObjectID) error {
	return s.entryUpdate(ctx, id, studentID, bson.M{
		"$pull": bson.M{"entries.$.comments": bson.M{"_id": commentID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// entryUpdate applies a positional update to the student's entry.
func (s *Store) entryUpdate(ctx context.Context, id primitive.ObjectID, studentID string, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "entries.student_id": studentID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOr(ctx, id, ErrNoEntry)
	}
	return nil
}

func (s *Store) push(ctx context.Context, filter bson.M, field string, v any) error {
	return s.updateOne(ctx, filter, bson.M{
		"$push": bson.M{field: v},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) pull(ctx context.Context, filter bson.M, field string, itemID primitive.ObjectID) error {
	return s.updateOne(ctx, filter, bson.M{
		"$pull": bson.M{field: bson.M{"_id": itemID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// missOr distinguishes "no such project" from a failed entry condition.
func (s *Store) missOr(ctx context.Context, id primitive.ObjectID, conditionErr error) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	return conditionErr
}
