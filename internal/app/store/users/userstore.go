package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Summaries loads display fields for the given ids. Unknown ids are absent
// from the result.
func (s *Store) Summaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": dedupe(ids)}},
		options.Find().SetProjection(bson.M{"name": 1, "email": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var sum models.UserSummary
		if err := cur.Decode(&sum); err != nil {
			return nil, err
		}
		out[sum.ID] = sum
	}
	return out, cur.Err()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Profile is the owner-editable part of a user record.
type Profile struct {
	Name      string
	Email     string
	UserType  string
	Bio       string
	AvatarURI string
}

// Upsert creates or updates the profile for id. Project and portfolio
// lists are initialised on insert and otherwise left alone.
func (s *Store) Upsert(ctx context.Context, id string, p Profile) (models.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":       p.Name,
			"name_ci":    text.Fold(p.Name),
			"email":      p.Email,
			"user_type":  p.UserType,
			"bio":        p.Bio,
			"avatar_uri": p.AvatarURI,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"projects":          bson.A{},
			"portfolio_entries": bson.A{},
			"created_at":        now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Delete removes a user by id. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddProject adds projectID to the user's project list (set semantics).
func (s *Store) AddProject(ctx context.Context, userID string, projectID primitive.ObjectID) error {
	return s.updateOne(ctx, userID, bson.M{
		"$addToSet": bson.M{"projects": projectID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

// RemoveProject pulls projectID from the user's project list.
func (s *Store) RemoveProject(ctx context.Context, userID string, projectID primitive.ObjectID) error {
	return s.updateOne(ctx, userID, bson.M{
		"$pull": bson.M{"projects": projectID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// SetOrganization points the user at orgID.
func (s *Store) SetOrganization(ctx context.Context, userID string, orgID primitive.ObjectID) error {
	return s.updateOne(ctx, userID, bson.M{
		"$set": bson.M{"organization_id": orgID, "updated_at": time.Now().UTC()},
	})
}

// ClearOrganization unsets the user's organization, but only while it
// still points at orgID.
func (s *Store) ClearOrganization(ctx context.Context, userID string, orgID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "organization_id": orgID},
		bson.M{
			"$unset": bson.M{"organization_id": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}

// PutPortfolioEntry stores e as the user's portfolio entry for e.ProjectID:
// an existing entry for the project is replaced, otherwise e is pushed.
// Repeating the call leaves one entry per project. It reports whether an
// entry was appended; a missing user is mongo.ErrNoDocuments.
func (s *Store) PutPortfolioEntry(ctx context.Context, userID string, e models.PortfolioEntry) (bool, error) {
	replaced, err := s.replacePortfolioEntry(ctx, userID, e)
	if err != nil || replaced {
		return false, err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "portfolio_entries.project_id": bson.M{"$ne": e.ProjectID}},
		bson.M{
			"$push": bson.M{"portfolio_entries": e},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	// Either the user is missing or a concurrent call pushed first.
	replaced, err = s.replacePortfolioEntry(ctx, userID, e)
	if err != nil {
		return false, err
	}
	if !replaced {
		return false, mongo.ErrNoDocuments
	}
	return false, nil
}

func (s *Store) replacePortfolioEntry(ctx context.Context, userID string, e models.PortfolioEntry) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "portfolio_entries.project_id": e.ProjectID},
		bson.M{"$set": bson.M{
			"portfolio_entries.$": e,
			"updated_at":          time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// SetPortfolio replaces the whole portfolio list.
func (s *Store) SetPortfolio(ctx context.Context, userID string, entries []models.PortfolioEntry) error {
	if entries == nil {
		entries = []models.PortfolioEntry{}
	}
	return s.updateOne(ctx, userID, bson.M{
		"$set": bson.M{"portfolio_entries": entries, "updated_at": time.Now().UTC()},
	})
}

func (s *Store) updateOne(ctx context.Context, userID string, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
