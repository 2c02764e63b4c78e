// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateOrganization = errors.New("an organization with this name already exists")
	ErrAlreadyLiaison        = errors.New("user is already a liaison of this organization")
	ErrNotLiaison            = errors.New("user is not a liaison of this organization")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.NameCI = text.Fold(org.Name)
	if org.Liaisons == nil {
		org.Liaisons = []string{}
	}
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, org)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// GetByIDs loads multiple organizations by their ObjectIDs.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Names maps organization ids to names. Missing ids are simply absent.
func (s *Store) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Name
	}
	return out, cur.Err()
}

// Patch lists the editable fields; nil fields are left untouched.
type Patch struct {
	Name        *string
	Domain      *string
	Description *string
	Website     *string
	Location    *string
}

// Fields returns the bson names of the fields the patch sets.
func (p Patch) Fields() []string {
	var out []string
	for name, v := range map[string]*string{
		"name": p.Name, "domain": p.Domain, "description": p.Description,
		"website": p.Website, "location": p.Location,
	} {
		if v != nil {
			out = append(out, name)
		}
	}
	return out
}

// Update overwrites the fields set in p and refreshes UpdatedAt. A missing
// organization is mongo.ErrNoDocuments.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if p.Name != nil {
		set["name"] = *p.Name
		set["name_ci"] = text.Fold(*p.Name)
	}
	if p.Domain != nil {
		set["domain"] = *p.Domain
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Website != nil {
		set["website"] = *p.Website
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateOrganization
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an organization by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddLiaison adds userID to the liaison set. The filter only matches when
// the user is absent, so the check and the write are one operation.
func (s *Store) AddLiaison(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "liaisons": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"liaisons": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOr(ctx, id, ErrAlreadyLiaison)
	}
	return nil
}

// RemoveLiaison removes userID from the liaison set.
func (s *Store) RemoveLiaison(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "liaisons": userID},
		bson.M{
			"$pull": bson.M{"liaisons": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOr(ctx, id, ErrNotLiaison)
	}
	return nil
}

// missOr distinguishes "no such organization" from a failed condition.
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

// Find returns organizations matching the given filter with optional find options.
// The caller is responsible for building the filter and options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Organization, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orgs := []models.Organization{}
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}
