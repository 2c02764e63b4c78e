package projectsvc

import (
	"context"
	"strings"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// List returns projects in storage order. Only the "status" filter key is
// honoured; anything else is ignored. Entries are redacted unless
// revealEntries is set.
func (s *Service) List(ctx context.Context, filter map[string]string, revealEntries bool) ([]models.Project, error) {
	q := bson.M{}
	if st := strings.TrimSpace(filter["status"]); st != "" {
		q["status"] = st
	}

	projects, err := s.projects.Find(ctx, q)
	if err != nil {
		return nil, apierr.From(err, msgProjectNotFound)
	}

	orgIDs := make([]primitive.ObjectID, 0, len(projects))
	for _, p := range projects {
		orgIDs = append(orgIDs, p.OrganizationID)
	}
	names, err := s.orgs.Names(ctx, orgIDs)
	if err != nil {
		return nil, apierr.From(err, msgProjectNotFound)
	}
	for i := range projects {
		projects[i].OrganizationName = names[projects[i].OrganizationID]
		if !revealEntries {
			shared.RedactEntries(&projects[i])
		}
	}
	return projects, nil
}

// Get loads one project with its references populated.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID, revealEntries bool) (models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, apierr.From(err, msgProjectNotFound)
	}
	if err := s.populate(ctx, &p, revealEntries); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *Service) populate(ctx context.Context, p *models.Project, revealEntries bool) error {
	names, err := s.orgs.Names(ctx, []primitive.ObjectID{p.OrganizationID})
	if err != nil {
		return apierr.From(err, msgProjectNotFound)
	}
	p.OrganizationName = names[p.OrganizationID]

	users, err := s.users.Summaries(ctx, shared.UserIDs(*p, revealEntries))
	if err != nil {
		return apierr.From(err, msgProjectNotFound)
	}
	shared.ApplyNames(p, users)
	if !revealEntries {
		shared.RedactEntries(p)
	}
	return nil
}

// load fetches a project and checks that callerID owns it.
func (s *Service) load(ctx context.Context, id primitive.ObjectID, callerID string) (models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, apierr.From(err, msgProjectNotFound)
	}
	if !ownsProject(callerID, p) {
		return models.Project{}, apierr.Forbidden(msgNotOwner)
	}
	return p, nil
}
