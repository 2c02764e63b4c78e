// Package usersvc implements user profiles: the populated read view,
// owner upserts, deletion and portfolio replacement.
package usersvc

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	organizationstore "github.com/dalemusser/projecthub/internal/app/store/organizations"
	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgUserNotFound = "User not found"

type Service struct {
	users    *userstore.Store
	projects *projectstore.Store
	orgs     *organizationstore.Store
	audit    *auditlog.Logger
	log      *zap.Logger
}

func New(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Service {
	return &Service{
		users:    userstore.New(db),
		projects: projectstore.New(db),
		orgs:     organizationstore.New(db),
		audit:    audit,
		log:      logger,
	}
}

// Detail is the populated user view. Projects replaces the stored id list
// with the project documents.
type Detail struct {
	models.User
	Projects     []models.Project     `json:"projects"`
	Organization *models.Organization `json:"organization,omitempty"`
}

// Get loads the user with their projects, organization and portfolio
// references populated. Project entries are redacted unless
// revealEntries is set.
func (s *Service) Get(ctx context.Context, id string, revealEntries bool) (Detail, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return Detail{}, apierr.From(err, msgUserNotFound)
	}
	d := Detail{User: *u}

	projects, err := s.projects.FindByIDs(ctx, u.Projects)
	if err != nil {
		return Detail{}, apierr.From(err, msgUserNotFound)
	}

	orgIDs := make([]primitive.ObjectID, 0, len(projects)+len(u.PortfolioEntries)+1)
	var userIDs []string
	for _, p := range projects {
		orgIDs = append(orgIDs, p.OrganizationID)
		userIDs = append(userIDs, shared.UserIDs(p, true)...)
	}
	for _, pe := range u.PortfolioEntries {
		orgIDs = append(orgIDs, pe.OrganizationID)
		userIDs = append(userIDs, pe.LiaisonID)
	}
	if u.OrganizationID != nil {
		orgIDs = append(orgIDs, *u.OrganizationID)
	}

	orgNames, err := s.orgs.Names(ctx, orgIDs)
	if err != nil {
		return Detail{}, apierr.From(err, msgUserNotFound)
	}
	users, err := s.users.Summaries(ctx, userIDs)
	if err != nil {
		return Detail{}, apierr.From(err, msgUserNotFound)
	}

	for i := range projects {
		projects[i].OrganizationName = orgNames[projects[i].OrganizationID]
		shared.ApplyNames(&projects[i], users)
		if !revealEntries {
			shared.RedactEntries(&projects[i])
		}
	}
	d.Projects = projects

	for i := range d.PortfolioEntries {
		d.PortfolioEntries[i].OrganizationName = orgNames[d.PortfolioEntries[i].OrganizationID]
		d.PortfolioEntries[i].LiaisonName = users[d.PortfolioEntries[i].LiaisonID].Name
	}

	if u.OrganizationID != nil {
		org, err := s.orgs.GetByID(ctx, *u.OrganizationID)
		switch {
		case err == nil:
			d.Organization = &org
		case errors.Is(err, mongo.ErrNoDocuments):
			s.log.Warn("user references a missing organization",
				zap.String("user_id", id),
				zap.String("organization_id", u.OrganizationID.Hex()))
		default:
			return Detail{}, apierr.From(err, msgUserNotFound)
		}
	}
	return d, nil
}

// Input is the profile body.
type Input struct {
	Name      string `json:"name" validate:"required,max=200" label:"Name"`
	Email     string `json:"email" validate:"omitempty,email" label:"Email"`
	UserType  string `json:"userType" validate:"required,usertype" label:"User type"`
	Bio       string `json:"bio" validate:"max=5000" label:"Bio"`
	AvatarURI string `json:"avatarUri" validate:"omitempty,httpurl" label:"Avatar"`
}

// CreateOrUpdate upserts the caller's own profile. Project and portfolio
// lists are preserved.
func (s *Service) CreateOrUpdate(ctx context.Context, id string, in Input) (models.User, error) {
	in.Name = htmlsanitize.PlainText(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.UserType = strings.TrimSpace(in.UserType)
	in.Bio = htmlsanitize.PlainText(in.Bio)
	in.AvatarURI = strings.TrimSpace(in.AvatarURI)
	if err := shared.ValidationError(inputval.Validate(in)); err != nil {
		return models.User{}, err
	}

	u, err := s.users.Upsert(ctx, id, userstore.Profile{
		Name:      in.Name,
		Email:     in.Email,
		UserType:  in.UserType,
		Bio:       in.Bio,
		AvatarURI: in.AvatarURI,
	})
	if err != nil {
		return models.User{}, apierr.From(err, msgUserNotFound)
	}
	return u, nil
}

// Delete removes the user record.
func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.users.Delete(ctx, id)
	if err != nil {
		return apierr.From(err, msgUserNotFound)
	}
	if n == 0 {
		return apierr.NotFound(msgUserNotFound)
	}
	s.audit.UserDeleted(ctx, id)
	return nil
}

// PortfolioInput replaces the whole portfolio list.
type PortfolioInput struct {
	PortfolioEntries []models.PortfolioEntry `json:"portfolioEntries" validate:"max=500" label:"Portfolio entries"`
}

// UpdatePortfolioEntries overwrites the user's portfolio.
func (s *Service) UpdatePortfolioEntries(ctx context.Context, id string, in PortfolioInput) (models.User, error) {
	if err := shared.ValidationError(inputval.Validate(in)); err != nil {
		return models.User{}, err
	}
	entries := make([]models.PortfolioEntry, 0, len(in.PortfolioEntries))
	for _, pe := range in.PortfolioEntries {
		if pe.ProjectID.IsZero() {
			return models.User{}, apierr.Invalid("Each portfolio entry needs a projectId.")
		}
		pe.Title = htmlsanitize.PlainText(pe.Title)
		if pe.Title == "" {
			return models.User{}, apierr.Invalid("Each portfolio entry needs a title.")
		}
		pe.Summary = htmlsanitize.PlainText(pe.Summary)
		pe.Commentary = htmlsanitize.Sanitize(pe.Commentary)
		if pe.Assets == nil {
			pe.Assets = []models.Asset{}
		}
		pe.OrganizationName, pe.LiaisonName = "", ""
		entries = append(entries, pe)
	}

	if err := s.users.SetPortfolio(ctx, id, entries); err != nil {
		return models.User{}, apierr.From(err, msgUserNotFound)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, apierr.From(err, msgUserNotFound)
	}
	return *u, nil
}
