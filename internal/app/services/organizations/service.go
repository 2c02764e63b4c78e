// Package orgsvc implements organization listing, creation, field-level
// updates and liaison membership.
package orgsvc

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	organizationstore "github.com/dalemusser/projecthub/internal/app/store/organizations"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Update policies.
const (
	// PolicyAny lets any caller holding the management scope edit any
	// organization.
	PolicyAny = "any"
	// PolicyLiaison restricts edits to the organization's liaisons.
	PolicyLiaison = "liaison"
)

// IsValidPolicy reports whether p is a known update policy.
func IsValidPolicy(p string) bool { return p == PolicyAny || p == PolicyLiaison }

const (
	msgOrgNotFound  = "Organization not found"
	msgUserNotFound = "User not found"
)

type Service struct {
	orgs   *organizationstore.Store
	users  *userstore.Store
	audit  *auditlog.Logger
	log    *zap.Logger
	policy string
}

func New(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger, policy string) *Service {
	if !IsValidPolicy(policy) {
		policy = PolicyAny
	}
	return &Service{
		orgs:   organizationstore.New(db),
		users:  userstore.New(db),
		audit:  audit,
		log:    logger,
		policy: policy,
	}
}

// List returns organizations sorted by name. Honoured filter keys: "name"
// (case- and diacritic-insensitive prefix) and "domain" (exact).
func (s *Service) List(ctx context.Context, filter map[string]string) ([]models.Organization, error) {
	q := bson.M{}
	if name := strings.TrimSpace(filter["name"]); name != "" {
		q["name_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(text.Fold(name))}
	}
	if domain := normalizeDomain(filter["domain"]); domain != "" {
		q["domain"] = domain
	}
	orgs, err := s.orgs.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apierr.From(err, msgOrgNotFound)
	}
	return orgs, nil
}

// Get loads an organization with liaison display fields.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return models.Organization{}, apierr.From(err, msgOrgNotFound)
	}
	users, err := s.users.Summaries(ctx, org.Liaisons)
	if err != nil {
		return models.Organization{}, apierr.From(err, msgOrgNotFound)
	}
	org.LiaisonProfiles = make([]models.UserSummary, 0, len(org.Liaisons))
	for _, uid := range org.Liaisons {
		sum, ok := users[uid]
		if !ok {
			sum = models.UserSummary{ID: uid}
		}
		org.LiaisonProfiles = append(org.LiaisonProfiles, sum)
	}
	return org, nil
}

// Input is the create body.
type Input struct {
	Name        string `json:"name" validate:"required,max=200" label:"Name"`
	Domain      string `json:"domain" validate:"omitempty,max=253,fqdn" label:"Domain"`
	Description string `json:"description" validate:"max=5000" label:"Description"`
	Website     string `json:"website" validate:"omitempty,httpurl" label:"Website"`
	Location    string `json:"location" validate:"max=200" label:"Location"`
}

func (in *Input) normalize() {
	in.Name = htmlsanitize.PlainText(in.Name)
	in.Domain = normalizeDomain(in.Domain)
	in.Description = htmlsanitize.PlainText(in.Description)
	in.Website = strings.TrimSpace(in.Website)
	in.Location = htmlsanitize.PlainText(in.Location)
}

func normalizeDomain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Create persists a new organization with the creator as its only
// liaison and points the creator's record at it. The creator must be an
// existing business user.
func (s *Service) Create(ctx context.Context, creatorID string, in Input) (models.Organization, workflow.Report, error) {
	u, err := s.users.GetByID(ctx, creatorID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Organization{}, workflow.Report{}, apierr.From(err, msgUserNotFound)
	}
	if u == nil || !u.IsBusiness() {
		return models.Organization{}, workflow.Report{}, apierr.Forbidden("Only business users can create organizations")
	}

	in.normalize()
	if err := shared.ValidationError(inputval.Validate(in)); err != nil {
		return models.Organization{}, workflow.Report{}, err
	}

	var created models.Organization
	rep, err := workflow.Run(ctx,
		workflow.Step{
			Name: "insert_organization",
			Do: func(ctx context.Context) error {
				var err error
				created, err = s.orgs.Create(ctx, models.Organization{
					Name:        in.Name,
					Domain:      in.Domain,
					Description: in.Description,
					Website:     in.Website,
					Location:    in.Location,
					Liaisons:    []string{creatorID},
				})
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, err := s.orgs.Delete(ctx, created.ID)
				return err
			},
		},
		workflow.Step{
			Name: "link_creator",
			Do: func(ctx context.Context) error {
				return s.users.SetOrganization(ctx, creatorID, created.ID)
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "organization_create", creatorID, nil, rep)
	if err != nil {
		if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
			return models.Organization{}, rep, apierr.Conflict("An organization with this name already exists")
		}
		return models.Organization{}, rep, apierr.From(err, msgUserNotFound)
	}
	s.audit.OrgCreated(ctx, creatorID, created.ID, created.Name)

	out, err := s.Get(ctx, created.ID)
	return out, rep, err
}

// PatchInput is the update body; absent fields are left unchanged.
type PatchInput struct {
	Name        *string `json:"name" validate:"omitempty,max=200" label:"Name"`
	Domain      *string `json:"domain" validate:"omitempty,max=253,fqdn" label:"Domain"`
	Description *string `json:"description" validate:"omitempty,max=5000" label:"Description"`
	Website     *string `json:"website" validate:"omitempty,httpurl" label:"Website"`
	Location    *string `json:"location" validate:"omitempty,max=200" label:"Location"`
}

func (in PatchInput) patch() organizationstore.Patch {
	plain := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := htmlsanitize.PlainText(*p)
		return &v
	}
	p := organizationstore.Patch{
		Name:        plain(in.Name),
		Description: plain(in.Description),
		Location:    plain(in.Location),
	}
	p.Domain = in.Domain
	if in.Website != nil {
		w := strings.TrimSpace(*in.Website)
		p.Website = &w
	}
	return p
}

// authorize applies the configured update policy.
func (s *Service) authorize(org models.Organization, callerID string) error {
	if s.policy == PolicyLiaison && !org.HasLiaison(callerID) {
		return apierr.Forbidden("Only a liaison of this organization can modify it")
	}
	return nil
}

// Update overwrites the fields present in in.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, callerID string, in PatchInput) (models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return models.Organization{}, apierr.From(err, msgOrgNotFound)
	}
	if err := s.authorize(org, callerID); err != nil {
		return models.Organization{}, err
	}
	if in.Domain != nil {
		d := normalizeDomain(*in.Domain)
		in.Domain = &d
	}
	if err := shared.ValidationError(inputval.Validate(in)); err != nil {
		return models.Organization{}, err
	}
	p := in.patch()
	if p.Name != nil && *p.Name == "" {
		return models.Organization{}, apierr.Invalid("Name is required.")
	}

	if err := s.orgs.Update(ctx, id, p); err != nil {
		if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
			return models.Organization{}, apierr.Conflict("An organization with this name already exists")
		}
		return models.Organization{}, apierr.From(err, msgOrgNotFound)
	}
	s.audit.OrgUpdated(ctx, callerID, id, p.Fields())
	return s.Get(ctx, id)
}

// AddLiaison makes userID a liaison and points their record at the
// organization.
func (s *Service) AddLiaison(ctx context.Context, id primitive.ObjectID, callerID, userID string) (models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return models.Organization{}, apierr.From(err, msgOrgNotFound)
	}
	if err := s.authorize(org, callerID); err != nil {
		return models.Organization{}, err
	}
	if org.HasLiaison(userID) {
		return models.Organization{}, apierr.Conflict("User is already a liaison of this organization")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return models.Organization{}, apierr.From(err, msgUserNotFound)
	}

	rep, err := workflow.Run(ctx,
		workflow.Step{
			Name: "add_liaison",
			Do: func(ctx context.Context) error {
				return s.orgs.AddLiaison(ctx, id, userID)
			},
			Compensate: func(ctx context.Context) error {
				return s.orgs.RemoveLiaison(ctx, id, userID)
			},
		},
		workflow.Step{
			Name: "link_user",
			Do: func(ctx context.Context) error {
				return s.users.SetOrganization(ctx, userID, id)
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "liaison_add", callerID, nil, rep)
	if err != nil {
		if errors.Is(err, organizationstore.ErrAlreadyLiaison) {
			return models.Organization{}, apierr.Conflict("User is already a liaison of this organization")
		}
		return models.Organization{}, apierr.From(err, msgOrgNotFound)
	}
	s.audit.LiaisonAdded(ctx, callerID, userID, id)
	return s.Get(ctx, id)
}

// RemoveLiaison drops userID from the liaisons and clears their
// organization reference when it still points here.
func (s *Service) RemoveLiaison(ctx context.Context, id primitive.ObjectID, callerID, userID string) (models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return models.Organization{}, apierr.From(err, msgOrgNotFound)
	}
	if err := s.authorize(org, callerID); err != nil {
		return models.Organization{}, err
	}
	if !org.HasLiaison(userID) {
		return models.Organization{}, apierr.Conflict("User is not a liaison of this organization")
	}

	rep, err := workflow.Run(ctx,
		workflow.Step{
			Name: "remove_liaison",
			Do: func(ctx context.Context) error {
				return s.orgs.RemoveLiaison(ctx, id, userID)
			},
			Compensate: func(ctx context.Context) error {
				return s.orgs.AddLiaison(ctx, id, userID)
			},
		},
		workflow.Step{
			Name: "unlink_user",
			Do: func(ctx context.Context) error {
				return s.users.ClearOrganization(ctx, userID, id)
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "liaison_remove", callerID, nil, rep)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotLiaison) {
			return models.Organization{}, apierr.Conflict("User is not a liaison of this organization")
		}
		return models.Organization{}, apierr.From(err, msgOrgNotFound)
	}
	s.audit.LiaisonRemoved(ctx, callerID, userID, id)
	return s.Get(ctx, id)
}
