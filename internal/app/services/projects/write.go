package projectsvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/app/system/objectstore"
	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RewardInput is the optional reward block.
type RewardInput struct {
	Kind        string  `json:"kind" validate:"required,oneof=cash internship certificate other" label:"Reward kind"`
	Amount      float64 `json:"amount" validate:"gte=0" label:"Reward amount"`
	Currency    string  `json:"currency" validate:"max=3" label:"Currency"`
	Description string  `json:"description" validate:"max=2000" label:"Reward description"`
}

// Input is the create/update body.
type Input struct {
	Title          string       `json:"title" validate:"required,max=200" label:"Title"`
	Summary        string       `json:"summary" validate:"required,max=2000" label:"Summary"`
	Description    string       `json:"description" validate:"max=50000" label:"Description"`
	Category       string       `json:"category" validate:"max=100" label:"Category"`
	Deadline       *time.Time   `json:"deadline"`
	Deliverables   []string     `json:"deliverables" validate:"max=50,dive,max=500" label:"Deliverables"`
	Reward         *RewardInput `json:"reward"`
	OrganizationID string       `json:"organizationId" validate:"omitempty,objectid" label:"Organization"`
}

func (in *Input) normalize() {
	in.Title = htmlsanitize.PlainText(in.Title)
	in.Summary = htmlsanitize.PlainText(in.Summary)
	in.Description = htmlsanitize.Sanitize(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.OrganizationID = strings.TrimSpace(in.OrganizationID)
	deliverables := make([]string, 0, len(in.Deliverables))
	for _, d := range in.Deliverables {
		if d = htmlsanitize.PlainText(d); d != "" {
			deliverables = append(deliverables, d)
		}
	}
	in.Deliverables = deliverables
}

func (in Input) fields() projectstore.Fields {
	f := projectstore.Fields{
		Title:        in.Title,
		Summary:      in.Summary,
		Description:  in.Description,
		Category:     in.Category,
		Deadline:     in.Deadline,
		Deliverables: in.Deliverables,
	}
	if in.Reward != nil {
		f.Reward = &models.Reward{
			Kind:        in.Reward.Kind,
			Amount:      in.Reward.Amount,
			Currency:    strings.ToUpper(strings.TrimSpace(in.Reward.Currency)),
			Description: htmlsanitize.PlainText(in.Reward.Description),
		}
	}
	return f
}

// Create validates in, resolves the organization (defaulting to the
// liaison's own) and runs the create workflow. Best-effort failures are
// returned in the report rather than as an error.
func (s *Service) Create(ctx context.Context, liaisonID string, in Input) (models.Project, workflow.Report, error) {
	if strings.TrimSpace(liaisonID) == "" {
		return models.Project{}, workflow.Report{}, apierr.Invalid("Liaison is required.")
	}
	in.normalize()
	if err := shared.ValidationError(inputval.Validate(in)); err != nil {
		return models.Project{}, workflow.Report{}, err
	}

	orgID, err := s.resolveOrganization(ctx, liaisonID, in.OrganizationID)
	if err != nil {
		return models.Project{}, workflow.Report{}, err
	}

	f := in.fields()
	p := models.Project{
		Title:          f.Title,
		Summary:        f.Summary,
		Description:    f.Description,
		Category:       f.Category,
		Deadline:       f.Deadline,
		Deliverables:   f.Deliverables,
		Reward:         f.Reward,
		Status:         models.ProjectActive,
		LiaisonID:      liaisonID,
		OrganizationID: orgID,
	}

	var created models.Project
	rep, err := workflow.Run(ctx,
		workflow.Step{
			Name: "insert_project",
			Do: func(ctx context.Context) error {
				var err error
				created, err = s.projects.Create(ctx, p)
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, err := s.projects.Delete(ctx, created.ID)
				return err
			},
		},
		workflow.Step{
			Name:     "link_liaison",
			Optional: true,
			Do: func(ctx context.Context) error {
				return s.users.AddProject(ctx, liaisonID, created.ID)
			},
		},
		workflow.Step{
			Name:     "provision_storage",
			Optional: true,
			Do: func(ctx context.Context) error {
				return s.objects.EnsurePrefix(ctx, objectstore.ProjectPrefix(created.ID.Hex()))
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "project_create", liaisonID, &created.ID, rep)
	if err != nil {
		return models.Project{}, rep, apierr.From(err, msgProjectNotFound)
	}

	s.audit.ProjectCreated(ctx, liaisonID, created.ID, created.OrganizationID, created.Title)
	if err := s.populate(ctx, &created, true); err != nil {
		return models.Project{}, rep, err
	}
	return created, rep, nil
}

func (s *Service) resolveOrganization(ctx context.Context, liaisonID, hex string) (primitive.ObjectID, error) {
	var orgID primitive.ObjectID
	if hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return primitive.NilObjectID, apierr.Invalid("Organization must be a valid ID.")
		}
		orgID = id
	} else {
		u, err := s.users.GetByID(ctx, liaisonID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, apierr.From(err, "User not found")
		}
		if u == nil || u.OrganizationID == nil {
			return primitive.NilObjectID, apierr.Invalid("Organization is required.")
		}
		orgID = *u.OrganizationID
	}
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return primitive.NilObjectID, apierr.From(err, "Organization not found")
	}
	return orgID, nil
}

// Update overwrites the editable fields. Only the owning liaison may call it.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, callerID string, in Input) (models.Project, error) {
	if _, err := s.load(ctx, id, callerID); err != nil {
		return models.Project{}, err
	}
	in.normalize()
	if err := shared.ValidationError(inputval.Validate(in)); err != nil {
		return models.Project{}, err
	}
	if err := s.projects.Update(ctx, id, in.fields()); err != nil {
		return models.Project{}, apierr.From(err, msgProjectNotFound)
	}
	return s.Get(ctx, id, true)
}

// Delete removes the project and unlinks it from the liaison.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, callerID string) (workflow.Report, error) {
	p, err := s.load(ctx, id, callerID)
	if err != nil {
		return workflow.Report{}, err
	}

	rep, err := workflow.Run(ctx,
		workflow.Step{
			Name: "delete_project",
			Do: func(ctx context.Context) error {
				_, err := s.projects.Delete(ctx, id)
				return err
			},
		},
		workflow.Step{
			Name:     "unlink_liaison",
			Optional: true,
			Do: func(ctx context.Context) error {
				err := s.users.RemoveProject(ctx, p.LiaisonID, id)
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil
				}
				return err
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "project_delete", callerID, &id, rep)
	if err != nil {
		return rep, apierr.From(err, msgProjectNotFound)
	}
	s.audit.ProjectDeleted(ctx, callerID, id, p.OrganizationID, p.Title)
	return rep, nil
}

// UpdateStatus moves the project to status. Completing requires a selected
// student with an entry; that entry is marked selected, every other entry
// unselected, and each entry's student gets a portfolio snapshot. A snapshot
// replaces any earlier one for the project, so repeating complete (to finish
// a partial run or to change the selection) keeps portfolios in step.
func (s *Service) UpdateStatus(ctx context.Context, id primitive.ObjectID, callerID, status, selectedStudentID string) (models.Project, workflow.Report, error) {
	status = strings.TrimSpace(status)
	selectedStudentID = strings.TrimSpace(selectedStudentID)
	if !models.IsProjectStatus(status) {
		return models.Project{}, workflow.Report{}, apierr.Invalid("Status must be one of: active, reviewing, complete, cancelled.")
	}
	if status == models.ProjectComplete && selectedStudentID == "" {
		return models.Project{}, workflow.Report{}, apierr.Invalid("A selected student is required to complete a project.")
	}

	p, err := s.load(ctx, id, callerID)
	if err != nil {
		return models.Project{}, workflow.Report{}, err
	}

	from := p.Status
	selected := p.SelectedStudentID
	if selectedStudentID != "" {
		if !p.SelectEntry(selectedStudentID) {
			return models.Project{}, workflow.Report{}, apierr.NotFound("Selected student has no entry for this project")
		}
		selected = selectedStudentID
	}

	if err := s.projects.SetStatus(ctx, id, status, selected, p.Entries); err != nil {
		return models.Project{}, workflow.Report{}, apierr.From(err, msgProjectNotFound)
	}
	p.Status = status
	p.SelectedStudentID = selected
	s.audit.ProjectStatusChanged(ctx, callerID, id, from, status, selected)

	var rep workflow.Report
	if status == models.ProjectComplete {
		rep, err = s.publishPortfolios(ctx, p)
		shared.Finish(ctx, s.log, s.audit, "project_complete", callerID, &id, rep)
		if err != nil {
			step := err.Error()
			if we, ok := workflow.AsError(err); ok {
				step = we.Step
			}
			return models.Project{}, rep, apierr.Internal("Failed to update portfolio for "+strings.TrimPrefix(step, "portfolio:"), err)
		}
	}

	out, err := s.Get(ctx, id, true)
	return out, rep, err
}

func (s *Service) publishPortfolios(ctx context.Context, p models.Project) (workflow.Report, error) {
	now := time.Now().UTC()
	steps := make([]workflow.Step, 0, len(p.Entries))
	for _, e := range p.Entries {
		snapshot := models.NewPortfolioEntry(p, e, now)
		studentID := e.StudentID
		steps = append(steps, workflow.Step{
			Name: "portfolio:" + studentID,
			Do: func(ctx context.Context) error {
				_, err := s.users.PutPortfolioEntry(ctx, studentID, snapshot)
				if errors.Is(err, mongo.ErrNoDocuments) {
					s.log.Warn("portfolio append skipped: student record missing",
						zap.String("project_id", p.ID.Hex()),
						zap.String("student_id", studentID))
					return nil
				}
				return err
			},
		})
	}
	return workflow.FanOut(ctx, s.cfg.FanOutLimit, steps...)
}

func ownsProject(callerID string, p models.Project) bool {
	return authscope.Owns(callerID, p.LiaisonID)
}
