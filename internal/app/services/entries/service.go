// Package entrysvc implements the student side of a project: signing up
// and off, editing an entry, and the assets and comments on it.
package entrysvc

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/app/system/objectstore"
	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgProjectNotFound = "Project not found"
	msgEntryNotFound   = "Entry not found"
	msgAlreadySignedUp = "You are already signed up for this project"
	msgClosed          = "This project is no longer accepting entries"
)

type Service struct {
	projects  *projectstore.Store
	users     *userstore.Store
	objects   objectstore.Store
	audit     *auditlog.Logger
	log       *zap.Logger
	maxUpload int64
}

func New(db *mongo.Database, objects objectstore.Store, audit *auditlog.Logger, logger *zap.Logger, maxUploadBytes int64) *Service {
	return &Service{
		projects:  projectstore.New(db),
		users:     userstore.New(db),
		objects:   objects,
		audit:     audit,
		log:       logger,
		maxUpload: maxUploadBytes,
	}
}

// entryErr maps store errors for entry operations.
func entryErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, projectstore.ErrNoEntry):
		return apierr.NotFound(msgEntryNotFound)
	case errors.Is(err, projectstore.ErrAlreadySignedUp):
		return apierr.Conflict(msgAlreadySignedUp)
	}
	return apierr.From(err, msgProjectNotFound)
}

// GetByStudentID returns the student's entry with names populated.
func (s *Service) GetByStudentID(ctx context.Context, projectID primitive.ObjectID, studentID string) (models.Entry, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return models.Entry{}, apierr.From(err, msgProjectNotFound)
	}
	i := models.FindEntry(p.Entries, studentID)
	if i < 0 {
		return models.Entry{}, apierr.NotFound(msgEntryNotFound)
	}
	e := p.Entries[i]

	ids := []string{e.StudentID}
	for _, c := range e.Comments {
		ids = append(ids, c.AuthorID)
	}
	users, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return models.Entry{}, apierr.From(err, msgProjectNotFound)
	}
	shared.NameEntry(&e, users)
	return e, nil
}

// Signup creates an active entry for the student. Pushing the entry and
// linking the project to the student are required; provisioning the
// student's storage prefix is best effort.
func (s *Service) Signup(ctx context.Context, projectID primitive.ObjectID, studentID string) (models.Entry, workflow.Report, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return models.Entry{}, workflow.Report{}, apierr.From(err, msgProjectNotFound)
	}
	if models.FindEntry(p.Entries, studentID) >= 0 {
		return models.Entry{}, workflow.Report{}, apierr.Conflict(msgAlreadySignedUp)
	}
	if !p.AcceptsEntries() {
		return models.Entry{}, workflow.Report{}, apierr.Conflict(msgClosed)
	}

	e := models.NewEntry(studentID, time.Now().UTC())
	rep, err := workflow.Run(ctx,
		workflow.Step{
			Name: "push_entry",
			Do: func(ctx context.Context) error {
				return s.projects.PushEntry(ctx, projectID, e)
			},
			Compensate: func(ctx context.Context) error {
				return s.projects.PullEntry(ctx, projectID, studentID)
			},
		},
		workflow.Step{
			Name: "link_student",
			Do: func(ctx context.Context) error {
				err := s.users.AddProject(ctx, studentID, projectID)
				if errors.Is(err, mongo.ErrNoDocuments) {
					return apierr.NotFound("User not found")
				}
				return err
			},
		},
		workflow.Step{
			Name:     "provision_storage",
			Optional: true,
			Do: func(ctx context.Context) error {
				return s.objects.EnsurePrefix(ctx, objectstore.StudentPrefix(studentID, projectID.Hex()))
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "entry_signup", studentID, &projectID, rep)
	if err != nil {
		return models.Entry{}, rep, entryErr(err)
	}
	s.audit.EntrySignup(ctx, studentID, projectID)
	return e, rep, nil
}

// Signoff removes the student's entry and unlinks the project. If the
// unlink fails the entry is put back.
func (s *Service) Signoff(ctx context.Context, projectID primitive.ObjectID, studentID string) (workflow.Report, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return workflow.Report{}, apierr.From(err, msgProjectNotFound)
	}
	i := models.FindEntry(p.Entries, studentID)
	if i < 0 {
		return workflow.Report{}, apierr.NotFound(msgEntryNotFound)
	}
	snapshot := p.Entries[i]

	rep, err := workflow.Run(ctx,
		workflow.Step{
			Name: "pull_entry",
			Do: func(ctx context.Context) error {
				return s.projects.PullEntry(ctx, projectID, studentID)
			},
			Compensate: func(ctx context.Context) error {
				return s.projects.PushEntry(ctx, projectID, snapshot)
			},
		},
		workflow.Step{
			Name: "unlink_student",
			Do: func(ctx context.Context) error {
				err := s.users.RemoveProject(ctx, studentID, projectID)
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil
				}
				return err
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "entry_signoff", studentID, &projectID, rep)
	if err != nil {
		return rep, entryErr(err)
	}
	s.audit.EntrySignoff(ctx, studentID, projectID)
	return rep, nil
}

// Input is the entry update body. Absent fields are left unchanged.
type Input struct {
	Commentary *string `json:"commentary" validate:"omitempty,max=50000" label:"Commentary"`
	Status     *string `json:"status" validate:"omitempty,entrystatus" label:"Status"`
}

// Update changes the entry's commentary and/or status.
func (s *Service) Update(ctx context.Context, projectID primitive.ObjectID, studentID string, in Input) (models.Entry, error) {
	if err := shared.ValidationError(inputval.Validate(in)); err != nil {
		return models.Entry{}, err
	}
	var patch projectstore.EntryPatch
	if in.Commentary != nil {
		c := htmlsanitize.Sanitize(*in.Commentary)
		patch.Commentary = &c
	}
	patch.Status = in.Status
	if err := s.projects.UpdateEntry(ctx, projectID, studentID, patch); err != nil {
		return models.Entry{}, entryErr(err)
	}
	return s.GetByStudentID(ctx, projectID, studentID)
}
