package projectsvc

import (
	"bytes"
	"context"
	"time"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/filepayload"
	"github.com/dalemusser/projecthub/internal/app/system/objectstore"
	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AddResource attaches a link or text resource.
func (s *Service) AddResource(ctx context.Context, id primitive.ObjectID, callerID string, in shared.AssetInput) (models.Asset, error) {
	if _, err := s.load(ctx, id, callerID); err != nil {
		return models.Asset{}, err
	}
	a, err := shared.BuildAsset(in, time.Now().UTC())
	if err != nil {
		return models.Asset{}, err
	}
	if err := s.projects.PushResource(ctx, id, a); err != nil {
		return models.Asset{}, apierr.From(err, msgProjectNotFound)
	}
	return a, nil
}

// AddResourceFile uploads an inline file and attaches it. The stored media
// type is the sniffed one.
func (s *Service) AddResourceFile(ctx context.Context, id primitive.ObjectID, callerID string, req filepayload.Request) (models.Asset, error) {
	if _, err := s.load(ctx, id, callerID); err != nil {
		return models.Asset{}, err
	}
	f, err := shared.DecodeFile(req, s.cfg.MaxUploadBytes)
	if err != nil {
		return models.Asset{}, err
	}

	key := objectstore.ProjectResourceKey(id.Hex(), f.Name, f.Extension)
	a := models.Asset{
		ID:        primitive.NewObjectID(),
		Name:      f.Name,
		Type:      f.MediaType,
		URI:       s.objects.URL(key),
		Key:       key,
		CreatedAt: time.Now().UTC(),
	}

	rep, err := workflow.Run(ctx,
		workflow.Step{
			Name: "upload_object",
			Do: func(ctx context.Context) error {
				return s.objects.Put(ctx, key, bytes.NewReader(f.Data), &objectstore.PutOptions{ContentType: f.MediaType, Size: f.Size()})
			},
			Compensate: func(ctx context.Context) error {
				return s.objects.Delete(ctx, key)
			},
		},
		workflow.Step{
			Name: "attach_resource",
			Do: func(ctx context.Context) error {
				return s.projects.PushResource(ctx, id, a)
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "resource_upload", callerID, &id, rep)
	if err != nil {
		if we, ok := workflow.AsError(err); ok && we.Step == "upload_object" {
			return models.Asset{}, apierr.Unavailable("Object storage unavailable", err)
		}
		return models.Asset{}, apierr.From(err, msgProjectNotFound)
	}
	return a, nil
}

// DeleteResource detaches a resource. An unknown asset id is a no-op.
// Stored images are removed from object storage on a best-effort basis.
func (s *Service) DeleteResource(ctx context.Context, id primitive.ObjectID, callerID string, assetID primitive.ObjectID) error {
	p, err := s.load(ctx, id, callerID)
	if err != nil {
		return err
	}
	i := models.FindAsset(p.Resources, assetID)
	if i < 0 {
		return nil
	}
	a := p.Resources[i]

	steps := []workflow.Step{{
		Name: "detach_resource",
		Do: func(ctx context.Context) error {
			return s.projects.PullResource(ctx, id, assetID)
		},
	}}
	if a.IsImage() && a.Key != "" {
		steps = append(steps, workflow.Step{
			Name:     "delete_object",
			Optional: true,
			Do: func(ctx context.Context) error {
				return s.objects.Delete(ctx, a.Key)
			},
		})
	}
	rep, err := workflow.Run(ctx, steps...)
	shared.Finish(ctx, s.log, s.audit, "resource_delete", callerID, &id, rep)
	if err != nil {
		return apierr.From(err, msgProjectNotFound)
	}
	return nil
}

// AddComment posts a comment on the project. Any authenticated caller may
// comment.
func (s *Service) AddComment(ctx context.Context, id primitive.ObjectID, authorID string, in shared.CommentInput) (models.Message, error) {
	m, err := shared.BuildComment(authorID, in, time.Now().UTC())
	if err != nil {
		return models.Message{}, err
	}
	if err := s.projects.PushComment(ctx, id, m); err != nil {
		return models.Message{}, apierr.From(err, msgProjectNotFound)
	}
	if users, err := s.users.Summaries(ctx, []string{authorID}); err == nil {
		m.AuthorName = users[authorID].Name
	} else {
		s.log.Warn("comment author lookup failed", zap.Error(err))
	}
	return m, nil
}

// DeleteComment removes a comment. The author or the owning liaison may
// delete it; an unknown comment id is a no-op.
func (s *Service) DeleteComment(ctx context.Context, id primitive.ObjectID, callerID string, commentID primitive.ObjectID) error {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return apierr.From(err, msgProjectNotFound)
	}
	i := models.FindMessage(p.Comments, commentID)
	if i < 0 {
		return nil
	}
	if !authscope.Owns(callerID, p.Comments[i].AuthorID) && !ownsProject(callerID, p) {
		return apierr.Forbidden("Only the author or the project liaison can delete this comment")
	}
	if err := s.projects.PullComment(ctx, id, commentID); err != nil {
		return apierr.From(err, msgProjectNotFound)
	}
	return nil
}
