package entrysvc

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

// entry loads the project and the student's entry.
func (s *Service) entry(ctx context.Context, projectID primitive.ObjectID, studentID string) (models.Project, models.Entry, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return models.Project{}, models.Entry{}, apierr.From(err, msgProjectNotFound)
	}
	i := models.FindEntry(p.Entries, studentID)
	if i < 0 {
		return models.Project{}, models.Entry{}, apierr.NotFound(msgEntryNotFound)
	}
	return p, p.Entries[i], nil
}

// AddAsset attaches a link or text asset to the entry.
func (s *Service) AddAsset(ctx context.Context, projectID primitive.ObjectID, studentID string, in shared.AssetInput) (models.Asset, error) {
	a, err := shared.BuildAsset(in, time.Now().UTC())
	if err != nil {
		return models.Asset{}, err
	}
	if err := s.projects.PushEntryAsset(ctx, projectID, studentID, a); err != nil {
		return models.Asset{}, entryErr(err)
	}
	return a, nil
}

// AddAssetFile uploads an inline file under the student's prefix and
// attaches it to the entry.
func (s *Service) AddAssetFile(ctx context.Context, projectID primitive.ObjectID, studentID string, req filepayload.Request) (models.Asset, error) {
	if _, _, err := s.entry(ctx, projectID, studentID); err != nil {
		return models.Asset{}, err
	}
	f, err := shared.DecodeFile(req, s.maxUpload)
	if err != nil {
		return models.Asset{}, err
	}

	key := objectstore.EntryAssetKey(studentID, projectID.Hex(), f.Name, f.Extension)
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
			Name: "attach_asset",
			Do: func(ctx context.Context) error {
				return s.projects.PushEntryAsset(ctx, projectID, studentID, a)
			},
		},
	)
	shared.Finish(ctx, s.log, s.audit, "entry_asset_upload", studentID, &projectID, rep)
	if err != nil {
		if we, ok := workflow.AsError(err); ok && we.Step == "upload_object" {
			return models.Asset{}, apierr.Unavailable("Object storage unavailable", err)
		}
		return models.Asset{}, entryErr(err)
	}
	return a, nil
}

// DeleteAsset detaches an asset from the entry. An unknown asset id is a
// no-op; stored images are removed on a best-effort basis.
func (s *Service) DeleteAsset(ctx context.Context, projectID primitive.ObjectID, studentID string, assetID primitive.ObjectID) error {
	_, e, err := s.entry(ctx, projectID, studentID)
	if err != nil {
		return err
	}
	i := models.FindAsset(e.Assets, assetID)
	if i < 0 {
		return nil
	}
	a := e.Assets[i]

	if err := s.projects.PullEntryAsset(ctx, projectID, studentID, assetID); err != nil {
		return entryErr(err)
	}
	if a.IsImage() && a.Key != "" {
		if err := s.objects.Delete(ctx, a.Key); err != nil {
			s.log.Warn("entry asset object delete failed",
				zap.String("project_id", projectID.Hex()),
				zap.String("student_id", studentID),
				zap.String("key", a.Key),
				zap.Error(err))
		}
	}
	return nil
}

// AddComment posts a comment on the entry.
func (s *Service) AddComment(ctx context.Context, projectID primitive.ObjectID, studentID, authorID string, in shared.CommentInput) (models.Message, error) {
	m, err := shared.BuildComment(authorID, in, time.Now().UTC())
	if err != nil {
		return models.Message{}, err
	}
	if err := s.projects.PushEntryComment(ctx, projectID, studentID, m); err != nil {
		return models.Message{}, entryErr(err)
	}
	if users, err := s.users.Summaries(ctx, []string{authorID}); err == nil {
		m.AuthorName = users[authorID].Name
	}
	return m, nil
}

// DeleteComment removes a comment from the entry. The comment author or
// the project's liaison may delete it; an unknown id is a no-op.
func (s *Service) DeleteComment(ctx context.Context, projectID primitive.ObjectID, studentID, callerID string, commentID primitive.ObjectID) error {
	p, e, err := s.entry(ctx, projectID, studentID)
	if err != nil {
		return err
	}
	i := models.FindMessage(e.Comments, commentID)
	if i < 0 {
		return nil
	}
	if !authscope.Owns(callerID, e.Comments[i].AuthorID) && !authscope.Owns(callerID, p.LiaisonID) {
		return apierr.Forbidden("Only the author or the project liaison can delete this comment")
	}
	if err := s.projects.PullEntryComment(ctx, projectID, studentID, commentID); err != nil {
		return entryErr(err)
	}
	return nil
}
