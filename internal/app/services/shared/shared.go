// Package shared holds the pieces the domain services have in common:
// input shapes for assets and comments, upload decoding, reference
// population and workflow bookkeeping.
package shared

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/filepayload"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/app/system/metrics"
	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AssetInput is a JSON-submitted asset: a link or inline text.
type AssetInput struct {
	Name string `json:"name" validate:"required,max=200" label:"Name"`
	Type string `json:"type" validate:"required,max=100" label:"Type"`
	URI  string `json:"uri" validate:"omitempty,httpurl" label:"URI"`
	Text string `json:"text" validate:"required_without=URI,max=100000" label:"Text"`
}

// CommentInput is the body of a comment post.
type CommentInput struct {
	Text string `json:"text" validate:"required,max=5000" label:"Text"`
}

// ValidationError converts a failed inputval result into a 400.
func ValidationError(res *inputval.Result) error {
	if !res.HasErrors() {
		return nil
	}
	return apierr.Invalid(res.First())
}

// BuildAsset validates in and returns the asset to store.
func BuildAsset(in AssetInput, now time.Time) (models.Asset, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.URI = strings.TrimSpace(in.URI)
	if err := ValidationError(inputval.Validate(in)); err != nil {
		return models.Asset{}, err
	}
	return models.Asset{
		ID:        primitive.NewObjectID(),
		Name:      htmlsanitize.PlainText(in.Name),
		Type:      in.Type,
		URI:       in.URI,
		Text:      htmlsanitize.Sanitize(in.Text),
		CreatedAt: now,
	}, nil
}

// BuildComment validates in and returns the message to store. Comment text
// is reduced to plain text.
func BuildComment(authorID string, in CommentInput, now time.Time) (models.Message, error) {
	if err := ValidationError(inputval.Validate(in)); err != nil {
		return models.Message{}, err
	}
	text := htmlsanitize.PlainText(in.Text)
	if text == "" {
		return models.Message{}, apierr.Invalid("Text is required.")
	}
	return models.Message{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: now,
	}, nil
}

// DecodeFile decodes and sniffs an inline upload, mapping payload errors
// to 400 responses.
func DecodeFile(req filepayload.Request, maxBytes int64) (filepayload.File, error) {
	f, err := filepayload.Decode(req, maxBytes)
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, filepayload.ErrUnrecognizedFileType):
		return filepayload.File{}, apierr.Invalid("Unrecognized file type")
	case errors.Is(err, filepayload.ErrTooLarge):
		return filepayload.File{}, apierr.Invalid("File exceeds the maximum upload size")
	default:
		return filepayload.File{}, apierr.Invalid("File name and base64 data are required")
	}
}

// ParseID parses a hex ObjectID from a path segment.
func ParseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apierr.Invalid("Invalid " + what + " id")
	}
	return id, nil
}

// Finish records a workflow report: metrics always, a warning and an audit
// event when something failed.
func Finish(ctx context.Context, log *zap.Logger, audit *auditlog.Logger, name, actorID string, projectID *primitive.ObjectID, rep workflow.Report) {
	metrics.ObserveReport(name, rep)
	if rep.OK() {
		return
	}
	fields := []zap.Field{
		zap.String("workflow", name),
		zap.String("actor_id", actorID),
		zap.Strings("completed", rep.Completed),
		zap.Strings("failed", rep.Incomplete()),
		zap.Strings("compensated", rep.Compensated),
		zap.Error(rep.Err()),
	}
	if projectID != nil {
		fields = append(fields, zap.String("project_id", projectID.Hex()))
	}
	log.Warn("workflow incomplete", fields...)
	audit.WorkflowIncomplete(ctx, actorID, name, projectID, rep)
}
