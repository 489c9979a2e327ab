package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/usecases"
)

// Activity names as registered on the worker.
const (
	ActivityRenderTrack  = "RenderTrack"
	ActivitySaveRecord   = "SaveRecord"
	ActivityNotify       = "NotifyCompleted"
	ActivityNotifyFailed = "NotifyFailed"
	ActivityDiscard      = "DiscardRender"
)

// RenderRunner is the slice of the render service the activities drive.
type RenderRunner interface {
	Execute(ctx context.Context, req domain.RenderRequest, jobID string) (*usecases.RenderOutcome, error)
	SaveImage(ctx context.Context, id string, image []byte) error
	SaveRecord(ctx context.Context, rec *domain.RenderRecord) error
	Announce(ctx context.Context, event *domain.RenderEvent) error
	Discard(ctx context.Context, id string) error
}

// RenderActivities holds the activity implementations for the render workflow.
type RenderActivities struct {
	Renders RenderRunner
}

// RenderTrack runs the pipeline for a queued job and keeps the PNG in the
// image store. Only the record travels back through workflow history.
func (a *RenderActivities) RenderTrack(ctx context.Context, job domain.RenderJob) (*domain.RenderRecord, error) {
	req, err := usecases.RequestFromJob(&job)
	if err != nil {
		return nil, permanent(err)
	}
	out, err := a.Renders.Execute(ctx, req, job.ID)
	if err != nil {
		return nil, permanent(err)
	}
	if err := a.Renders.SaveImage(ctx, out.Record.ID, out.Result.Image); err != nil {
		return nil, err
	}
	activity.GetLogger(ctx).Info("render finished", "job_id", job.ID, "render_id", out.Record.ID, "zoom", out.Record.Zoom)
	return out.Record, nil
}

// SaveRecord persists the render record.
func (a *RenderActivities) SaveRecord(ctx context.Context, rec domain.RenderRecord) error {
	return a.Renders.SaveRecord(ctx, &rec)
}

// NotifyCompleted publishes the completion event.
func (a *RenderActivities) NotifyCompleted(ctx context.Context, rec domain.RenderRecord) error {
	return a.Renders.Announce(ctx, usecases.CompletedEvent(&rec))
}

// NotifyFailed publishes a failure event for a job.
func (a *RenderActivities) NotifyFailed(ctx context.Context, jobID, reason string) error {
	return a.Renders.Announce(ctx, &domain.RenderEvent{
		Type:  domain.RenderEventFailed,
		JobID: jobID,
		Error: reason,
	})
}

// DiscardRender removes a render's record and image (saga compensation).
func (a *RenderActivities) DiscardRender(ctx context.Context, renderID string) error {
	if err := a.Renders.Discard(ctx, renderID); err != nil {
		return fmt.Errorf("discard render %s: %w", renderID, err)
	}
	activity.GetLogger(ctx).Info("render discarded", "render_id", renderID)
	return nil
}

// permanent marks input and geometry errors as non-retryable; retrying
// the same job cannot change the outcome.
func permanent(err error) error {
	if errors.Is(err, domain.ErrInput) || errors.Is(err, domain.ErrGeometry) {
		return temporal.NewNonRetryableApplicationError(err.Error(), "InvalidRenderJob", err)
	}
	return err
}
