package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// RenderWorkflowName is the registered workflow type.
const RenderWorkflowName = "RenderWorkflow"

// WorkflowID derives a stable execution ID from a job so redelivered
// jobs do not start a second render.
func WorkflowID(jobID string) string {
	return "render-" + jobID
}

// RenderWorkflow renders a queued job, saves the record and announces
// completion. If saving or announcing fails, the stored render is
// discarded (saga compensation) and a failure event is published.
func RenderWorkflow(ctx workflow.Context, job domain.RenderJob) (*domain.RenderRecord, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting render workflow", "jobID", job.ID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Render and keep the image
	var rec domain.RenderRecord
	err := workflow.ExecuteActivity(ctx, ActivityRenderTrack, job).Get(ctx, &rec)
	if err != nil {
		logger.Warn("render failed", "error", err)
		_ = workflow.ExecuteActivity(ctx, ActivityNotifyFailed, job.ID, err.Error()).Get(ctx, nil)
		return nil, err
	}

	// Step 2: Persist the record
	err = workflow.ExecuteActivity(ctx, ActivitySaveRecord, rec).Get(ctx, nil)
	if err == nil {
		// Step 3: Announce completion
		err = workflow.ExecuteActivity(ctx, ActivityNotify, rec).Get(ctx, nil)
	}
	if err != nil {
		logger.Warn("render not delivered, compensating", "renderID", rec.ID, "error", err)
		_ = workflow.ExecuteActivity(ctx, ActivityDiscard, rec.ID).Get(ctx, nil)
		_ = workflow.ExecuteActivity(ctx, ActivityNotifyFailed, job.ID, err.Error()).Get(ctx, nil)
		return nil, err
	}

	logger.Info("Render delivered", "renderID", rec.ID, "zoom", rec.Zoom)
	return &rec, nil
}
