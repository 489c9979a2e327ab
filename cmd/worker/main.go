package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/trackmap/internal/adapters/nats"
	"github.com/samirrijal/trackmap/internal/adapters/postgres"
	"github.com/samirrijal/trackmap/internal/adapters/valkey"
	"github.com/samirrijal/trackmap/internal/bootstrap"
	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/ports"
	"github.com/samirrijal/trackmap/internal/core/usecases"
	"github.com/samirrijal/trackmap/internal/pkg/config"
	"github.com/samirrijal/trackmap/internal/pkg/logging"
	"github.com/samirrijal/trackmap/internal/pkg/telemetry"
	"github.com/samirrijal/trackmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("trackmap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The image store is required: workers hand images to the API through it.
	vc, err := valkey.New(cfg.Valkey.Addr, "trackmap:")
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer vc.Close()

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	engine, err := bootstrap.Engine(cfg, vc, slog.Default())
	if err != nil {
		log.Fatalf("render engine: %v", err)
	}
	renders := usecases.NewRenderService(engine, postgres.NewRenderRepo(db), vc, publisher, cfg.Render.ImageTTLSeconds)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.RenderWorkflow)
	w.RegisterActivity(&workflows.RenderActivities{Renders: renders})

	// Queued jobs become workflow executions
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	starter := &jobStarter{client: c, taskQueue: cfg.Temporal.TaskQueue}
	if err := sub.SubscribeRenderJobs(ctx, starter.Start); err != nil {
		log.Fatalf("subscribe render jobs: %v", err)
	}

	slog.Info("render worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// jobStarter starts one RenderWorkflow per queued job. The workflow ID is
// derived from the job, so a redelivered job joins the running execution.
type jobStarter struct {
	client    client.Client
	taskQueue string
}

func (s *jobStarter) Start(ctx context.Context, job *domain.RenderJob) error {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflows.WorkflowID(job.ID),
		TaskQueue: s.taskQueue,
	}, workflows.RenderWorkflow, *job)
	if err != nil {
		slog.Error("start render workflow failed", "job_id", job.ID, "error", err)
		return err
	}
	slog.Info("render workflow started", "job_id", job.ID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}
