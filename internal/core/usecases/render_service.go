package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/ports"
	"github.com/samirrijal/trackmap/internal/pkg/geospatial"
	"github.com/samirrijal/trackmap/internal/pkg/logging"
	"github.com/samirrijal/trackmap/internal/pkg/metrics"
	"github.com/samirrijal/trackmap/internal/pkg/polyline"
)

const (
	imageKeyPrefix = "render:image:"
	planKeyPrefix  = "render:plan:"
	planTTLSeconds = 300
)

// Pipeline is the render engine the service drives.
type Pipeline interface {
	Plan(ctx context.Context, req domain.RenderRequest) (*domain.RenderPlan, error)
	Render(ctx context.Context, req domain.RenderRequest) (*domain.RenderResult, error)
}

// RenderOutcome pairs a finished render with the record describing it.
type RenderOutcome struct {
	Record *domain.RenderRecord
	Result *domain.RenderResult
}

// RenderService handles render orchestration, persistence and notification.
// records, cache and publisher are optional.
type RenderService struct {
	engine    Pipeline
	records   ports.RenderRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	imageTTL  int
	now       func() time.Time
}

// NewRenderService creates a new RenderService.
func NewRenderService(
	engine Pipeline,
	records ports.RenderRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	imageTTLSeconds int,
) *RenderService {
	return &RenderService{
		engine:    engine,
		records:   records,
		cache:     cache,
		publisher: publisher,
		imageTTL:  imageTTLSeconds,
		now:       time.Now,
	}
}

// Plan returns bounds, zoom and tile grid for req. Plans are cached briefly
// under a key covering every request field, so a cached plan is never
// returned for a request the pipeline would reject.
func (s *RenderService) Plan(ctx context.Context, req domain.RenderRequest) (*domain.RenderPlan, error) {
	key := planKeyPrefix + requestFingerprint(req)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var plan domain.RenderPlan
			if err := json.Unmarshal(data, &plan); err == nil {
				return &plan, nil
			}
		}
	}

	plan, err := s.engine.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(plan); err == nil {
			_ = s.cache.Set(ctx, key, data, planTTLSeconds)
		}
	}
	return plan, nil
}

// Execute runs the pipeline and builds the record without persisting it.
func (s *RenderService) Execute(ctx context.Context, req domain.RenderRequest, jobID string) (*RenderOutcome, error) {
	start := s.now()
	res, err := s.engine.Render(ctx, req)
	elapsed := s.now().Sub(start)
	metrics.RenderDuration.Observe(elapsed.Seconds())
	if err != nil {
		metrics.RendersTotal.WithLabelValues(statusLabel(err)).Inc()
		return nil, err
	}
	metrics.RendersTotal.WithLabelValues("ok").Inc()
	metrics.RenderZoom.Observe(float64(res.Zoom))

	rec := &domain.RenderRecord{
		ID:           uuid.NewString(),
		JobID:        jobID,
		Polyline:     polyline.Encode(req.Points),
		PointCount:   len(req.Points),
		LengthMeters: geospatial.PathLength(req.Points),
		TrackWidth:   req.TrackRegion.Width,
		TrackHeight:  req.TrackRegion.Height,
		FinalWidth:   res.Width,
		FinalHeight:  res.Height,
		Zoom:         res.Zoom,
		Retina:       req.Retina,
		TileCount:    res.TileCount,
		Placeholders: res.Placeholders,
		Bounds:       res.Stages.Final(),
		ImageBytes:   len(res.Image),
		DurationMS:   elapsed.Milliseconds(),
		CreatedAt:    s.now().UTC(),
	}
	return &RenderOutcome{Record: rec, Result: res}, nil
}

// Store persists the record and keeps the image in the cache.
func (s *RenderService) Store(ctx context.Context, out *RenderOutcome) error {
	if err := s.SaveRecord(ctx, out.Record); err != nil {
		return err
	}
	return s.SaveImage(ctx, out.Record.ID, out.Result.Image)
}

// SaveRecord writes one render record.
func (s *RenderService) SaveRecord(ctx context.Context, rec *domain.RenderRecord) error {
	if s.records == nil {
		return nil
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return fmt.Errorf("save render record: %w", err)
	}
	return nil
}

// SaveImage keeps a rendered PNG in the image store for imageTTL seconds.
func (s *RenderService) SaveImage(ctx context.Context, id string, image []byte) error {
	if s.cache == nil || len(image) == 0 {
		return nil
	}
	if err := s.cache.Set(ctx, imageKeyPrefix+id, image, s.imageTTL); err != nil {
		return fmt.Errorf("store render image: %w", err)
	}
	return nil
}

// Discard removes a stored record and its image.
func (s *RenderService) Discard(ctx context.Context, id string) error {
	var errs []error
	if s.records != nil {
		if err := s.records.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete record: %w", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, imageKeyPrefix+id); err != nil {
			errs = append(errs, fmt.Errorf("delete image: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Announce publishes a lifecycle event and reports delivery errors.
func (s *RenderService) Announce(ctx context.Context, event *domain.RenderEvent) error {
	if s.publisher == nil {
		return nil
	}
	if event.At.IsZero() {
		event.At = s.now().UTC()
	}
	return s.publisher.PublishRenderEvent(ctx, event)
}

// Notify publishes a lifecycle event. Delivery is best-effort.
func (s *RenderService) Notify(ctx context.Context, event *domain.RenderEvent) {
	if err := s.Announce(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("publish render event failed", "type", event.Type, "error", err)
	}
}

// Render executes a synchronous render. Persistence failures are logged;
// the image is still returned.
func (s *RenderService) Render(ctx context.Context, req domain.RenderRequest) (*RenderOutcome, error) {
	out, err := s.Execute(ctx, req, "")
	if err != nil {
		return nil, err
	}
	if err := s.Store(ctx, out); err != nil {
		logging.FromContext(ctx).Warn("render not persisted", "render_id", out.Record.ID, "error", err)
	}
	s.Notify(ctx, CompletedEvent(out.Record))
	return out, nil
}

// Get returns one render record.
func (s *RenderService) Get(ctx context.Context, id string) (*domain.RenderRecord, error) {
	if s.records == nil {
		return nil, domain.ErrNotFound
	}
	return s.records.GetByID(ctx, id)
}

// List returns a page of records and the total count.
func (s *RenderService) List(ctx context.Context, limit, offset int) ([]domain.RenderRecord, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if s.records == nil {
		return []domain.RenderRecord{}, 0, nil
	}
	recs, err := s.records.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.records.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// Image returns the stored PNG for a render.
func (s *RenderService) Image(ctx context.Context, id string) ([]byte, error) {
	if s.cache == nil {
		return nil, domain.ErrNotFound
	}
	b, err := s.cache.Get(ctx, imageKeyPrefix+id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("image for render %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

// Enqueue validates a job and hands it to the broker for a worker.
func (s *RenderService) Enqueue(ctx context.Context, job *domain.RenderJob) (*domain.RenderJob, error) {
	if s.publisher == nil {
		return nil, errors.New("render queue not configured")
	}
	req, err := RequestFromJob(job)
	if err != nil {
		return nil, err
	}
	// Plan catches geometry errors before a worker picks the job up.
	if _, err := s.engine.Plan(ctx, req); err != nil {
		return nil, err
	}

	queued := *job
	queued.ID = uuid.NewString()
	queued.RequestedAt = s.now().UTC()
	if err := s.publisher.PublishRenderJob(ctx, &queued); err != nil {
		return nil, fmt.Errorf("publish render job: %w", err)
	}
	s.Notify(ctx, &domain.RenderEvent{Type: domain.RenderEventQueued, JobID: queued.ID})
	return &queued, nil
}

// RequestFromJob decodes a queued job into a render request.
func RequestFromJob(job *domain.RenderJob) (domain.RenderRequest, error) {
	pts, err := polyline.Decode(job.Polyline)
	if err != nil {
		return domain.RenderRequest{}, fmt.Errorf("%w: %v", domain.ErrInput, err)
	}
	return domain.RenderRequest{
		Points:      pts,
		TrackRegion: domain.TrackRegion{Width: job.Width, Height: job.Height},
		Expansion:   job.Expansion,
		LineColor:   job.LineColor,
		LineWidth:   job.LineWidth,
		Retina:      job.Retina,
		Marker:      job.Marker,
	}, nil
}

// CompletedEvent builds the completion event for rec.
func CompletedEvent(rec *domain.RenderRecord) *domain.RenderEvent {
	return &domain.RenderEvent{
		Type:       domain.RenderEventCompleted,
		JobID:      rec.JobID,
		RenderID:   rec.ID,
		Zoom:       rec.Zoom,
		Width:      rec.FinalWidth,
		Height:     rec.FinalHeight,
		DurationMS: rec.DurationMS,
	}
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInput):
		return "input_error"
	case errors.Is(err, domain.ErrGeometry):
		return "geometry_error"
	default:
		return "error"
	}
}

func requestFingerprint(req domain.RenderRequest) string {
	h := sha256.New()
	for _, p := range req.Points {
		fmt.Fprintf(h, "%v,%v;", p.Lat, p.Lng)
	}
	e := req.Expansion
	fmt.Fprintf(h, "|%dx%d|%g,%g,%g,%g|%t|%s,%g",
		req.TrackRegion.Width, req.TrackRegion.Height, e.Up, e.Down, e.Left, e.Right, req.Retina,
		req.LineColor, req.LineWidth)
	if m := req.Marker; m != nil {
		fmt.Fprintf(h, "|%s,%s,%s", m.Shape, m.StartColor, m.EndColor)
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
