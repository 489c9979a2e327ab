package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// RenderRepo implements ports.RenderRepository.
type RenderRepo struct {
	db *DB
}

func NewRenderRepo(db *DB) *RenderRepo {
	return &RenderRepo{db: db}
}

const renderColumns = `
	id::text, COALESCE(job_id::text, ''), polyline, point_count, length_meters,
	track_width, track_height, final_width, final_height, zoom, retina,
	tile_count, placeholders, min_lat, max_lat, min_lng, max_lng,
	image_bytes, duration_ms, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, r *domain.RenderRecord) error {
	return row.Scan(
		&r.ID, &r.JobID, &r.Polyline, &r.PointCount, &r.LengthMeters,
		&r.TrackWidth, &r.TrackHeight, &r.FinalWidth, &r.FinalHeight, &r.Zoom, &r.Retina,
		&r.TileCount, &r.Placeholders, &r.Bounds.MinLat, &r.Bounds.MaxLat, &r.Bounds.MinLng, &r.Bounds.MaxLng,
		&r.ImageBytes, &r.DurationMS, &r.CreatedAt,
	)
}

func (r *RenderRepo) Create(ctx context.Context, rec *domain.RenderRecord) error {
	var jobID any
	if rec.JobID != "" {
		jobID = rec.JobID
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO render_records (
			id, job_id, polyline, point_count, length_meters,
			track_width, track_height, final_width, final_height, zoom, retina,
			tile_count, placeholders, min_lat, max_lat, min_lng, max_lng,
			image_bytes, duration_ms, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, jobID, rec.Polyline, rec.PointCount, rec.LengthMeters,
		rec.TrackWidth, rec.TrackHeight, rec.FinalWidth, rec.FinalHeight, rec.Zoom, rec.Retina,
		rec.TileCount, rec.Placeholders, rec.Bounds.MinLat, rec.Bounds.MaxLat, rec.Bounds.MinLng, rec.Bounds.MaxLng,
		rec.ImageBytes, rec.DurationMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert render record: %w", err)
	}
	return nil
}

func (r *RenderRepo) GetByID(ctx context.Context, id string) (*domain.RenderRecord, error) {
	rec := &domain.RenderRecord{}
	row := r.db.Pool.QueryRow(ctx, `SELECT `+renderColumns+` FROM render_records WHERE id = $1`, id)
	if err := scanRecord(row, rec); err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

func (r *RenderRepo) List(ctx context.Context, limit, offset int) ([]domain.RenderRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+renderColumns+`
		FROM render_records
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []domain.RenderRecord{}
	for rows.Next() {
		var rec domain.RenderRecord
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *RenderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM render_records`).Scan(&n)
	return n, err
}

func (r *RenderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM render_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
