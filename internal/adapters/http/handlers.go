package http

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/polyline"
)

const mimePNG = "image/png"

// renderBody is the JSON payload shared by render, plan and enqueue.
// Exactly one of Polyline or Points carries the trajectory.
type renderBody struct {
	Polyline  string                 `json:"polyline"`
	Points    []domain.GeoPoint      `json:"points"`
	Width     int                    `json:"width"`
	Height    int                    `json:"height"`
	Expansion domain.ExpansionRegion `json:"expansion"`
	LineColor string                 `json:"line_color"`
	LineWidth float64                `json:"line_width"`
	Retina    bool                   `json:"retina"`
	Marker    *domain.MarkerOptions  `json:"marker"`
}

func (b *renderBody) trajectory() ([]domain.GeoPoint, error) {
	switch {
	case b.Polyline != "" && len(b.Points) > 0:
		return nil, errors.New("send either polyline or points, not both")
	case b.Polyline != "":
		pts, err := polyline.Decode(b.Polyline)
		if err != nil {
			return nil, fmt.Errorf("polyline: %w", err)
		}
		return pts, nil
	default:
		return b.Points, nil
	}
}

func (b *renderBody) request() (domain.RenderRequest, error) {
	pts, err := b.trajectory()
	if err != nil {
		return domain.RenderRequest{}, err
	}
	return domain.RenderRequest{
		Points:      pts,
		TrackRegion: domain.TrackRegion{Width: b.Width, Height: b.Height},
		Expansion:   b.Expansion,
		LineColor:   b.LineColor,
		LineWidth:   b.LineWidth,
		Retina:      b.Retina,
		Marker:      b.Marker,
	}, nil
}

func (b *renderBody) job() (*domain.RenderJob, error) {
	line := b.Polyline
	if line == "" {
		if len(b.Points) == 0 {
			return nil, domain.ErrEmptyTrajectory
		}
		line = polyline.Encode(b.Points)
	} else if len(b.Points) > 0 {
		return nil, errors.New("send either polyline or points, not both")
	}
	return &domain.RenderJob{
		Polyline:  line,
		Width:     b.Width,
		Height:    b.Height,
		Expansion: b.Expansion,
		LineColor: b.LineColor,
		LineWidth: b.LineWidth,
		Retina:    b.Retina,
		Marker:    b.Marker,
	}, nil
}

func parseBody(c *fiber.Ctx) (*renderBody, error) {
	var body renderBody
	if err := c.BodyParser(&body); err != nil {
		return nil, errors.New("invalid request body")
	}
	return &body, nil
}

// renderResponse is the JSON form of a finished render. Image is base64.
type renderResponse struct {
	ID           string              `json:"id"`
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	Zoom         int                 `json:"zoom"`
	TileCount    int                 `json:"tile_count"`
	Placeholders int                 `json:"placeholders"`
	Points       []domain.PixelPoint `json:"points"`
	Stages       domain.BoundsStages `json:"stages"`
	Image        []byte              `json:"image"`
}

// RenderHandler renders synchronously. Clients asking for image/png get
// the raw bytes; everyone else gets JSON with the image inlined.
func RenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := parseBody(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		req, err := body.request()
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		out, err := deps.Renders.Render(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("X-Render-Id", out.Record.ID)
		c.Set("X-Render-Zoom", strconv.Itoa(out.Result.Zoom))
		if c.Accepts(fiber.MIMEApplicationJSON, mimePNG) == mimePNG {
			c.Set(fiber.HeaderContentType, mimePNG)
			return c.Send(out.Result.Image)
		}

		res := out.Result
		return c.JSON(renderResponse{
			ID:           out.Record.ID,
			Width:        res.Width,
			Height:       res.Height,
			Zoom:         res.Zoom,
			TileCount:    res.TileCount,
			Placeholders: res.Placeholders,
			Points:       res.Points,
			Stages:       res.Stages,
			Image:        res.Image,
		})
	}
}

// RenderPNGHandler renders from query parameters and always returns PNG,
// so the URL can be used directly as an <img> source.
func RenderPNGHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		line := c.Query("polyline")
		if line == "" {
			return errBadRequest(c, "polyline query parameter is required")
		}
		pts, err := polyline.Decode(line)
		if err != nil {
			return errBadRequest(c, "polyline: "+err.Error())
		}

		req := domain.RenderRequest{
			Points: pts,
			TrackRegion: domain.TrackRegion{
				Width:  c.QueryInt("width", 0),
				Height: c.QueryInt("height", 0),
			},
			Expansion: domain.ExpansionRegion{
				Up:    c.QueryFloat("up", 0),
				Down:  c.QueryFloat("down", 0),
				Left:  c.QueryFloat("left", 0),
				Right: c.QueryFloat("right", 0),
			},
			LineColor: c.Query("line_color"),
			LineWidth: c.QueryFloat("line_width", 0),
			Retina:    c.QueryBool("retina", false),
		}
		if shape := c.Query("marker"); shape != "" {
			req.Marker = &domain.MarkerOptions{Shape: domain.MarkerShape(shape)}
		}

		out, err := deps.Renders.Render(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("X-Render-Id", out.Record.ID)
		c.Set("X-Render-Zoom", strconv.Itoa(out.Result.Zoom))
		c.Set(fiber.HeaderContentType, mimePNG)
		return c.Send(out.Result.Image)
	}
}

// PlanHandler runs bounds, zoom and grid selection only. No tile is fetched.
func PlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := parseBody(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		req, err := body.request()
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		plan, err := deps.Renders.Plan(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(plan)
	}
}

// EnqueueRenderHandler queues a render for the worker and returns 202.
func EnqueueRenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := parseBody(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		job, err := body.job()
		if err != nil {
			if errors.Is(err, domain.ErrInput) {
				return errFromDomain(c, err)
			}
			return errBadRequest(c, err.Error())
		}

		queued, err := deps.Renders.Enqueue(c.UserContext(), job)
		if err != nil {
			if errors.Is(err, domain.ErrInput) || errors.Is(err, domain.ErrGeometry) {
				return errFromDomain(c, err)
			}
			return errUnavailable(c, err.Error())
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"job_id":       queued.ID,
			"status":       domain.RenderEventQueued,
			"requested_at": queued.RequestedAt,
		})
	}
}

// ListRendersHandler returns stored render records, newest first.
func ListRendersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageFromQuery(c)

		recs, total, err := deps.Renders.List(c.UserContext(), limit, offset)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: recs, Pagination: pg})
	}
}

// GetRenderHandler returns one render record.
func GetRenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "render id is required")
		}

		rec, err := deps.Renders.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "render not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(rec)
	}
}

// RenderImageHandler serves a stored render's PNG while it is retained.
func RenderImageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		img, err := deps.Renders.Image(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "image not found or expired")
			}
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, mimePNG)
		return c.Send(img)
	}
}
