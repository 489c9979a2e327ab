// Package tiles fetches raster map tiles over HTTP.
package tiles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// DefaultURLTemplate serves 256px tiles, or 512px with the {r} suffix.
const DefaultURLTemplate = "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}{r}.png"

// DefaultSubdomains match DefaultURLTemplate.
var DefaultSubdomains = []string{"a", "b", "c", "d"}

const retinaSuffix = "@2x"

// Config configures the HTTP fetcher.
type Config struct {
	// URLTemplate accepts {s}, {z}, {x}, {y} and {r} placeholders.
	URLTemplate     string
	Subdomains      []string
	UserAgent       string
	Timeout         time.Duration
	MaxConnsPerHost int
	// Dial overrides the network dialer, used by tests.
	Dial fasthttp.DialFunc
}

// StatusError is returned for non-200 tile responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
}

// Fetcher implements ports.TileFetcher over fasthttp.
type Fetcher struct {
	client  *fasthttp.Client
	cfg     Config
	chooser Chooser
}

// NewFetcher creates a Fetcher. A nil chooser draws subdomains at random.
func NewFetcher(cfg Config, chooser Chooser) *Fetcher {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
		if len(cfg.Subdomains) == 0 {
			cfg.Subdomains = DefaultSubdomains
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "trackmap/1.0"
	}
	if chooser == nil {
		chooser = NewRandomChooser(0)
	}
	return &Fetcher{
		client: &fasthttp.Client{
			Name:                cfg.UserAgent,
			MaxConnsPerHost:     cfg.MaxConnsPerHost,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: 30 * time.Second,
			Dial:                cfg.Dial,
		},
		cfg:     cfg,
		chooser: chooser,
	}
}

// URL expands the template for coord.
func (f *Fetcher) URL(coord domain.TileCoord, retina bool) string {
	r := ""
	if retina {
		r = retinaSuffix
	}
	return strings.NewReplacer(
		"{s}", f.chooser.Choose(f.cfg.Subdomains),
		"{z}", strconv.Itoa(coord.Z),
		"{x}", strconv.Itoa(coord.X),
		"{y}", strconv.Itoa(coord.Y),
		"{r}", r,
	).Replace(f.cfg.URLTemplate)
}

// FetchTile downloads one tile. The context deadline, when set, takes
// precedence over the configured timeout.
func (f *Fetcher) FetchTile(ctx context.Context, coord domain.TileCoord, retina bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := f.URL(coord, retina)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(f.cfg.UserAgent)
	req.Header.Set(fasthttp.HeaderAccept, "image/png,image/webp,image/*;q=0.8")

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = f.client.DoDeadline(req, resp, deadline)
	} else {
		err = f.client.DoTimeout(req, resp, f.cfg.Timeout)
	}
	if err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("GET %s: timeout: %w", url, err)
		}
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{URL: url, Status: resp.StatusCode()}
	}

	// resp is pooled; copy its body before release.
	return append([]byte(nil), resp.Body()...), nil
}
