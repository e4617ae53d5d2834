package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
	"github.com/safepip/safe-pip-upgrade/internal/version"
)

// DefaultURLPattern is the PyPI JSON API endpoint; {package} is replaced by the package name.
const DefaultURLPattern = "https://pypi.org/pypi/{package}/json"

const packagePlaceholder = "{package}"

var defaultRetryDelay = 250 * time.Millisecond

// PyPIOptions configures a PyPI client.
type PyPIOptions struct {
	URLPattern        string
	Timeout           time.Duration
	Retries           int
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// PyPI fetches release lists from a PyPI-compatible JSON API.
type PyPI struct {
	urlPattern string
	client     *http.Client
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewPyPI returns a client for opts. Zero values fall back to the PyPI defaults.
func NewPyPI(opts PyPIOptions) *PyPI {
	pattern := strings.TrimSpace(opts.URLPattern)
	if pattern == "" {
		pattern = DefaultURLPattern
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &PyPI{
		urlPattern: pattern,
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		retries:    retries,
		retryDelay: defaultRetryDelay,
		logger:     logger,
	}
}

type pypiResponse struct {
	Releases map[string]json.RawMessage `json:"releases"`
}

// Releases returns the stable releases of pkg in ascending order.
func (p *PyPI) Releases(ctx context.Context, pkg string) (Releases, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	name := NormalizeName(pkg)
	if name == "" {
		return Releases{}, &Error{Package: pkg, Err: errors.New(messages.RegistryPackageRequired)}
	}
	endpoint := strings.ReplaceAll(p.urlPattern, packagePlaceholder, url.PathEscape(name))

	payload, err := p.fetch(ctx, endpoint)
	if err != nil {
		return Releases{}, &Error{Package: pkg, Err: err}
	}

	versions := make([]version.Version, 0, len(payload.Releases))
	for raw := range payload.Releases {
		v, err := version.Parse(raw)
		if err != nil {
			p.logger.Debug("ignoring unparseable release", slog.String("package", pkg), slog.String("release", raw))
			continue
		}
		versions = append(versions, v)
	}
	releases := NewReleases(pkg, versions)
	p.logger.Debug("fetched releases", slog.String("package", pkg), slog.Int("count", releases.Len()))
	return releases, nil
}

// fetch performs the GET with a bounded retry on transient failures.
func (p *PyPI) fetch(ctx context.Context, endpoint string) (*pypiResponse, error) {
	for attempt := 0; attempt <= p.retries; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf(messages.RegistryCreateRequestErrFmt, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", messages.RootUse)

		resp, err := p.client.Do(req)
		if err != nil {
			if p.shouldRetry(err, 0, attempt) {
				p.sleep(ctx)
				continue
			}
			return nil, fmt.Errorf(messages.RegistryFetchErrFmt, err)
		}

		if resp.StatusCode != http.StatusOK {
			status := resp.StatusCode
			statusText := resp.Status
			_ = resp.Body.Close()
			if p.shouldRetry(nil, status, attempt) {
				p.sleep(ctx)
				continue
			}
			return nil, fmt.Errorf(messages.RegistryFetchStatusFmt, statusText)
		}

		var payload pypiResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf(messages.RegistryDecodeErrFmt, err)
		}
		_ = resp.Body.Close()
		if payload.Releases == nil {
			return nil, errors.New(messages.RegistryMissingReleases)
		}
		return &payload, nil
	}
	return nil, fmt.Errorf(messages.RegistryFetchErrFmt, errors.New("retry budget exhausted"))
}

func (p *PyPI) shouldRetry(err error, statusCode int, attempt int) bool {
	if attempt >= p.retries {
		return false
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		var netErr net.Error
		return errors.As(err, &netErr)
	}
	return statusCode >= 500 && statusCode <= 599
}

func (p *PyPI) sleep(ctx context.Context) {
	timer := time.NewTimer(p.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
