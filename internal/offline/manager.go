// Package offline serves the app shell cache-first from versioned cache
// generations, and surfaces the reminders of the fitness tracker.
package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fitnesstracker/internal/telemetry/metrics"
	"github.com/2beens/fitnesstracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

const DefaultVersion = "fitness-tracker-v1.0"

var DefaultManifest = []string{
	"/",
	"/index.html",
	"/app.js",
	"/manifest.json",
	"/icon-192.png",
	"/icon-512.png",
}

var (
	// ErrCacheInstall aborts an installation; the previous version keeps serving.
	ErrCacheInstall = errors.New("cache install error")
	ErrInvalidState = errors.New("invalid lifecycle state")
)

type State int

const (
	StateInstalling State = iota
	StateInstalled
	StateActivating
	StateActive
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateRedundant:
		return "redundant"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type ManagerParams struct {
	Version  string
	Origin   string
	Manifest []string
	Storage  CacheStorage
	Notifier Notifier
	// HTTPClient is copied, redirects are never followed.
	HTTPClient     *http.Client
	MetricsManager *metrics.Manager
}

// Manager is one version of the offline app shell. It goes through
// installing, installed, activating and active, and becomes redundant once a
// newer version takes over.
type Manager struct {
	version  string
	origin   *url.URL
	manifest []string

	storage        CacheStorage
	notifier       Notifier
	httpClient     *http.Client
	metricsManager *metrics.Manager
	now            func() time.Time

	// serializes Install and Activate
	lifecycleMu sync.Mutex

	mu     sync.RWMutex
	state  State
	active Generation
}

func NewManager(params ManagerParams) (*Manager, error) {
	origin, err := url.Parse(params.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin [%s]: %w", params.Origin, err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("origin must be absolute: %s", params.Origin)
	}
	if params.Storage == nil {
		return nil, errors.New("cache storage not set")
	}

	version := params.Version
	if version == "" {
		version = DefaultVersion
	}
	manifest := params.Manifest
	if len(manifest) == 0 {
		manifest = DefaultManifest
	}

	var httpClient http.Client
	if params.HTTPClient != nil {
		httpClient = *params.HTTPClient
	} else {
		httpClient = http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Manager{
		version:        version,
		origin:         origin,
		manifest:       slices.Clone(manifest),
		storage:        params.Storage,
		notifier:       params.Notifier,
		httpClient:     &httpClient,
		metricsManager: params.MetricsManager,
		now:            time.Now,
		state:          StateInstalling,
	}, nil
}

func (m *Manager) Version() string {
	return m.version
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) activeGeneration() Generation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateActive {
		return nil
	}
	return m.active
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.Debugf("offline cache [%s]: %s -> %s", m.version, m.state, state)
	m.state = state
}

// resolve maps a request URL onto the app origin. Only the path and query are
// kept: an absolute-form request line never reaches another host.
func (m *Manager) resolve(u *url.URL) *url.URL {
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return m.origin.ResolveReference(&url.URL{Path: p, RawQuery: u.RawQuery})
}

// Install fetches the whole manifest and stores it under the version
// generation. A single failed resource abandons the installation and leaves
// no partial generation behind.
func (m *Manager) Install(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.manager.install")
	span.SetAttributes(attribute.String("version", m.version))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		m.countInstall(err)
	}()

	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if state := m.State(); state != StateInstalling {
		return fmt.Errorf("%w: install in state %s", ErrInvalidState, state)
	}

	type entry struct {
		key  string
		resp *CachedResponse
	}
	entries := make([]entry, 0, len(m.manifest))
	for _, resource := range m.manifest {
		ref, err := url.Parse(resource)
		if err != nil {
			return fmt.Errorf("%w: parse resource [%s]: %w", ErrCacheInstall, resource, err)
		}
		target := m.resolve(ref)
		resp, err := m.fetchForInstall(ctx, target)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCacheInstall, resource, err)
		}
		entries = append(entries, entry{key: target.String(), resp: resp})
	}

	existing, err := m.storage.Keys(ctx)
	if err != nil {
		return fmt.Errorf("%w: list generations: %w", ErrCacheInstall, err)
	}
	existed := slices.Contains(existing, m.version)

	gen, err := m.storage.Open(ctx, m.version)
	if err != nil {
		return fmt.Errorf("%w: open generation: %w", ErrCacheInstall, err)
	}
	for _, e := range entries {
		if err := gen.Put(ctx, e.key, e.resp); err != nil {
			if !existed {
				if _, delErr := m.storage.Delete(ctx, m.version); delErr != nil {
					log.Errorf("offline cache [%s]: delete partial generation: %s", m.version, delErr)
				}
			}
			return fmt.Errorf("%w: store [%s]: %w", ErrCacheInstall, e.key, err)
		}
	}

	m.setState(StateInstalled)
	log.Infof("offline cache [%s]: installed %d resources", m.version, len(entries))
	return nil
}

func (m *Manager) fetchForInstall(ctx context.Context, target *url.URL) (*CachedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &CachedResponse{
		Status:   resp.StatusCode,
		Header:   cacheableHeader(resp.Header),
		Body:     body,
		StoredAt: m.now().UTC(),
	}, nil
}

func (m *Manager) countInstall(err error) {
	if m.metricsManager == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.metricsManager.CounterCacheInstalls.WithLabelValues(outcome).Inc()
}

// Activate deletes every generation but the one of this version, and makes
// that one authoritative. A failed deletion leaves the manager activating,
// so Activate can be retried.
func (m *Manager) Activate(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.manager.activate")
	span.SetAttributes(attribute.String("version", m.version))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if state := m.State(); state != StateInstalled && state != StateActivating {
		return fmt.Errorf("%w: activate in state %s", ErrInvalidState, state)
	}
	m.setState(StateActivating)

	names, err := m.storage.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list generations: %w", err)
	}
	for _, name := range names {
		if name == m.version {
			continue
		}
		if _, delErr := m.storage.Delete(ctx, name); delErr != nil {
			err = multierr.Append(err, fmt.Errorf("delete generation [%s]: %w", name, delErr))
			continue
		}
		log.Infof("offline cache [%s]: deleted old generation %s", m.version, name)
	}
	if err != nil {
		return err
	}

	gen, err := m.storage.Open(ctx, m.version)
	if err != nil {
		return fmt.Errorf("open generation: %w", err)
	}

	m.mu.Lock()
	m.active = gen
	m.state = StateActive
	m.mu.Unlock()

	log.Infof("offline cache [%s]: active", m.version)
	return nil
}

// retire marks the manager as superseded; its requests go to the network.
func (m *Manager) retire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateRedundant
	m.active = nil
	log.Infof("offline cache [%s]: redundant", m.version)
}
