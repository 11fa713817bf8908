package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	discoveryapi "google.golang.org/api/discovery/v1"
	"google.golang.org/api/option"

	"github.com/teemow/dzdrive/internal/instrumentation"
	"github.com/teemow/dzdrive/internal/logging"
)

const (
	// API and Version name the descriptor this action is built against.
	API     = "drive"
	Version = "v2"

	// DefaultCacheFile is the descriptor cache location, relative to the working directory.
	DefaultCacheFile = "drive-v2.cache"
)

// ErrVersionMismatch is returned when a descriptor does not describe drive v2.
var ErrVersionMismatch = errors.New("API descriptor does not describe " + API + " " + Version)

// Descriptor is the Discovery document of the Drive API.
type Descriptor struct {
	doc *discoveryapi.RestDescription
}

// NewDescriptor wraps a REST description.
func NewDescriptor(doc *discoveryapi.RestDescription) *Descriptor {
	return &Descriptor{doc: doc}
}

// Name returns the API name of the descriptor.
func (d *Descriptor) Name() string { return d.doc.Name }

// Version returns the API version of the descriptor.
func (d *Descriptor) Version() string { return d.doc.Version }

// BaseURL returns the service base URL: baseUrl, or rootUrl joined with servicePath.
func (d *Descriptor) BaseURL() string {
	if d.doc.BaseUrl != "" {
		return d.doc.BaseUrl
	}
	return d.doc.RootUrl + d.doc.ServicePath
}

// Fetcher retrieves an API descriptor from the Discovery service.
type Fetcher interface {
	Fetch(ctx context.Context, api, version string) (*discoveryapi.RestDescription, error)
}

// ServiceFetcher fetches descriptors with the typed Discovery client.
type ServiceFetcher struct {
	service *discoveryapi.Service
}

// NewServiceFetcher creates a Fetcher backed by the Discovery API.
func NewServiceFetcher(ctx context.Context, opts ...option.ClientOption) (*ServiceFetcher, error) {
	svc, err := discoveryapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discovery service: %w", err)
	}
	return &ServiceFetcher{service: svc}, nil
}

// Fetch retrieves the REST description of api/version.
func (f *ServiceFetcher) Fetch(ctx context.Context, api, version string) (*discoveryapi.RestDescription, error) {
	doc, err := f.service.Apis.GetRest(api, version).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %s descriptor: %w", api, version, err)
	}
	return doc, nil
}

// Cache keeps the Drive descriptor in a local file so it is fetched only once.
// A present cache is trusted as long as it decodes and names drive v2; there is
// no expiry and no fallback to a fresh fetch.
type Cache struct {
	path    string
	fetcher Fetcher
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewCache creates a descriptor cache at path (DefaultCacheFile when empty).
func NewCache(path string, fetcher Fetcher, logger *slog.Logger, metrics *instrumentation.Metrics) *Cache {
	if path == "" {
		path = DefaultCacheFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		path:    path,
		fetcher: fetcher,
		logger:  logging.WithService(logger, instrumentation.ServiceDiscovery),
		metrics: metrics,
	}
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// Load returns the cached descriptor, fetching and writing it when the cache
// file does not exist yet.
func (c *Cache) Load(ctx context.Context) (*Descriptor, error) {
	data, err := os.ReadFile(c.path)
	switch {
	case err == nil:
		return c.decode(data)
	case errors.Is(err, fs.ErrNotExist):
		return c.refresh(ctx)
	default:
		return nil, fmt.Errorf("failed to read API descriptor cache: %w", err)
	}
}

func (c *Cache) decode(data []byte) (*Descriptor, error) {
	doc := &discoveryapi.RestDescription{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode API descriptor cache %s: %w", c.path, err)
	}
	d := &Descriptor{doc: doc}
	if err := verify(d); err != nil {
		return nil, fmt.Errorf("cache %s: %w", c.path, err)
	}
	c.logger.Debug("using cached API descriptor", "cache_file", c.path)
	return d, nil
}

func (c *Cache) refresh(ctx context.Context) (*Descriptor, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("no API descriptor cached at %s and no fetcher configured", c.path)
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDiscovery, instrumentation.OperationFetch)
	start := time.Now()
	doc, err := c.fetcher.Fetch(ctx, API, Version)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceDiscovery, instrumentation.OperationFetch, status, time.Since(start))
	instrumentation.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{doc: doc}
	if err := verify(d); err != nil {
		return nil, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode API descriptor: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write API descriptor cache: %w", err)
	}

	c.logger.Info("cached API descriptor", "cache_file", c.path)
	return d, nil
}

func verify(d *Descriptor) error {
	if d.Name() != API || d.Version() != Version {
		return fmt.Errorf("%w: got %q %q", ErrVersionMismatch, d.Name(), d.Version())
	}
	return nil
}
