package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"google.golang.org/api/option"

	"github.com/teemow/dzdrive/internal/discovery"
	"github.com/teemow/dzdrive/internal/drive"
	"github.com/teemow/dzdrive/internal/dropzone"
	"github.com/teemow/dzdrive/internal/google"
	"github.com/teemow/dzdrive/internal/instrumentation"
	"github.com/teemow/dzdrive/internal/logging"
	"github.com/teemow/dzdrive/internal/workflow"
)

// app bundles what every command needs: logging on stderr, instrumentation
// and the Dropzone configuration.
type app struct {
	logger   *slog.Logger
	provider *instrumentation.Provider
	config   dropzone.Config
}

func newApp(ctx context.Context) (*app, error) {
	logger := logging.New(os.Stderr, opts.debug)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.Writer = os.Stderr

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	config := dropzone.LoadConfig()
	if opts.cocoaDialog != "" {
		config.CocoaDialog = opts.cocoaDialog
	}

	return &app{
		logger:   logger,
		provider: provider,
		config:   config,
	}, nil
}

// Close flushes instrumentation.
func (a *app) Close() {
	// The command context may already be cancelled by a signal
	if err := a.provider.Shutdown(context.Background()); err != nil {
		a.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

func (a *app) credentialStore() (*google.CredentialStore, error) {
	return google.NewCredentialStore(google.Config{
		ClientID:     a.config.ClientID,
		ClientSecret: a.config.ClientSecret,
		TokenFile:    opts.tokenFile,
		Logger:       a.logger,
		Metrics:      a.provider.Metrics(),
	})
}

func (a *app) descriptorCache(ctx context.Context) (*discovery.Cache, error) {
	fetcher, err := discovery.NewServiceFetcher(ctx, option.WithoutAuthentication())
	if err != nil {
		return nil, err
	}
	return discovery.NewCache(opts.cacheFile, fetcher, a.logger, a.provider.Metrics()), nil
}

func (a *app) newDriveClient(ctx context.Context, httpClient *http.Client, endpoint string) (*drive.Client, error) {
	return drive.NewClient(ctx, drive.Options{
		HTTPClient: httpClient,
		Endpoint:   endpoint,
		Logger:     a.logger,
		Metrics:    a.provider.Metrics(),
	})
}

// driveClientFactory adapts newDriveClient to the workflow.
func (a *app) driveClientFactory() workflow.ClientFactory {
	return func(ctx context.Context, httpClient *http.Client, endpoint string) (workflow.DriveService, error) {
		client, err := a.newDriveClient(ctx, httpClient, endpoint)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// connect authorizes and builds a Drive client outside of a Dropzone run.
func (a *app) connect(ctx context.Context) (*drive.Client, error) {
	creds, err := a.credentialStore()
	if err != nil {
		return nil, err
	}
	httpClient, err := creds.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	cache, err := a.descriptorCache(ctx)
	if err != nil {
		return nil, err
	}
	descriptor, err := cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	return a.newDriveClient(ctx, httpClient, descriptor.BaseURL())
}
