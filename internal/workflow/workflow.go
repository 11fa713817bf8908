package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/teemow/dzdrive/internal/discovery"
	"github.com/teemow/dzdrive/internal/drive"
	"github.com/teemow/dzdrive/internal/dropzone"
	"github.com/teemow/dzdrive/internal/instrumentation"
	"github.com/teemow/dzdrive/internal/logging"
	"github.com/teemow/dzdrive/internal/picker"
)

// Host messages.
const (
	MessageConnecting   = "Connecting to Google Drive..."
	MessageSelectFolder = "What folder would you like to use?"
	MessageComplete     = "Upload complete"
)

// ErrFailed is returned by Run after the failure has been reported to the host.
var ErrFailed = errors.New("action failed")

// Authenticator hands out an HTTP client authorized for Drive.
type Authenticator interface {
	HTTPClient(ctx context.Context) (*http.Client, error)
}

// DescriptorLoader returns the Drive API descriptor.
type DescriptorLoader interface {
	Load(ctx context.Context) (*discovery.Descriptor, error)
}

// DriveService is the Drive surface the action uses.
type DriveService interface {
	picker.FolderService
	UploadFile(ctx context.Context, path, folderID string) (*drive.UploadedFile, error)
}

// ClientFactory builds a DriveService from an authorized HTTP client and the
// service base URL.
type ClientFactory func(ctx context.Context, httpClient *http.Client, endpoint string) (DriveService, error)

// Options configures a Workflow.
type Options struct {
	Host        dropzone.Host
	Auth        Authenticator
	Descriptors DescriptorLoader
	NewClient   ClientFactory

	// SavedFolder is the folder title chosen on a previous run.
	SavedFolder string

	Logger *slog.Logger
}

// Workflow drives one Dropzone run: connect, choose a folder, upload.
type Workflow struct {
	host        dropzone.Host
	auth        Authenticator
	descriptors DescriptorLoader
	newClient   ClientFactory
	savedFolder string
	logger      *slog.Logger

	drive DriveService
}

// New creates a Workflow.
func New(opts Options) *Workflow {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		host:        opts.Host,
		auth:        opts.Auth,
		descriptors: opts.Descriptors,
		newClient:   opts.NewClient,
		savedFolder: opts.SavedFolder,
		logger:      logging.WithOperation(logger, "workflow"),
	}
}

// Configure authenticates, loads the API descriptor and builds the Drive client.
func (w *Workflow) Configure(ctx context.Context) error {
	w.host.Begin(MessageConnecting)

	httpClient, err := w.auth.HTTPClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to authorize with Google Drive: %w", err)
	}

	descriptor, err := w.descriptors.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load the Drive API descriptor: %w", err)
	}

	client, err := w.newClient(ctx, httpClient, descriptor.BaseURL())
	if err != nil {
		return err
	}
	w.drive = client

	w.logger.Debug("connected", "endpoint", descriptor.BaseURL())
	return nil
}

// SelectFolder lets the user choose or create the destination folder and
// returns its id.
func (w *Workflow) SelectFolder(ctx context.Context) (string, error) {
	if w.drive == nil {
		return "", errors.New("workflow is not configured")
	}
	w.host.Begin(MessageSelectFolder)
	return picker.New(w.drive, w.host, w.savedFolder, w.logger).Pick(ctx)
}

// Upload uploads files one after another into folderID. A failed file is
// reported through the host's Error channel and the batch carries on.
func (w *Workflow) Upload(ctx context.Context, folderID string, files []string) BatchResult {
	return ProcessBatch(files, func(path string) (*drive.UploadedFile, error) {
		w.host.Begin(fmt.Sprintf("Uploading %s to Google Drive...", filepath.Base(path)))

		file, err := w.drive.UploadFile(ctx, path, folderID)
		if err != nil {
			w.logger.Error("upload failed", logging.File(path), logging.Err(err))
			w.host.Error(drive.ErrorMessage(err))
			return nil, err
		}
		return file, nil
	})
}

// Run performs the whole action for files and reports the outcome to the host.
// Any failure has already been shown to the user when Run returns an error.
func (w *Workflow) Run(ctx context.Context, files []string) (err error) {
	ctx, span := instrumentation.StartSpan(ctx, "dzdrive.upload")
	defer func() { instrumentation.EndSpan(span, err) }()
	if id := instrumentation.GetTraceID(ctx); id != "" {
		w.logger = w.logger.With(slog.String("trace_id", id))
	}

	if err := w.Configure(ctx); err != nil {
		return w.fail(err)
	}

	folderID, err := w.SelectFolder(ctx)
	if err != nil {
		return w.fail(err)
	}

	res := w.Upload(ctx, folderID, files)
	if msg := res.FailureSummary(); msg != "" {
		w.host.Fail(msg)
		return fmt.Errorf("%w: %s", ErrFailed, msg)
	}

	w.host.Finish(MessageComplete)
	if link := res.LastLink(); link != "" {
		w.host.URL(link)
	}
	w.logger.Info("upload complete", "files", res.Successful, logging.Status(logging.StatusSuccess))
	return nil
}

func (w *Workflow) fail(err error) error {
	msg := FailureMessage(err)
	status := logging.StatusError
	if errors.Is(err, picker.ErrCancelled) {
		status = logging.StatusCancelled
	}
	w.logger.Info("action failed", logging.Status(status), logging.Err(err))
	w.host.Fail(msg)
	return fmt.Errorf("%w: %w", ErrFailed, err)
}

// FailureMessage returns the text shown to the user for a fatal error. Drive
// service errors are shown with the service's own message.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, picker.ErrCancelled):
		return picker.ErrCancelled.Error()
	case errors.Is(err, picker.ErrFolderNameRequired):
		return picker.ErrFolderNameRequired.Error()
	}
	return drive.ErrorMessage(err)
}
