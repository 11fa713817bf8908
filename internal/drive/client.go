package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	drive "google.golang.org/api/drive/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/dzdrive/internal/instrumentation"
	"github.com/teemow/dzdrive/internal/logging"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// RootFolderID is the alias of the user's My Drive root.
	RootFolderID = "root"

	// RootFoldersQuery selects the non-trashed folders directly under the root.
	RootFoldersQuery = "'root' in parents and mimeType = '" + FolderMimeType + "' and trashed = false"
)

// Options configures a Client.
type Options struct {
	// HTTPClient must already be authorized for the drive scope.
	HTTPClient *http.Client

	// Endpoint overrides the service base URL, usually taken from the API descriptor.
	Endpoint string

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Client wraps the Google Drive v2 API service
type Client struct {
	service *drive.Service
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewClient creates a Drive client on top of an authorized HTTP client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("an authorized HTTP client is required")
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(opts.HTTPClient)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	driveService, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		service: driveService,
		logger:  logging.WithService(logger, instrumentation.ServiceDrive),
		metrics: opts.Metrics,
	}, nil
}

// ListRootFolders returns the folders directly under My Drive, first page only,
// in the order the service returned them.
func (c *Client) ListRootFolders(ctx context.Context) ([]Folder, error) {
	var list *drive.FileList
	err := c.observe(ctx, instrumentation.OperationList, nil, func(ctx context.Context) error {
		var err error
		list, err = c.service.Files.List().
			Q(RootFoldersQuery).
			Fields("items(id,title)").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	folders := make([]Folder, 0, len(list.Items))
	for _, item := range list.Items {
		folders = append(folders, Folder{Title: item.Title, ID: item.Id})
	}
	c.logger.Debug("listed root folders", "count", len(folders))
	return folders, nil
}

// CreateFolder creates a folder titled name under the root and returns it.
func (c *Client) CreateFolder(ctx context.Context, name string) (*Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	file := &drive.File{
		Title:    name,
		MimeType: FolderMimeType,
		Parents:  []*drive.ParentReference{{Id: RootFolderID}},
	}

	var created *drive.File
	err := c.observe(ctx, instrumentation.OperationCreate, nil, func(ctx context.Context) error {
		var err error
		created, err = c.service.Files.Insert(file).
			Fields("id,title").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}
	if created.Id == "" {
		return nil, fmt.Errorf("folder %q was created without an id", name)
	}

	c.logger.Info("created folder", logging.Folder(created.Title), logging.FolderID(created.Id))
	return &Folder{Title: created.Title, ID: created.Id}, nil
}

// UploadFile uploads the file at path into the folder with the given id.
// The title is the base name of path and the content type is sniffed from the file.
func (c *Client) UploadFile(ctx context.Context, path, folderID string) (*UploadedFile, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	contentType, err := DetectContentType(path)
	if err != nil {
		return nil, err
	}

	title := filepath.Base(path)
	file := &drive.File{
		Title:    title,
		MimeType: contentType,
		Parents:  []*drive.ParentReference{{Id: folderID}},
	}

	attrs := instrumentation.NewSpanAttributeBuilder().
		WithFolderID(folderID).
		WithFile(title, contentType).
		Build()

	var uploaded *drive.File
	err = c.observe(ctx, instrumentation.OperationUpload, attrs, func(ctx context.Context) error {
		var err error
		uploaded, err = c.service.Files.Insert(file).
			Media(f, googleapi.ContentType(contentType), googleapi.ChunkSize(0)).
			Fields("id,title,mimeType,fileSize,alternateLink,webContentLink,parents(id)").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		c.metrics.RecordUploadBytes(ctx, instrumentation.StatusError, info.Size())
		return nil, fmt.Errorf("failed to upload %s: %w", title, err)
	}
	c.metrics.RecordUploadBytes(ctx, instrumentation.StatusSuccess, info.Size())

	c.logger.Info("uploaded file",
		logging.File(title),
		logging.FolderID(folderID),
		"content_type", contentType,
		"bytes", info.Size())

	return convertToUploadedFile(uploaded), nil
}

// observe runs fn inside a Google API span and records the call's outcome.
func (c *Client) observe(ctx context.Context, operation string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, operation, attrs...)
	start := time.Now()

	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		c.logger.Debug("drive call failed", logging.Operation(operation), logging.Err(err))
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceDrive, operation, status, time.Since(start))
	instrumentation.EndSpan(span, err)
	return err
}

// ErrorMessage returns the message reported by the Drive service for err, or
// err's own text when it did not come from the service.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if len(apiErr.Errors) > 0 && apiErr.Errors[0].Message != "" {
			return apiErr.Errors[0].Message
		}
		if apiErr.Body != "" {
			return apiErr.Body
		}
		return http.StatusText(apiErr.Code)
	}
	return err.Error()
}

func convertToUploadedFile(f *drive.File) *UploadedFile {
	info := &UploadedFile{
		ID:             f.Id,
		Title:          f.Title,
		MimeType:       f.MimeType,
		Size:           f.FileSize,
		AlternateLink:  f.AlternateLink,
		WebContentLink: f.WebContentLink,
	}
	for _, p := range f.Parents {
		if p != nil && p.Id != "" {
			info.Parents = append(info.Parents, p.Id)
		}
	}
	return info
}
