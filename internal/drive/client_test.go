package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	drive "google.golang.org/api/drive/v2"
	"google.golang.org/api/googleapi"

	"github.com/teemow/dzdrive/internal/instrumentation"
	"github.com/teemow/dzdrive/internal/logging"
)

// uploadRequest is what the fake service saw for a multipart upload.
type uploadRequest struct {
	uploadType  string
	metadata    drive.File
	contentType string
	content     string
}

func newTestClient(t *testing.T, handler http.Handler, metrics *instrumentation.Metrics) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Options{
		HTTPClient: srv.Client(),
		Endpoint:   srv.URL + "/drive/v2/",
		Logger:     logging.Discard(),
		Metrics:    metrics,
	})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": message,
			"errors":  []map[string]string{{"message": message, "reason": "forbidden"}},
		},
	})
}

func parseMultipartUpload(t *testing.T, r *http.Request) uploadRequest {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/related", mediaType)

	req := uploadRequest{uploadType: r.URL.Query().Get("uploadType")}
	reader := multipart.NewReader(r.Body, params["boundary"])

	metaPart, err := reader.NextPart()
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(metaPart).Decode(&req.metadata))

	mediaPart, err := reader.NextPart()
	require.NoError(t, err)
	req.contentType = mediaPart.Header.Get("Content-Type")
	body, err := io.ReadAll(mediaPart)
	require.NoError(t, err)
	req.content = string(body)

	return req
}

func TestNewClient_RequiresHTTPClient(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	assert.Error(t, err)
}

func TestListRootFolders(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/drive/v2/files", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": []map[string]string{
				{"id": "1", "title": "Inbox"},
				{"id": "2", "title": "Archive"},
			},
		})
	}), nil)

	folders, err := client.ListRootFolders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RootFoldersQuery, gotQuery)
	assert.Equal(t, []Folder{{Title: "Inbox", ID: "1"}, {Title: "Archive", ID: "2"}}, folders)
}

func TestListRootFolders_Empty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": []interface{}{}})
	}), nil)

	folders, err := client.ListRootFolders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestListRootFolders_ServiceError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusForbidden, "Insufficient Permission")
	}), nil)

	_, err := client.ListRootFolders(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Insufficient Permission", ErrorMessage(err))
}

func TestCreateFolder(t *testing.T) {
	var got drive.File
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/drive/v2/files", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]string{"id": "new-id", "title": got.Title})
	}), nil)

	folder, err := client.CreateFolder(context.Background(), "Reports")
	require.NoError(t, err)

	assert.Equal(t, &Folder{Title: "Reports", ID: "new-id"}, folder)
	assert.Equal(t, "Reports", got.Title)
	assert.Equal(t, FolderMimeType, got.MimeType)
	require.Len(t, got.Parents, 1)
	assert.Equal(t, RootFolderID, got.Parents[0].Id)
}

func TestCreateFolder_EmptyName(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}), nil)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := client.CreateFolder(context.Background(), name)
		assert.Error(t, err, "name %q", name)
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestCreateFolder_ServiceRejection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusBadRequest, "Invalid folder name")
	}), nil)

	_, err := client.CreateFolder(context.Background(), "bad")
	require.Error(t, err)
	assert.Equal(t, "Invalid folder name", ErrorMessage(err))
}

func TestUploadFile_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello drive\n"), 0600))

	var got uploadRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload/drive/v2/files", r.URL.Path)
		got = parseMultipartUpload(t, r)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":            "file-1",
			"title":         got.metadata.Title,
			"mimeType":      got.metadata.MimeType,
			"fileSize":      "12",
			"alternateLink": "https://drive.google.com/file/d/file-1/view",
			"parents":       []map[string]string{{"id": "F1"}},
		})
	}), nil)

	file, err := client.UploadFile(context.Background(), path, "F1")
	require.NoError(t, err)

	assert.Equal(t, "multipart", got.uploadType)
	assert.Equal(t, "notes.txt", got.metadata.Title)
	assert.Equal(t, "text/plain", got.metadata.MimeType)
	require.Len(t, got.metadata.Parents, 1)
	assert.Equal(t, "F1", got.metadata.Parents[0].Id)
	assert.Equal(t, "text/plain", got.contentType)
	assert.Equal(t, "hello drive\n", got.content)

	assert.Equal(t, "file-1", file.ID)
	assert.Equal(t, "notes.txt", file.Title)
	assert.Equal(t, int64(12), file.Size)
	assert.Equal(t, []string{"F1"}, file.Parents)
	assert.Equal(t, "https://drive.google.com/file/d/file-1/view", file.Link())
}

func TestUploadFile_Validation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0600))

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}), nil)

	tests := []struct {
		name     string
		path     string
		folderID string
	}{
		{"missing path", "", "F1"},
		{"missing folder", path, ""},
		{"nonexistent file", filepath.Join(dir, "missing.txt"), "F1"},
		{"directory", dir, "F1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.UploadFile(context.Background(), tt.path, tt.folderID)
			assert.Error(t, err)
		})
	}
}

func TestUploadFile_RecordsMetrics(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	metrics, err := instrumentation.NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0600))

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"id": "x", "title": "data.txt"})
	}), metrics)

	_, err = client.UploadFile(context.Background(), path, "F1")
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), sums["google_api_operations_total"])
	assert.Equal(t, int64(10), sums["drive_upload_bytes_total"])
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("network down"), "network down"},
		{"api message", &googleapi.Error{Code: 403, Message: "Rate limit exceeded"}, "Rate limit exceeded"},
		{"wrapped api message", fmt.Errorf("failed: %w", &googleapi.Error{Code: 404, Message: "File not found"}), "File not found"},
		{"item message", &googleapi.Error{Code: 400, Errors: []googleapi.ErrorItem{{Message: "Bad title"}}}, "Bad title"},
		{"body only", &googleapi.Error{Code: 500, Body: "oops"}, "oops"},
		{"status only", &googleapi.Error{Code: 503}, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}
