package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	discoveryapi "google.golang.org/api/discovery/v1"
	"google.golang.org/api/option"

	"github.com/teemow/dzdrive/internal/logging"
)

type fakeFetcher struct {
	doc   *discoveryapi.RestDescription
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, api, version string) (*discoveryapi.RestDescription, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func driveDoc() *discoveryapi.RestDescription {
	return &discoveryapi.RestDescription{
		Kind:        "discovery#restDescription",
		Name:        "drive",
		Version:     "v2",
		RootUrl:     "https://www.googleapis.com/",
		ServicePath: "drive/v2/",
		BaseUrl:     "https://www.googleapis.com/drive/v2/",
	}
}

func writeCache(t *testing.T, path string, doc *discoveryapi.RestDescription) {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestLoad_UsesCacheWithoutFetching(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultCacheFile)
	writeCache(t, path, driveDoc())

	fetcher := &fakeFetcher{err: errors.New("must not fetch")}
	d, err := NewCache(path, fetcher, logging.Discard(), nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "drive", d.Name())
	assert.Equal(t, "v2", d.Version())
	assert.Equal(t, "https://www.googleapis.com/drive/v2/", d.BaseURL())
	assert.Zero(t, fetcher.calls)
}

func TestLoad_FetchesAndWritesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultCacheFile)
	fetcher := &fakeFetcher{doc: driveDoc()}
	cache := NewCache(path, fetcher, logging.Discard(), nil)

	d, err := cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "drive", d.Name())
	assert.Equal(t, 1, fetcher.calls)
	assert.FileExists(t, path)

	// Second load is served from disk.
	_, err = cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestLoad_FetchError(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultCacheFile)
	fetcher := &fakeFetcher{err: errors.New("offline")}

	_, err := NewCache(path, fetcher, logging.Discard(), nil).Load(context.Background())
	assert.ErrorContains(t, err, "offline")
	assert.NoFileExists(t, path)
}

func TestLoad_CorruptCacheIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultCacheFile)
	require.NoError(t, os.WriteFile(path, []byte("\x00not json"), 0644))

	fetcher := &fakeFetcher{doc: driveDoc()}
	_, err := NewCache(path, fetcher, logging.Discard(), nil).Load(context.Background())
	require.Error(t, err)
	assert.Zero(t, fetcher.calls)
}

func TestLoad_VersionMismatch(t *testing.T) {
	tests := []struct {
		name    string
		api     string
		version string
	}{
		{"other version", "drive", "v3"},
		{"other api", "gmail", "v2"},
		{"empty document", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultCacheFile)
			doc := driveDoc()
			doc.Name = tt.api
			doc.Version = tt.version
			writeCache(t, path, doc)

			fetcher := &fakeFetcher{doc: driveDoc()}
			_, err := NewCache(path, fetcher, logging.Discard(), nil).Load(context.Background())
			assert.ErrorIs(t, err, ErrVersionMismatch)
			assert.Zero(t, fetcher.calls)
		})
	}
}

func TestLoad_FetchedVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultCacheFile)
	doc := driveDoc()
	doc.Version = "v3"

	_, err := NewCache(path, &fakeFetcher{doc: doc}, logging.Discard(), nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrVersionMismatch)
	assert.NoFileExists(t, path)
}

func TestDescriptor_BaseURLFallback(t *testing.T) {
	doc := driveDoc()
	doc.BaseUrl = ""
	d := &Descriptor{doc: doc}

	assert.Equal(t, "https://www.googleapis.com/drive/v2/", d.BaseURL())
}

func TestNewCache_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultCacheFile, NewCache("", nil, nil, nil).Path())
}

func TestServiceFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discovery/v1/apis/drive/v2/rest", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(driveDoc())
	}))
	defer srv.Close()

	fetcher, err := NewServiceFetcher(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/discovery/v1/"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), DefaultCacheFile)
	d, err := NewCache(path, fetcher, logging.Discard(), nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://www.googleapis.com/drive/v2/", d.BaseURL())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cached discoveryapi.RestDescription
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, "drive", cached.Name)
	assert.Equal(t, "v2", cached.Version)
}
