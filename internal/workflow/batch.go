package workflow

import (
	"fmt"

	"github.com/teemow/dzdrive/internal/drive"
)

// Upload statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FileResult is the outcome of uploading one dropped file.
type FileResult struct {
	Path   string `json:"path"`
	Status string `json:"status"` // "success" or "error"
	Link   string `json:"link,omitempty"`
	Error  string `json:"error,omitempty"`

	File *drive.UploadedFile `json:"-"`
}

// BatchResult aggregates the outcome of an upload batch.
type BatchResult struct {
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []FileResult `json:"results"`
}

// ProcessBatch calls fn for each path in order and collects the results.
// A failing path does not stop the batch.
func ProcessBatch(paths []string, fn func(path string) (*drive.UploadedFile, error)) BatchResult {
	br := BatchResult{
		Total:   len(paths),
		Results: make([]FileResult, 0, len(paths)),
	}

	for _, path := range paths {
		result := FileResult{Path: path}
		file, err := fn(path)
		if err != nil {
			result.Status = StatusError
			result.Error = drive.ErrorMessage(err)
			br.Failed++
		} else {
			result.Status = StatusSuccess
			result.File = file
			result.Link = file.Link()
			br.Successful++
		}
		br.Results = append(br.Results, result)
	}

	return br
}

// FailureSummary describes the failed uploads, or returns "" when all succeeded.
func (b BatchResult) FailureSummary() string {
	if b.Failed == 0 {
		return ""
	}
	return fmt.Sprintf("%d of %d uploads failed", b.Failed, b.Total)
}

// LastLink returns the link of the last successfully uploaded file.
func (b BatchResult) LastLink() string {
	for i := len(b.Results) - 1; i >= 0; i-- {
		if b.Results[i].Status == StatusSuccess && b.Results[i].Link != "" {
			return b.Results[i].Link
		}
	}
	return ""
}
