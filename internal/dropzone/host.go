package dropzone

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/teemow/dzdrive/internal/logging"
)

// Host is the Dropzone side of an action run: progress and outcome messages,
// persisted action values and cocoaDialog prompts.
type Host interface {
	// Begin announces the step the action is working on.
	Begin(message string)
	// Error reports a non-fatal failure.
	Error(message string)
	// Fail reports a fatal failure. The action must exit non-zero afterwards.
	Fail(message string)
	// Finish reports success.
	Finish(message string)
	// URL hands Dropzone a link to show and copy.
	URL(url string)
	// SaveValue persists key for the next run, where it is read back from the environment.
	SaveValue(key, value string)
	// CocoaDialog shows a dialog and returns the pressed button and entered value.
	CocoaDialog(ctx context.Context, args []string) (DialogResult, error)
}

// Protocol prefixes written to stdout, one message per line.
const (
	prefixBegin     = "Begin_Message"
	prefixError     = "Error"
	prefixFail      = "Fail_Message"
	prefixFinish    = "Finish_Message"
	prefixURL       = "URL"
	prefixSaveValue = "Save_Value"

	separator = ":::"
)

// DialogRunner runs cocoaDialog with an argument vector.
type DialogRunner interface {
	Run(ctx context.Context, args []string) (DialogResult, error)
}

// StdoutHost speaks the Dropzone line protocol on out.
type StdoutHost struct {
	mu     sync.Mutex
	out    io.Writer
	dialog DialogRunner
	logger *slog.Logger
	failed bool
}

// NewStdoutHost creates a host writing protocol lines to out and running dialogs with dialog.
func NewStdoutHost(out io.Writer, dialog DialogRunner, logger *slog.Logger) *StdoutHost {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdoutHost{
		out:    out,
		dialog: dialog,
		logger: logging.WithOperation(logger, "dropzone"),
	}
}

// Begin implements Host.
func (h *StdoutHost) Begin(message string) {
	h.write(prefixBegin, message)
}

// Error implements Host.
func (h *StdoutHost) Error(message string) {
	h.write(prefixError, message)
}

// Fail implements Host.
func (h *StdoutHost) Fail(message string) {
	h.mu.Lock()
	h.failed = true
	h.mu.Unlock()
	h.write(prefixFail, message)
}

// Finish implements Host.
func (h *StdoutHost) Finish(message string) {
	h.write(prefixFinish, message)
}

// URL implements Host.
func (h *StdoutHost) URL(url string) {
	h.write(prefixURL, url)
}

// SaveValue implements Host.
func (h *StdoutHost) SaveValue(key, value string) {
	h.write(prefixSaveValue, key, value)
}

// CocoaDialog implements Host.
func (h *StdoutHost) CocoaDialog(ctx context.Context, args []string) (DialogResult, error) {
	if h.dialog == nil {
		return DialogResult{}, fmt.Errorf("no cocoaDialog runner configured")
	}
	res, err := h.dialog.Run(ctx, args)
	if err != nil {
		return DialogResult{}, err
	}
	h.logger.Debug("dialog closed", "button", res.Button)
	return res, nil
}

// Failed reports whether Fail has been called.
func (h *StdoutHost) Failed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failed
}

func (h *StdoutHost) write(prefix string, fields ...string) {
	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, prefix)
	for _, f := range fields {
		parts = append(parts, sanitizeField(f))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := fmt.Fprintln(h.out, strings.Join(parts, separator)); err != nil {
		h.logger.Warn("failed to write to Dropzone", "prefix", prefix, logging.Err(err))
	}
}

// sanitizeField keeps a message on a single protocol line.
func sanitizeField(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\r", " ")), " ")
}
