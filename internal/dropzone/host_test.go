package dropzone

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/dzdrive/internal/logging"
)

type stubRunner struct {
	args []string
	res  DialogResult
	err  error
}

func (s *stubRunner) Run(_ context.Context, args []string) (DialogResult, error) {
	s.args = args
	return s.res, s.err
}

func TestStdoutHost_Protocol(t *testing.T) {
	tests := []struct {
		name  string
		write func(h *StdoutHost)
		want  string
	}{
		{"begin", func(h *StdoutHost) { h.Begin("Connecting to Google Drive...") }, "Begin_Message:::Connecting to Google Drive...\n"},
		{"error", func(h *StdoutHost) { h.Error("File not found") }, "Error:::File not found\n"},
		{"fail", func(h *StdoutHost) { h.Fail("Cancelled") }, "Fail_Message:::Cancelled\n"},
		{"finish", func(h *StdoutHost) { h.Finish("Upload complete") }, "Finish_Message:::Upload complete\n"},
		{"url", func(h *StdoutHost) { h.URL("https://drive.google.com/file/d/1/view") }, "URL:::https://drive.google.com/file/d/1/view\n"},
		{"save value", func(h *StdoutHost) { h.SaveValue("folder_name", "Archive") }, "Save_Value:::folder_name:::Archive\n"},
		{"multi-line message", func(h *StdoutHost) { h.Error("line one\nline two\r\n") }, "Error:::line one line two\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := NewStdoutHost(&buf, nil, logging.Discard())
			tt.write(h)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestStdoutHost_Failed(t *testing.T) {
	var buf bytes.Buffer
	h := NewStdoutHost(&buf, nil, logging.Discard())

	h.Error("not fatal")
	assert.False(t, h.Failed())

	h.Fail("fatal")
	assert.True(t, h.Failed())
}

func TestStdoutHost_CocoaDialog(t *testing.T) {
	runner := &stubRunner{res: DialogResult{Button: Button1, Value: "0"}}
	h := NewStdoutHost(&bytes.Buffer{}, runner, logging.Discard())

	res, err := h.CocoaDialog(context.Background(), []string{"dropdown"})
	require.NoError(t, err)
	assert.Equal(t, DialogResult{Button: 1, Value: "0"}, res)
	assert.Equal(t, []string{"dropdown"}, runner.args)
}

func TestStdoutHost_CocoaDialogError(t *testing.T) {
	runner := &stubRunner{err: errors.New("not found")}
	h := NewStdoutHost(&bytes.Buffer{}, runner, logging.Discard())

	_, err := h.CocoaDialog(context.Background(), nil)
	assert.ErrorContains(t, err, "not found")

	_, err = NewStdoutHost(&bytes.Buffer{}, nil, logging.Discard()).CocoaDialog(context.Background(), nil)
	assert.Error(t, err)
}
