package dropzone

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Buttons as numbered by cocoaDialog, left to right as declared.
const (
	Button1 = 1
	Button2 = 2
	Button3 = 3
)

// DialogResult is what cocoaDialog printed: the pressed button and, for
// dropdowns and input boxes, the selected index or the entered text.
type DialogResult struct {
	Button int
	Value  string
}

// CocoaDialogRunner executes the cocoaDialog binary bundled with Dropzone.
type CocoaDialogRunner struct {
	Binary string
}

// Run executes cocoaDialog with args and parses its output.
func (r CocoaDialogRunner) Run(ctx context.Context, args []string) (DialogResult, error) {
	if strings.TrimSpace(r.Binary) == "" {
		return DialogResult{}, errors.New("cocoaDialog binary is not configured")
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return DialogResult{}, fmt.Errorf(
				"run cocoaDialog: %w (output: %s)",
				err,
				strings.TrimSpace(string(exitErr.Stderr)),
			)
		}
		return DialogResult{}, fmt.Errorf("run cocoaDialog: %w", err)
	}
	return ParseDialogOutput(string(out))
}

// ParseDialogOutput parses cocoaDialog's "button\nvalue" output.
func ParseDialogOutput(out string) (DialogResult, error) {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	lines := strings.SplitN(out, "\n", 3)

	buttonText := strings.TrimSpace(lines[0])
	button, err := strconv.Atoi(buttonText)
	if err != nil {
		return DialogResult{}, fmt.Errorf("decode cocoaDialog output: unexpected button %q", buttonText)
	}

	res := DialogResult{Button: button}
	if len(lines) > 1 {
		res.Value = lines[1]
	}
	return res, nil
}

// Dropdown describes a cocoaDialog dropdown.
type Dropdown struct {
	Title   string
	Text    string
	Items   []string
	Buttons []string
}

// Args returns the cocoaDialog argument vector for the dropdown.
func (d Dropdown) Args() []string {
	args := []string{"dropdown"}
	args = appendButtons(args, d.Buttons)
	args = append(args, "--title", d.Title, "--text", d.Text, "--items")
	return append(args, d.Items...)
}

// InputBox describes a cocoaDialog standard input box.
type InputBox struct {
	Title           string
	InformativeText string
	Buttons         []string
}

// Args returns the cocoaDialog argument vector for the input box.
func (b InputBox) Args() []string {
	args := []string{"standard-inputbox"}
	args = appendButtons(args, b.Buttons)
	return append(args, "--title", b.Title, "--informative-text", b.InformativeText)
}

func appendButtons(args, buttons []string) []string {
	for i, label := range buttons {
		args = append(args, "--button"+strconv.Itoa(i+1), label)
	}
	return args
}
