package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/teemow/dzdrive/internal/drive"
	"github.com/teemow/dzdrive/internal/dropzone"
	"github.com/teemow/dzdrive/internal/logging"
)

var (
	// ErrCancelled is returned when the user dismisses a dialog with Cancel.
	// Its text is shown to the user as is.
	ErrCancelled = errors.New("Cancelled")

	// ErrFolderNameRequired is returned when the new folder name is empty.
	ErrFolderNameRequired = errors.New("You need to choose a folder!")

	// ErrInvalidSelection is returned when the dropdown reports an index that
	// does not name a presented folder.
	ErrInvalidSelection = errors.New("invalid folder selection")
)

// Dialog texts.
const (
	dropdownTitle = "Select a folder"
	dropdownText  = "In which folder would you like to upload the file(s)?"
	inputTitle    = "Create new folder"
	inputText     = "Enter the name of the new folder, where the file(s) will be uploaded:"
)

var (
	dropdownButtons = []string{"OK", "Cancel", "New folder"}
	inputButtons    = []string{"OK", "Cancel"}
)

// FolderService lists and creates top-level Drive folders.
type FolderService interface {
	ListRootFolders(ctx context.Context) ([]drive.Folder, error)
	CreateFolder(ctx context.Context, name string) (*drive.Folder, error)
}

// Host is the part of the Dropzone host the picker talks to.
type Host interface {
	Begin(message string)
	SaveValue(key, value string)
	CocoaDialog(ctx context.Context, args []string) (dropzone.DialogResult, error)
}

// Picker asks the user for the destination folder.
type Picker struct {
	service FolderService
	host    Host
	saved   string
	logger  *slog.Logger
}

// New creates a Picker. saved is the folder title chosen on a previous run.
func New(service FolderService, host Host, saved string, logger *slog.Logger) *Picker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Picker{
		service: service,
		host:    host,
		saved:   saved,
		logger:  logging.WithOperation(logger, "picker"),
	}
}

// Pick lists the root folders and returns the id of the folder the user chose
// or created.
func (p *Picker) Pick(ctx context.Context) (string, error) {
	folders, err := p.service.ListRootFolders(ctx)
	if err != nil {
		return "", err
	}
	return p.Choose(ctx, folders)
}

// Choose offers folders in a dropdown, or goes straight to folder creation
// when there are none. The chosen title is saved for the next run.
func (p *Picker) Choose(ctx context.Context, folders []drive.Folder) (string, error) {
	if len(folders) == 0 {
		p.logger.Debug("no folders to offer, creating one")
		return p.Create(ctx)
	}

	ordered := Order(folders, p.saved)
	titles := make([]string, len(ordered))
	for i, f := range ordered {
		titles[i] = f.Title
	}

	res, err := p.host.CocoaDialog(ctx, dropzone.Dropdown{
		Title:   dropdownTitle,
		Text:    dropdownText,
		Items:   titles,
		Buttons: dropdownButtons,
	}.Args())
	if err != nil {
		return "", err
	}

	switch res.Button {
	case dropzone.Button2:
		return "", ErrCancelled
	case dropzone.Button3:
		return p.Create(ctx)
	case dropzone.Button1:
	default:
		return "", fmt.Errorf("%w: unexpected button %d", ErrInvalidSelection, res.Button)
	}

	index, err := strconv.Atoi(strings.TrimSpace(res.Value))
	if err != nil {
		return "", fmt.Errorf("%w: %q is not an index", ErrInvalidSelection, res.Value)
	}
	if index < 0 || index >= len(ordered) {
		return "", fmt.Errorf("%w: index %d out of range", ErrInvalidSelection, index)
	}

	selected := ordered[index]
	p.host.SaveValue(dropzone.KeyFolderName, selected.Title)
	p.logger.Info("folder selected", logging.Folder(selected.Title), logging.FolderID(selected.ID))
	return selected.ID, nil
}

// Create asks for a folder name, creates the folder under the root and returns
// its id. An empty name is rejected before the service is called.
func (p *Picker) Create(ctx context.Context) (string, error) {
	res, err := p.host.CocoaDialog(ctx, dropzone.InputBox{
		Title:           inputTitle,
		InformativeText: inputText,
		Buttons:         inputButtons,
	}.Args())
	if err != nil {
		return "", err
	}
	if res.Button != dropzone.Button1 {
		return "", ErrCancelled
	}

	name := strings.TrimSpace(res.Value)
	if name == "" {
		return "", ErrFolderNameRequired
	}

	p.host.Begin(fmt.Sprintf("Creating new folder %s...", name))
	folder, err := p.service.CreateFolder(ctx, name)
	if err != nil {
		return "", err
	}

	p.host.SaveValue(dropzone.KeyFolderName, name)
	return folder.ID, nil
}

// Order returns folders with the one titled saved moved to the front. Without
// a match, or with a blank saved title, the order is unchanged. The input is
// not modified.
func Order(folders []drive.Folder, saved string) []drive.Folder {
	ordered := make([]drive.Folder, 0, len(folders))
	if strings.TrimSpace(saved) == "" {
		return append(ordered, folders...)
	}

	match := -1
	for i, f := range folders {
		if f.Title == saved {
			match = i
			break
		}
	}
	if match < 0 {
		return append(ordered, folders...)
	}

	ordered = append(ordered, folders[match])
	ordered = append(ordered, folders[:match]...)
	return append(ordered, folders[match+1:]...)
}
