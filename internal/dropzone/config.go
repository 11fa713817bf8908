package dropzone

import (
	"os"
	"path/filepath"
	"strings"
)

// Environment variables set by Dropzone for an action run.
const (
	EnvClientID      = "username"
	EnvClientSecret  = "api_key"
	EnvFolderName    = "folder_name"
	EnvSupportFolder = "support_folder"
)

// KeyFolderName is the saved value holding the last chosen folder title.
const KeyFolderName = EnvFolderName

// cocoaDialogPath is the location of cocoaDialog inside the support folder.
var cocoaDialogPath = filepath.Join("bin", "cocoaDialog.app", "Contents", "MacOS", "cocoaDialog")

// Config holds the settings Dropzone passes through the environment.
type Config struct {
	// ClientID is the OAuth client id, entered as the action's username.
	ClientID string

	// ClientSecret is the OAuth client secret, entered as the action's API key.
	ClientSecret string

	// FolderName is the folder chosen on a previous run, if any.
	FolderName string

	// SupportFolder is Dropzone's support directory.
	SupportFolder string

	// CocoaDialog overrides the cocoaDialog binary location.
	CocoaDialog string
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() Config {
	return Config{
		ClientID:      strings.TrimSpace(os.Getenv(EnvClientID)),
		ClientSecret:  strings.TrimSpace(os.Getenv(EnvClientSecret)),
		FolderName:    os.Getenv(EnvFolderName),
		SupportFolder: os.Getenv(EnvSupportFolder),
	}
}

// CocoaDialogBinary returns the cocoaDialog binary to run.
func (c Config) CocoaDialogBinary() string {
	if c.CocoaDialog != "" {
		return c.CocoaDialog
	}
	if c.SupportFolder == "" {
		return ""
	}
	return filepath.Join(c.SupportFolder, cocoaDialogPath)
}
