package google

import drive "google.golang.org/api/drive/v2"

// DefaultOAuthScopes are the scopes requested by the installed-app flow.
// Full Drive access is needed to list root folders, create folders and upload.
var DefaultOAuthScopes = []string{
	drive.DriveScope,
}
