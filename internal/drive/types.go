package drive

// Folder is a top-level Drive folder as offered to the user.
type Folder struct {
	// Title is the display name of the folder
	Title string `json:"title"`

	// ID is the unique identifier of the folder
	ID string `json:"id"`
}

// UploadedFile represents metadata about a file stored by an upload
type UploadedFile struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Title is the name of the file
	Title string `json:"title"`

	// MimeType is the content type recorded by Drive
	MimeType string `json:"mimeType"`

	// Size is the size of the file in bytes
	Size int64 `json:"fileSize,omitempty"`

	// AlternateLink opens the file in the Drive web UI
	AlternateLink string `json:"alternateLink,omitempty"`

	// WebContentLink downloads the file content
	WebContentLink string `json:"webContentLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`
}

// Link returns the best link for showing the file to the user.
func (f *UploadedFile) Link() string {
	if f.AlternateLink != "" {
		return f.AlternateLink
	}
	return f.WebContentLink
}
