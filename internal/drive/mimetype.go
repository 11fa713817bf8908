package drive

import (
	"fmt"
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

// DetectContentType sniffs the media type of the file at path. Parameters such
// as charset are dropped, so a plain text file yields "text/plain".
func DetectContentType(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type of %s: %w", path, err)
	}

	mediaType, _, err := mime.ParseMediaType(mt.String())
	if err != nil {
		return mt.String(), nil
	}
	return mediaType, nil
}
