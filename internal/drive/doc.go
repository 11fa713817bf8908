// Package drive provides a client for the Google Drive v2 API.
//
// The client covers what the Dropzone action needs:
//   - Listing the folders directly under My Drive
//   - Creating a folder under My Drive
//   - Uploading a local file into a folder in a single multipart request
//
// Content types are sniffed from the file contents. Every call runs inside an
// OpenTelemetry span and is counted in the Google API metrics.
//
// Example usage:
//
//	client, err := drive.NewClient(ctx, drive.Options{HTTPClient: httpClient})
//	if err != nil {
//	    return err
//	}
//
//	folders, err := client.ListRootFolders(ctx)
//	if err != nil {
//	    return err
//	}
//
//	file, err := client.UploadFile(ctx, "/tmp/notes.txt", folders[0].ID)
package drive
