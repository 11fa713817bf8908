// Package workflow runs the Google Drive action for one Dropzone drop.
//
// A run connects to Drive, asks for the destination folder and uploads the
// dropped files one by one. A file that fails to upload is reported and the
// rest of the batch is still uploaded; the run then ends as failed. All other
// errors end the run immediately. Only this package turns errors into
// Dropzone failure messages.
package workflow
