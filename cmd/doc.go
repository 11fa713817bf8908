// Package cmd implements the command-line interface for dzdrive.
//
// This package provides the following commands:
//   - upload: Upload files to a Google Drive folder (what Dropzone runs)
//   - login: Authorize access to Google Drive
//   - folders: List the top-level Drive folders as JSON
//   - version: Display version information
//
// Running dzdrive with file arguments and no subcommand behaves like upload.
package cmd
