// Package logging provides structured logging utilities for dzdrive.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Output
//
// Dropzone parses the action's stdout as a line protocol (Begin_Message, Fail_Message,
// ...), so every logger built here is meant to write to stderr.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(logging.New(os.Stderr, false), "drive.upload")
//	logger.Info("uploading file",
//	    logging.File(path),
//	    logging.FolderID(folderID))
//
// # Security Considerations
//
// OAuth tokens are never logged directly; use SanitizeToken when a token needs
// to be referenced in a log line.
package logging
