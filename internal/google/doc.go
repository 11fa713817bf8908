// Package google provides OAuth2 authentication and token management for Google APIs.
//
// The CredentialStore reuses a token persisted as JSON next to the action
// ("<argv0>-oauth2.json" by default). On first run it drives the installed
// application flow: a loopback redirect server, the consent screen opened in the
// browser, and the code exchange. Refreshed tokens are written back to the file.
package google
