// Package discovery caches the Google Drive v2 API descriptor.
//
// The descriptor is the Discovery service's REST description of drive v2. It is
// fetched once, stored as JSON in drive-v2.cache and afterwards read from disk.
// Its base URL configures the typed Drive client.
package discovery
