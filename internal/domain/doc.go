// Package domain contains the core domain entities and value objects for dmxemu.
//
// This package is the innermost layer. It has no dependencies on infrastructure
// concerns (sockets, file system, logging) and contains only the data model
// shared by the wire reader, the frame buffer and the connection server.
//
// # Entities
//
//   - [Frame]: one decoded DMX channel snapshot, tagged with the local port it
//     arrived on
//
// # Errors
//
// Sentinel errors in errors.go classify every failure the ingestion path can
// produce. Callers match them with errors.Is.
package domain
