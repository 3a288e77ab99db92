// Package server implements the jsonserve HTTP surface.
//
// Owns:
//   - the endpoint Store handed to handlers
//   - routing, handlers and the header/CORS middleware
//   - the optional SQLite access log and Prometheus collectors
//
// Does not own:
//   - building the endpoint table (package scanner)
//   - configuration and listener setup (cmd/jsonserve)
//
// Invariants:
//   - every response is sent with Content-Type application/json
//   - the Store is read-only once NewHandler has been called
//   - stored bytes are written exactly as they were loaded
package server
