package shared

import (
	"net"
	"strconv"
)

// Wire-level constants shared by the server and its clients/tests.
const (
	ContentTypeJSON = "application/json"

	HeaderRequestID = "X-Request-Id"

	// CORSMaxAge is the preflight cache lifetime in seconds.
	CORSMaxAge = 3600

	// AllowedMethods is sent in the Allow header of 405 responses.
	AllowedMethods = "GET, HEAD, OPTIONS"

	IndexFile = "index.json"
	JSONExt   = ".json"
)

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
