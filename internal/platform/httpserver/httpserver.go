package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second

	// Audit exports stream the whole chain in one response, so writes get
	// a longer budget than reads.
	writeTimeout = 60 * time.Second
	idleTimeout  = 120 * time.Second
)

// New builds the governance HTTP server with timeouts sized for the audit
// export endpoints.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
