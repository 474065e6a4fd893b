package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server for the admin API. Write timeout leaves room
// for one SML round trip at the configured request timeout.
func New(addr string, handler http.Handler, smlRequestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      smlRequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
