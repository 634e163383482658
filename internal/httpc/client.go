// Package httpc builds HTTP clients for outbound API calls. Every client it
// returns has an overall timeout and bounded dial and TLS handshake times.
package httpc

import (
	"net"
	"net/http"
	"time"
)

// Dial and pool limits shared by every client.
const (
	DefaultTimeout      = 30 * time.Second
	DialTimeout         = 10 * time.Second
	KeepAlive           = 30 * time.Second
	IdleConnTimeout     = 90 * time.Second
	TLSHandshakeTimeout = 10 * time.Second
	MaxIdleConnsPerHost = 4 // one speech endpoint per process
)

// New returns a client with its own transport. A non-positive timeout uses
// DefaultTimeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: KeepAlive,
			}).DialContext,
			MaxIdleConnsPerHost: MaxIdleConnsPerHost,
			IdleConnTimeout:     IdleConnTimeout,
			TLSHandshakeTimeout: TLSHandshakeTimeout,
			ForceAttemptHTTP2:   true,
		},
	}
}
