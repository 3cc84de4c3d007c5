package main

import (
	"net"
	"net/http"
	"runtime"
	"time"
)

const defaultUserAgent = "setup-mc"

func defaultClient() *http.Client {
	return newClient(defaultUserAgent)
}

func newClient(userAgent string) *http.Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &http.Client{
		Transport: &userAgentTransport{
			Transport: defaultTransport(),
			userAgent: userAgent,
		},
	}
}

func defaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
	}
}

// userAgentTransport identifies the client to the catalog APIs, which ask
// for a descriptive User-Agent.
type userAgentTransport struct {
	*http.Transport
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.Transport.RoundTrip(req)
}
