package generate

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"
)

type NetworkMetrics struct {
	DNS        time.Duration
	ConnWait   time.Duration
	TCP        time.Duration
	TLS        time.Duration
	TTFB       time.Duration
	Stream     time.Duration // first response byte to end of body
	Total      time.Duration
	ConnReused bool

	mu        sync.Mutex
	start     time.Time
	firstByte time.Time
}

// Done closes the measurement once the body has been consumed.
func (m *NetworkMetrics) Done() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.firstByte.IsZero() {
		m.Stream = time.Since(m.firstByte)
	}
	m.Total = time.Since(m.start)
}

func (m *NetworkMetrics) set(fn func()) {
	m.mu.Lock()
	fn()
	m.mu.Unlock()
}

type TracedClient struct {
	client *http.Client
}

// NewTracedClient builds a client for long-lived streaming responses. timeout
// bounds dialing and waiting for response headers, never the body.
func NewTracedClient(timeout time.Duration) *TracedClient {
	return &TracedClient{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
				ResponseHeaderTimeout: timeout,
				MaxIdleConns:          4,
				MaxIdleConnsPerHost:   4,
				IdleConnTimeout:       90 * time.Second,
				ForceAttemptHTTP2:     true,
			},
		},
	}
}

// Do sends req and fills m as the request progresses. The response body is
// left open for the caller.
func (c *TracedClient) Do(req *http.Request, m *NetworkMetrics) (*http.Response, error) {
	var getConnStart, dnsStart, tcpStart, tlsStart, wroteRequest time.Time

	trace := &httptrace.ClientTrace{
		GetConn: func(_ string) { getConnStart = time.Now() },
		GotConn: func(info httptrace.GotConnInfo) {
			m.set(func() {
				m.ConnWait = time.Since(getConnStart)
				m.ConnReused = info.Reused
			})
		},
		DNSStart:          func(_ httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone:           func(_ httptrace.DNSDoneInfo) { m.set(func() { m.DNS = time.Since(dnsStart) }) },
		ConnectStart:      func(_, _ string) { tcpStart = time.Now() },
		ConnectDone:       func(_, _ string, _ error) { m.set(func() { m.TCP = time.Since(tcpStart) }) },
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone:  func(_ tls.ConnectionState, _ error) { m.set(func() { m.TLS = time.Since(tlsStart) }) },
		WroteRequest:      func(_ httptrace.WroteRequestInfo) { wroteRequest = time.Now() },
		GotFirstResponseByte: func() {
			m.set(func() {
				m.firstByte = time.Now()
				m.TTFB = m.firstByte.Sub(wroteRequest)
			})
		},
	}

	m.set(func() { m.start = time.Now() })
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))
	return c.client.Do(req)
}

// Probe issues a HEAD request and reports the round trip. Any status counts
// as reachable.
func (c *TracedClient) Probe(ctx context.Context, url string) (time.Duration, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, 0, err
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return time.Since(start), resp.StatusCode, nil
}
