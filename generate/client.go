package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"medscribe/log"
)

const (
	Path            = "/api/generate"
	DefaultEndpoint = "http://localhost:5000" + Path
	DefaultTimeout  = 30 * time.Second

	readChunkSize = 32 * 1024
)

// Generator produces a note for req, calling onChunk with the full text
// received so far each time it grows.
type Generator interface {
	Generate(ctx context.Context, req Request, onChunk func(snapshot string)) error
}

type Result struct {
	RequestID  string
	Text       string
	StatusCode int
	Chunks     int   // reads that returned data
	Bytes      int64 // body bytes received
	Dropped    int   // trailing bytes of an unfinished sequence at EOF
	Metrics    *NetworkMetrics
}

type Client struct {
	endpoint string
	http     *TracedClient
	newID    func() string
}

type Option func(*Client)

// WithTransport replaces the HTTP round tripper. Tracing still applies.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.client.Transport = rt }
}

func WithRequestIDs(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		endpoint: endpoint,
		http:     NewTracedClient(timeout),
		newID:    func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Tracer() *TracedClient { return c.http }

func (c *Client) Generate(ctx context.Context, req Request, onChunk func(string)) error {
	_, err := c.GenerateWithResult(ctx, req, onChunk)
	return err
}

// GenerateWithResult sends req and streams the response body through
// onChunk. Every snapshot strictly extends the previous one; the last one is
// the complete note. It returns on end of stream or on the first error,
// without retrying.
func (c *Client) GenerateWithResult(ctx context.Context, req Request, onChunk func(string)) (Result, error) {
	res := Result{RequestID: c.newID(), Metrics: &NetworkMetrics{}}

	if err := req.Validate(); err != nil {
		return res, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return res, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return res, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")
	httpReq.Header.Set("X-Request-ID", res.RequestID)

	resp, err := c.http.Do(httpReq, res.Metrics)
	if err != nil {
		return res, fmt.Errorf("send request: %w", err)
	}
	res.StatusCode = resp.StatusCode
	if resp.Body != nil {
		defer resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, &TransportError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}
	if !hasBody(resp) {
		return res, &ProtocolError{Reason: "response body is null"}
	}

	err = c.consume(resp.Body, &res, onChunk)
	res.Metrics.Done()
	if err == nil {
		log.Generation(log.GenerationData{
			RequestID:  res.RequestID,
			Mode:       string(req.Mode),
			StatusCode: res.StatusCode,
			Chunks:     res.Chunks,
			Bytes:      res.Bytes,
			ConnReused: res.Metrics.ConnReused,
			DNSMs:      ms(res.Metrics.DNS),
			TLSMs:      ms(res.Metrics.TLS),
			TTFBMs:     ms(res.Metrics.TTFB),
			StreamMs:   ms(res.Metrics.Stream),
			TotalMs:    ms(res.Metrics.Total),
		})
	}
	return res, err
}

func (c *Client) consume(body io.Reader, res *Result, onChunk func(string)) error {
	dec := newDecoder()
	buf := make([]byte, readChunkSize)
	var text strings.Builder

	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			res.Chunks++
			res.Bytes += int64(n)
			s, err := dec.Decode(buf[:n])
			if err != nil {
				res.Text = text.String()
				return &StreamError{Op: "decode", Bytes: res.Bytes, Err: err}
			}
			if s != "" {
				text.WriteString(s)
				res.Text = text.String()
				if onChunk != nil {
					onChunk(res.Text)
				}
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return &StreamError{Op: "read", Bytes: res.Bytes, Err: rerr}
		}
	}

	if dropped := dec.Pending(); dropped > 0 {
		res.Dropped = dropped
		log.Warnf("request %s: stream ended inside a multi-byte sequence, %d bytes dropped", res.RequestID, dropped)
	}
	return nil
}

// hasBody mirrors fetch semantics: 204 and 205 responses have a null body,
// any other 2xx response has a (possibly empty) readable one.
func hasBody(resp *http.Response) bool {
	if resp.Body == nil {
		return false
	}
	if resp.Body == http.NoBody {
		return resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusResetContent
	}
	return true
}

func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
