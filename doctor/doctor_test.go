package doctor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscribe/generate"
	"medscribe/prefs"
)

type memClipboard struct {
	mu       sync.Mutex
	text     string
	writeErr error
	corrupt  bool
}

func (m *memClipboard) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.text = text
	return nil
}

func (m *memClipboard) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.corrupt {
		return "something else", nil
	}
	return m.text, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func options(t *testing.T, endpoint string) (Options, *memClipboard) {
	t.Helper()
	tracer := generate.NewTracedClient(time.Second)
	clip := &memClipboard{text: "user data"}
	store := prefs.New(afero.NewMemMapFs(), "/cfg")
	return Options{
		Endpoint:  endpoint,
		Prober:    tracer,
		Clipboard: clip,
		Store:     store,
		StorePath: store.Path(),
		Timeout:   2 * time.Second,
	}, clip
}

func TestRunAllPass(t *testing.T) {
	srv := newServer(t)
	opts, clip := options(t, srv.URL+generate.Path)

	var out bytes.Buffer
	code := Run(context.Background(), &out, opts)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "server answered 405")
	assert.Contains(t, out.String(), "clipboard write/read verified")
	assert.Contains(t, out.String(), "no saved theme")
	assert.Contains(t, out.String(), "All checks passed!")
	assert.Equal(t, "user data", clip.text, "previous clipboard contents restored")
}

func TestRunEndpointDown(t *testing.T) {
	srv := newServer(t)
	url := srv.URL + generate.Path
	srv.Close()

	opts, _ := options(t, url)
	var out bytes.Buffer
	code := Run(context.Background(), &out, opts)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FAIL: endpoint unreachable")
	assert.Contains(t, out.String(), "Some checks failed.")
}

func TestRunClipboardFailures(t *testing.T) {
	srv := newServer(t)

	t.Run("write", func(t *testing.T) {
		opts, clip := options(t, srv.URL)
		clip.writeErr = errors.New("xclip not found")
		var out bytes.Buffer
		assert.Equal(t, 1, Run(context.Background(), &out, opts))
		assert.Contains(t, out.String(), "clipboard write failed: xclip not found")
	})

	t.Run("mismatch", func(t *testing.T) {
		opts, clip := options(t, srv.URL)
		clip.corrupt = true
		var out bytes.Buffer
		assert.Equal(t, 1, Run(context.Background(), &out, opts))
		assert.Contains(t, out.String(), "clipboard mismatch")
	})
}

func TestRunReportsSavedTheme(t *testing.T) {
	srv := newServer(t)
	opts, _ := options(t, srv.URL)
	store := prefs.New(afero.NewMemMapFs(), "/cfg")
	require.NoError(t, store.Set(prefs.ThemeKey, "dark"))
	opts.Store = store

	var out bytes.Buffer
	require.Equal(t, 0, Run(context.Background(), &out, opts))
	assert.Contains(t, out.String(), "theme=dark")
}
