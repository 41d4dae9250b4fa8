package assets

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/bundlecompose/internal/config"
	"github.com/wolfeidau/bundlecompose/internal/preset"
)

func staticBundler(t *testing.T, fallback bool, cors []string) *Bundler {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>index</html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "index.js"), []byte("console.log(1)"), 0o600))

	return &Bundler{
		outDir: dir,
		opts:   Options{DevServer: DevServer{HistoryAPIFallback: fallback, CORS: cors}},
	}
}

func TestHandler_ServesOutputs(t *testing.T) {
	h := staticBundler(t, true, nil).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/js/index.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "console.log(1)", w.Body.String())
}

func TestHandler_HistoryFallback(t *testing.T) {
	tests := []struct {
		name     string
		fallback bool
		path     string
		code     int
	}{
		{name: "route falls back to index", fallback: true, path: "/dashboard/settings", code: http.StatusOK},
		{name: "missing asset is not found", fallback: true, path: "/js/missing.js", code: http.StatusNotFound},
		{name: "fallback disabled", fallback: false, path: "/dashboard", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := staticBundler(t, tt.fallback, nil).Handler()

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				require.Contains(t, w.Body.String(), "index")
			}
		})
	}
}

func TestHandler_CORS(t *testing.T) {
	h := staticBundler(t, false, []string{"http://localhost:3000"}).Handler()

	r := httptest.NewRequest(http.MethodGet, "/js/index.js", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/js/index.js", nil)
	r.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDevServerAddr(t *testing.T) {
	b := &Bundler{}
	require.Equal(t, "localhost:8080", b.devServerAddr())

	b.opts.DevServer = DevServer{Host: "0.0.0.0", Port: 3000}
	require.Equal(t, "0.0.0.0:3000", b.devServerAddr())

	b.opts.DevServer = DevServer{Host: "::1", Port: 3000}
	require.Equal(t, "[::1]:3000", b.devServerAddr())
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	writeDemo(t, root)

	p := demoParams(root, config.EnvDevelopment)
	p.Host = "127.0.0.1"
	p.Port = freePort(t)

	b, err := New(preset.Effective(p))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- b.Serve(ctx) }()

	base := "http://" + p.Addr()
	get := func(path string) (int, string, http.Header) {
		res, err := http.Get(base + path) //nolint:noctx
		if err != nil {
			return 0, "", nil
		}
		defer res.Body.Close()
		body, _ := io.ReadAll(res.Body)
		return res.StatusCode, string(body), res.Header
	}

	require.Eventually(t, func() bool {
		code, _, _ := get("/")
		return code == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	_, entry, err := b.LoadScripts("index")
	require.NoError(t, err)

	code, body, header := get("/" + entry)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "component a")
	require.Equal(t, "no-store", header.Get("Cache-Control"))

	components := filepath.Join(root, "demo", "components")
	require.NoError(t, os.WriteFile(filepath.Join(components, "a.js"), []byte("console.log(\"component a v2\");\n"), 0o600))
	require.Eventually(t, func() bool {
		_, body, _ := get("/" + entry)
		return strings.Contains(body, "component a v2")
	}, 10*time.Second, 100*time.Millisecond, "edited source is rebuilt")

	require.NoError(t, os.WriteFile(filepath.Join(components, "c.js"), []byte("console.log(\"component c\");\n"), 0o600))
	require.Eventually(t, func() bool {
		_, body, _ := get("/" + entry)
		return strings.Contains(body, "component c")
	}, 10*time.Second, 100*time.Millisecond, "new glob match is rebuilt")

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("dev server did not stop")
	}
}
