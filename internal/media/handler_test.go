package media

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMux(t *testing.T, dir, upstream string) (*http.ServeMux, map[string]string) {
	t.Helper()
	h, err := NewHandler(dir, upstream, nil)
	require.NoError(t, err)
	mux := http.NewServeMux()
	return mux, Register(mux, h)
}

func writeMedia(t *testing.T, dir, rel, body string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestHandler_ServesFile(t *testing.T) {
	dir := t.TempDir()
	writeMedia(t, dir, "400x400/12/photo.jpg", "jpeg-bytes")
	mux, routes := newMux(t, dir, "")

	assert.Equal(t, map[string]string{Pattern: RouteName}, routes)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/media/400x400/12/photo.jpg", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jpeg-bytes", rr.Body.String())
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
}

func TestHandler_NotFound(t *testing.T) {
	mux, _ := newMux(t, t.TempDir(), "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/media/400x400/12/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	writeMedia(t, dir, "secret.txt", "secret")
	h, err := NewHandler(filepath.Join(dir, "media"), "", nil)
	require.NoError(t, err)

	for _, id := range []string{"..", ".", "../..", `..\..`, ""} {
		req := httptest.NewRequest(http.MethodGet, "/uploads/media/x/y/secret.txt", nil)
		req.SetPathValue("format", "..")
		req.SetPathValue("id", id)
		req.SetPathValue("file", "secret.txt")

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code, "id %q", id)
	}
}

func TestHandler_DirectoryIsNotServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "400x400", "12", "sub"), 0o755))
	mux, _ := newMux(t, dir, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/media/400x400/12/sub", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_ProxiesMissingFiles(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "from upstream "+r.URL.Path)
	}))
	defer upstream.Close()

	mux, _ := newMux(t, t.TempDir(), upstream.URL)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/media/400x400/12/photo.jpg", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "from upstream /uploads/media/400x400/12/photo.jpg", rr.Body.String())
}

func TestHandler_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	mux, _ := newMux(t, t.TempDir(), url)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/media/a/b/c.png", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestNewHandler_InvalidUpstream(t *testing.T) {
	_, err := NewHandler(t.TempDir(), "not a url", nil)
	assert.Error(t, err)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	mux, _ := newMux(t, t.TempDir(), "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/uploads/media/a/b/c.png", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
