package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMuxRoutes_ResolvesNameFromPattern(t *testing.T) {
	mux := http.NewServeMux()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	mux.Handle("GET /uploads/media/{format}/{id}/{file}", noop)
	mux.Handle("GET /healthz", noop)

	fn := MuxRoutes(mux, map[string]string{
		"GET /uploads/media/{format}/{id}/{file}": testRoute,
	})

	if got := fn(httptest.NewRequest(http.MethodGet, "/uploads/media/thumb/12/a.jpg", nil)); got != testRoute {
		t.Fatalf("expected %s, got %q", testRoute, got)
	}
	if got := fn(httptest.NewRequest(http.MethodGet, "/healthz", nil)); got != "" {
		t.Fatalf("expected unnamed route, got %q", got)
	}
	if got := fn(httptest.NewRequest(http.MethodGet, "/missing", nil)); got != "" {
		t.Fatalf("expected no route, got %q", got)
	}
}
