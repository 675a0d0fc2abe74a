package guard

import "net/http"

// RouteFunc resolve o nome lógico da rota de uma request ("" = desconhecida).
type RouteFunc func(r *http.Request) string

// MuxRoutes resolve o nome da rota a partir do pattern que o ServeMux casaria
// para a request. names mapeia pattern -> nome da rota.
func MuxRoutes(mux *http.ServeMux, names map[string]string) RouteFunc {
	return func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return names[pattern]
	}
}

// StaticRoute trata toda request como a rota `name`. Útil quando o middleware
// já envolve apenas o handler da rota.
func StaticRoute(name string) RouteFunc {
	return func(*http.Request) string { return name }
}
