// Package media serve as imagens formatadas da rota pública de mídia.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// RouteName é o nome lógico da rota protegida pelos guards.
	RouteName = "media.website.image.proxy"
	Pattern   = "GET /uploads/media/{format}/{id}/{file}"
)

type Handler struct {
	dir    string
	proxy  *httputil.ReverseProxy
	logger logrus.FieldLogger
}

// NewHandler serve arquivos de dir/<format>/<id>/<file>. Com upstream
// definido, arquivos ausentes são buscados lá.
func NewHandler(dir, upstream string, log logrus.FieldLogger) (*Handler, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	h := &Handler{dir: dir, logger: log}

	if upstream != "" {
		target, err := url.Parse(upstream)
		if err != nil {
			return nil, fmt.Errorf("invalid MEDIA_UPSTREAM_URL: %w", err)
		}
		if target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid MEDIA_UPSTREAM_URL: %q", upstream)
		}
		h.proxy = httputil.NewSingleHostReverseProxy(target)
		h.proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			h.logger.WithError(err).WithField("path", r.URL.Path).Warn("media upstream error")
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}
	}
	return h, nil
}

// Register registra o handler no mux e retorna o mapa pattern -> rota usado
// por guard.MuxRoutes.
func Register(mux *http.ServeMux, h http.Handler) map[string]string {
	mux.Handle(Pattern, h)
	return map[string]string{Pattern: RouteName}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	format, id, file := r.PathValue("format"), r.PathValue("id"), r.PathValue("file")
	if !validSegment(format) || !validSegment(id) || !validSegment(file) {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.dir, format, id, file)
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		info, statErr := f.Stat()
		if statErr == nil && info.Mode().IsRegular() {
			http.ServeContent(w, r, info.Name(), info.ModTime(), f)
			return
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		h.logger.WithError(err).WithField("file", path).Error("open media file")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if h.proxy != nil {
		h.proxy.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, 0)
}
