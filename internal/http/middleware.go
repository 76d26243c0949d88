package http

import (
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// hashedAsset matches output files carrying an esbuild content hash, e.g. UserCard.async.7KQMBPWZ.js
var hashedAsset = regexp.MustCompile(`\.[A-Z2-7]{8}\.[a-z]+$`)

// Middleware wraps a handler
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one is the outermost
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestLogger stores logger in the request context and logs every request once it completes
func RequestLogger(logger zerolog.Logger) Middleware {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("http request")
	})

	return func(next http.Handler) http.Handler {
		return hlog.NewHandler(logger)(hlog.RemoteAddrHandler("remote_addr")(access(next)))
	}
}

// Compress gzips responses for clients that accept it
func Compress() Middleware {
	return func(next http.Handler) http.Handler {
		return gzhttp.GzipHandler(next)
	}
}

// CORS allows cross origin GET requests from the given origins, so a site
// served elsewhere can load the assets during development
func CORS(allowedOrigins []string) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	})
	return c.Handler
}

// Static serves the files in dir below prefix. Content hashed files are cached
// forever, everything else must be revalidated.
func Static(prefix, dir string) http.Handler {
	files := http.StripPrefix(StaticPrefix(prefix), http.FileServer(http.Dir(dir)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedAsset.MatchString(path.Base(r.URL.Path)) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	})
}

// StaticPrefix returns the mux pattern matching Static's prefix
func StaticPrefix(prefix string) string {
	p := "/" + strings.Trim(prefix, "/") + "/"
	if p == "//" {
		return "/"
	}
	return p
}
