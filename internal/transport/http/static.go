package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler serves a single-page app from root, rewriting any path that does
// not match a file to index.html so client-side routing keeps working after a
// refresh or deep link.
func SPAHandler(root string) http.Handler {
	fileServer := http.FileServer(http.Dir(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := strings.TrimPrefix(requestPath(r), "/")
		full := filepath.Join(root, filepath.FromSlash(reqPath))

		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			r.URL.Path = "/"
		}
		fileServer.ServeHTTP(w, r)
	})
}

func requestPath(r *http.Request) string {
	p := r.URL.Path
	if p == "" {
		return "/"
	}
	return p
}
