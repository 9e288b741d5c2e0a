package bootstrap

import (
	"net/http"
	"path/filepath"
)

// mediaRoute serves the loaded media file to the webview video element.
const mediaRoute = "/media"

// assetHandler serves mediaRoute and passes everything else to fallback. Only
// the file currently loaded in the player is served.
func (a *App) assetHandler(fallback http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(mediaRoute, func(w http.ResponseWriter, r *http.Request) {
		requested := r.URL.Query().Get("path")
		loaded := a.Player.MediaPath()
		if requested == "" || loaded == "" || filepath.Clean(requested) != filepath.Clean(loaded) {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, loaded)
	})
	mux.Handle("/", fallback)
	return mux
}
