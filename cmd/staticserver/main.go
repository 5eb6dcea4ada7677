// A standalone read-only file server over the local storage root, for
// deployments where the API runs behind a chat frontend that cannot reach its
// /static mount directly. GET only, open CORS, caching disabled so freshly
// generated candidates show up immediately.
package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"morph-server/internal/infra"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("STATIC_PORT")
	if port == "" {
		port = "9098"
	}
	staticDir := os.Getenv("STORAGE_PATH")
	if staticDir == "" {
		staticDir = "./static"
	}
	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	fileServer := http.FileServer(http.Dir(staticDir))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		fileServer.ServeHTTP(w, r)
	})

	logger.Info().Msgf("static file server listening on :%s, serving %s", port, staticDir)
	if err := http.ListenAndServe(":"+port, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("static file server failed")
	}
}
