package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"morph-server/internal/http/handlers"
	"morph-server/internal/infra"
	mw "morph-server/internal/middleware"
)

// A morph run holds two model calls open for minutes, so the per-IP budget
// stays deliberately small.
const (
	morphRateLimit  = 10
	morphRateWindow = time.Minute
)

type Options struct {
	Logger         infra.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  mw.CountryLookup
	// StaticDir enables the /static file server over the local storage root;
	// empty disables it (S3 deployments serve assets themselves).
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		mw.RequestID,
		mw.Logger(opts.Logger),
		chimw.Recoverer,
		mw.CORS(opts.AllowedOrigins),
		mw.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/morphs", func(r chi.Router) {
		r.With(mw.RateLimit(morphRateLimit, morphRateWindow)).Post("/", app.CreateMorph)
	})

	r.Route("/v1/runs", func(r chi.Router) {
		r.Get("/", app.ListRuns)
		r.Get("/{id}", app.GetRun)
	})

	if opts.StaticDir != "" {
		fileServer := stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.Dir(opts.StaticDir)))
		r.Get("/static/*", fileServer.ServeHTTP)
	}

	return r
}
