package routes

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/tailor-intake/app"
	"github.com/mbolis/tailor-intake/routes/middlewares"
)

const adminLoginPath = "/admin/login"

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.Route("/admin", func(r chi.Router) {
		r.With(middlewares.RedirectAuthenticated(app.TokenSecret, "/admin")).
			Get("/login", serveFile(filepath.Join(app.PrivateDir, "login.html")))
		r.With(middlewares.CookieAuth(app.BearerServer, adminLoginPath), middlewares.Admin(app.TokenSecret)).
			Handle("/*", servePrivateFiles("/admin", app.PrivateDir))
	})
	root.Mount("/", servePublicFiles(app.PublicDir))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/submit-intake", SubmitIntake(app))
	api.Post("/analyze-submission", AnalyzeSubmission(app))
	api.Post("/wizard", DriveWizard(app))
	api.Get("/intake/schema", IntakeSchema(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.TokenCookie, middlewares.Admin(app.TokenSecret))

		r.Get("/submissions", ListSubmissions(app))
		r.Get("/submissions/{id}", GetSubmission(app))
		r.Patch("/submissions/{id}", UpdateSubmissionStatus(app))
		r.Delete("/submissions/{id}", DeleteSubmission(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))
	api.Post("/logout", Logout(app))

	return api
}

func servePublicFiles(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}

func servePrivateFiles(path, dir string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir(dir)))
}

func serveFile(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}
}
