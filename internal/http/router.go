package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookbot/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Identity handlers.IdentityService
	Library  handlers.LibraryService
	Health   *handlers.HealthHandler
	// BooksDir is ingested by an upload request without a file.
	BooksDir string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	authHandler := handlers.NewAuthHandler(deps.Identity)
	booksHandler := handlers.NewBooksHandler(deps.Library, deps.BooksDir)
	askHandler := handlers.NewAskHandler(deps.Library)

	health := deps.Health
	if health == nil {
		health = handlers.NewHealthHandler()
	}

	r.Method(http.MethodGet, "/health", health)
	r.Method(http.MethodGet, "/ask", askHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(deps.Identity))
			r.Get("/me", authHandler.Me)
			r.Post("/change-password", authHandler.ChangePassword)
			r.Delete("/deactivate", authHandler.Deactivate)
		})
	})

	r.Route("/books", func(r chi.Router) {
		r.Use(RequireAuth(deps.Identity))
		r.Post("/upload", booksHandler.Upload)
		r.Get("/", booksHandler.List)
		r.Delete("/{bookID}", booksHandler.Delete)
	})

	return r
}
