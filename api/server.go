/*
server.go - HTTP server setup and routing

PURPOSE:
  Creates the chi router, registers middleware, and wires routes to
  handlers. Routing is the only concern here; behavior lives in
  handlers.go.

MIDDLEWARE STACK (order matters):
  1. RequestID - tags each request for log correlation
  2. RealIP    - honors X-Forwarded-For behind a proxy
  3. Logger    - request log line with status and latency
  4. Recoverer - panics become 500s instead of dropped connections
  5. CORS      - permissive for development; lock down in production

SEE ALSO:
  - handlers.go: The handlers being routed to
  - cmd/server/main.go: Server lifecycle
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP routing table for the given handler.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/batches", func(r chi.Router) {
			r.Get("/", h.ListBatches)
			r.Post("/", h.CreateBatch)
			r.Get("/summary", h.BatchSummary)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetBatch)
				r.Put("/", h.UpdateBatch)
				r.Delete("/", h.DeleteBatch)

				r.Post("/confirm", h.ConfirmBatch)
				r.Post("/revert", h.RevertBatch)
				r.Post("/pay", h.PayBatch)
				r.Post("/cancel", h.CancelBatch)

				r.Route("/session", func(r chi.Router) {
					r.Post("/", h.OpenSession)
					r.Get("/", h.GetSession)
					r.Delete("/", h.CloseSession)
					r.Post("/selection", h.UpdateSelection)
					r.Post("/activity", h.UpdateActivity)
					r.Post("/annual", h.UpdateAnnualRecord)
				})

				r.Get("/calculations", h.GetCalculations)
				r.Post("/commit", h.CommitBatch)
			})
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Get("/{id}", h.GetMember)
		})

		r.Get("/incidents", h.ListIncidents)
		r.Post("/withholding", h.PreviewWithholding)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
