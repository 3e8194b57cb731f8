package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig holds what NewRouter needs to mount every endpoint.
type RouterConfig struct {
	Events      EventService
	Tickets     TicketService
	Logger      *slog.Logger
	CORSOrigins []string
	// Ready lists dependencies probed by /ready.
	Ready []Pinger
}

// NewRouter mounts the API routes behind request ids, request logging and
// CORS, outermost first.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", HealthHandler)
	r.Get("/ready", HandleReady(cfg.Ready...))

	r.Route("/events", func(r chi.Router) {
		r.Post("/", HandleCreateEvent(cfg.Events))
		r.Get("/", HandleListEvents(cfg.Events))
		r.Get("/{id}", HandleGetEvent(cfg.Events))
		r.Post("/{id}/tickets", HandleIssueTicket(cfg.Tickets))
	})
	r.Get("/tickets/{number}", HandleGetTicket(cfg.Tickets))

	var handler http.Handler = r
	handler = CORS(cfg.CORSOrigins, handler)
	handler = RequestLogger(handler, logger)
	return RequestID(handler)
}
