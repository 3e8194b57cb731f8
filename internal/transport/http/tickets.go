package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/app"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/go-chi/chi/v5"
)

const ticketNumberHeader = "X-Ticket-Number"

// TicketService is the minimal interface needed for ticket endpoints.
type TicketService interface {
	IssueTicket(ctx context.Context, in app.IssueTicketInput) (app.IssueTicketResult, error)
	GetTicket(ctx context.Context, number domain.TicketNumber) (domain.Ticket, error)
}

// HandleIssueTicket returns an HTTP handler that sells seats for an event and
// answers with the PDF ticket.
func HandleIssueTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req issueTicketRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.IssueTicket(r.Context(), app.IssueTicketInput{
			EventID:   chi.URLParam(r, "id"),
			Titulaire: req.Titulaire,
			Seats:     req.NbPlaces,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		number := uint64(res.Ticket.Number)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ticket-%06d.pdf"`, number))
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Document)))
		w.Header().Set(ticketNumberHeader, strconv.FormatUint(number, 10))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(res.Document)
	}
}

// HandleGetTicket returns an HTTP handler for the record of an issued ticket.
func HandleGetTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 64)
		if err != nil || number == 0 {
			writeError(w, http.StatusNotFound, codeInvalidID, domain.ErrInvalidID.Error())
			return
		}

		ticket, err := svc.GetTicket(r.Context(), domain.TicketNumber(number))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketResponse{
			ID:        ticket.ID,
			Number:    uint64(ticket.Number),
			Label:     ticket.Number.Label(),
			EventID:   ticket.EventID,
			Titulaire: ticket.Titulaire,
			NbPlaces:  ticket.Seats,
			Total:     ticket.Total.StringFixed(2),
			IssuedAt:  ticket.IssuedAt,
		})
	}
}

type issueTicketRequest struct {
	Titulaire string `json:"titulaire"`
	NbPlaces  int    `json:"nb_places"`
}

type ticketResponse struct {
	ID        string    `json:"id"`
	Number    uint64    `json:"number"`
	Label     string    `json:"label"`
	EventID   string    `json:"event_id"`
	Titulaire string    `json:"titulaire"`
	NbPlaces  int       `json:"nb_places"`
	Total     string    `json:"total"`
	IssuedAt  time.Time `json:"issued_at"`
}
