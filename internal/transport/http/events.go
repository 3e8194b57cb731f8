package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/app"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// EventService is the minimal interface needed for event endpoints.
type EventService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
}

// HandleCreateEvent returns an HTTP handler for event creation.
func HandleCreateEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, codeEventNameRequired, domain.ErrEventNameRequired.Error())
			return
		}

		var date *time.Time
		if req.Date != "" {
			parsed, err := parseEventDate(req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid date format")
				return
			}
			date = &parsed
		}

		event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
			Name:      req.Name,
			Date:      date,
			UnitPrice: req.UnitPrice,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEventResponse(event))
	}
}

// HandleListEvents returns an HTTP handler listing events.
func HandleListEvents(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := make([]eventResponse, 0, len(events))
		for _, event := range events {
			resp = append(resp, newEventResponse(event))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleGetEvent returns an HTTP handler for a single event.
func HandleGetEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

// parseEventDate accepts RFC 3339 timestamps or plain dates.
func parseEventDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type createEventRequest struct {
	Name      string          `json:"name"`
	Date      string          `json:"date,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type eventResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Date          time.Time `json:"date"`
	FormattedDate string    `json:"formatted_date"`
	UnitPrice     string    `json:"unit_price"`
}

func newEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:            e.ID,
		Name:          e.Name,
		Date:          e.Date,
		FormattedDate: e.FormattedDate(),
		UnitPrice:     e.UnitPrice.StringFixed(2),
	}
}
