package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidDate        = "invalid_date"
	codeInvalidID          = "invalid_id"
	codeEventNameRequired  = "event_name_required"
	codeEventNotFound      = "event_not_found"
	codeInvalidPrice       = "invalid_unit_price"
	codeInvalidQuantity    = "invalid_quantity"
	codeTitulaireRequired  = "titulaire_required"
	codeTicketNotFound     = "ticket_not_found"
	codeTicketConflict     = "ticket_conflict"
	codeEncodingFailed     = "encoding_failed"
	codeDocumentFailed     = "document_failed"
	codeSequencerExhausted = "sequencer_exhausted"
	codeNotReady           = "not_ready"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// serviceErrors maps domain errors to responses. Order matters: the first
// match wins.
var serviceErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrEventNameRequired, http.StatusBadRequest, codeEventNameRequired},
	{domain.ErrInvalidPrice, http.StatusBadRequest, codeInvalidPrice},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, codeInvalidQuantity},
	{domain.ErrTitulaireRequired, http.StatusBadRequest, codeTitulaireRequired},
	{domain.ErrInvalidID, http.StatusNotFound, codeInvalidID},
	{domain.ErrEventNotFound, http.StatusNotFound, codeEventNotFound},
	{domain.ErrTicketNotFound, http.StatusNotFound, codeTicketNotFound},
	{domain.ErrTicketExists, http.StatusConflict, codeTicketConflict},
	{domain.ErrEncoding, http.StatusInternalServerError, codeEncodingFailed},
	{domain.ErrDocument, http.StatusInternalServerError, codeDocumentFailed},
	{domain.ErrSequencerOverflow, http.StatusServiceUnavailable, codeSequencerExhausted},
}

// writeServiceError answers with the mapping of err. Server side failures
// keep their detail out of the body.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
