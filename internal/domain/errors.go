package domain

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventNameRequired = errors.New("event name required")
	ErrInvalidPrice      = errors.New("invalid unit price")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrTitulaireRequired = errors.New("titulaire required")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketExists      = errors.New("ticket number already recorded")
	ErrInvalidID         = errors.New("invalid id")
	ErrEncoding          = errors.New("matrix code encoding failed")
	ErrDocument          = errors.New("ticket document failed")
	ErrSequencerOverflow = errors.New("ticket sequencer exhausted")
)
