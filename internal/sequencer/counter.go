// Package sequencer issues ticket numbers.
package sequencer

import (
	"context"
	"sync/atomic"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
)

// Counter is an in-process sequencer. Numbers start at 1 and are contiguous.
type Counter struct {
	last atomic.Uint64
}

// NewCounter returns a counter whose first issued number is 1.
func NewCounter() *Counter {
	return &Counter{}
}

// NewCounterFrom returns a counter that continues after last.
func NewCounterFrom(last domain.TicketNumber) *Counter {
	c := &Counter{}
	c.last.Store(uint64(last))
	return c
}

// Next issues the next number. It never wraps: past domain.MaxTicketNumber
// every call returns domain.ErrSequencerOverflow.
func (c *Counter) Next(_ context.Context) (domain.TicketNumber, error) {
	for {
		prev := c.last.Load()
		if prev >= uint64(domain.MaxTicketNumber) {
			return 0, domain.ErrSequencerOverflow
		}
		if c.last.CompareAndSwap(prev, prev+1) {
			return domain.TicketNumber(prev + 1), nil
		}
	}
}

// Last returns the most recently issued number, zero if none.
func (c *Counter) Last() domain.TicketNumber {
	return domain.TicketNumber(c.last.Load())
}
