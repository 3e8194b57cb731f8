package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the fixed format used when an event date is printed.
const DateLayout = "02/01/2006"

// Event represents a sporting event tickets are sold for.
type Event struct {
	ID        string
	Name      string
	Date      time.Time
	UnitPrice decimal.Decimal
}

// FormattedDate renders the event date as dd/MM/yyyy.
func (e Event) FormattedDate() string {
	return e.Date.Format(DateLayout)
}
