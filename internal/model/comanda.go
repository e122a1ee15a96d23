// internal/model/comanda.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Comanda is an ephemeral production ticket for one kitchen/bar area.
// It is built fresh from the current order state for every print request,
// never mutated after construction, and discarded after the attempt.
type Comanda struct {
	ID        uuid.UUID     `json:"id"`
	OrderID   uuid.UUID     `json:"order_id"`
	TableName string        `json:"table_name"`
	AreaName  string        `json:"area_name"`
	AreaLabel string        `json:"area_label"`
	Items     []ComandaItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	Priority  bool          `json:"priority"`
}

// ComandaItem is one production line on a comanda
type ComandaItem struct {
	ProductName  string `json:"product_name"`
	CategoryName string `json:"category_name"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes"`
}

// Ticket is the ephemeral customer-facing receipt for one order
type Ticket struct {
	OrderID    uuid.UUID       `json:"order_id"`
	TableName  string          `json:"table_name"`
	WaiterName string          `json:"waiter_name"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	TaxLabel   string          `json:"tax_label"`
	Total      decimal.Decimal `json:"total"`
	Lines      []TicketLine    `json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TicketLine is one priced line on a customer ticket
type TicketLine struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PrintJob records the outcome of one transport attempt. Jobs are not
// persisted; a bounded most-recent-first history is kept for operators.
type PrintJob struct {
	ID          uuid.UUID `json:"id"`
	PrinterName string    `json:"printer_name"`
	Destination string    `json:"destination,omitempty"`
	Success     bool      `json:"success"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
