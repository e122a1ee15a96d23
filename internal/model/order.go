// internal/model/order.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the read model consumed from the POS store when printing
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BranchID    uuid.UUID       `json:"branch_id" db:"branch_id"`
	TableName   string          `json:"table_name" db:"table_name"`
	AreaName    string          `json:"area_name" db:"area_name"`
	WaiterName  string          `json:"waiter_name" db:"waiter_name"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Items       []OrderItem     `json:"items"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// OrderItem is one line of an order with its product and category names
// denormalized for routing and printing
type OrderItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrderID      uuid.UUID       `json:"order_id" db:"order_id"`
	ProductName  string          `json:"product_name" db:"product_name"`
	CategoryName string          `json:"category_name" db:"category_name"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	Notes        string          `json:"notes" db:"notes"`
}
