// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"print-service/internal/model"
)

// ErrNotFound is returned when a requested row does not exist. Callers
// branch on it with errors.Is to distinguish absence from infrastructure
// failures.
var ErrNotFound = errors.New("record not found")

// PrinterRepository defines printer persistence operations
type PrinterRepository interface {
	Create(ctx context.Context, printer *model.Printer) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Printer, error)
	GetByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Printer, error)
	Update(ctx context.Context, printer *model.Printer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines category persistence operations
type CategoryRepository interface {
	GetByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Category, error)
	AssignPrinter(ctx context.Context, categoryID uuid.UUID, printerID uuid.UUID) error
}

// OrderRepository defines order read operations. Orders are written by the
// POS core; this service only reads them to build print documents.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
