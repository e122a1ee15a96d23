// internal/routing/autoconfig.go
package routing

import (
	"errors"

	"github.com/google/uuid"

	"print-service/internal/model"
)

// ErrNoPrinters is returned when a branch has no configured printers, since
// no destination can be resolved for any category.
var ErrNoPrinters = errors.New("no printers configured for this branch")

// Assignment is one planned category→printer update
type Assignment struct {
	CategoryID   uuid.UUID   `json:"category_id"`
	CategoryName string      `json:"category_name"`
	Destination  Destination `json:"destination"`
	PrinterID    uuid.UUID   `json:"printer_id"`
	PrinterName  string      `json:"printer_name"`
}

// Plan is the outcome of one auto-configure pass
type Plan struct {
	Assignments []Assignment `json:"assignments"`
	Skipped     int          `json:"skipped"`
}

// UpdatedCount returns the number of assignments the plan would apply
func (p *Plan) UpdatedCount() int {
	return len(p.Assignments)
}

// AutoConfigure computes the category→printer assignments suggested by the
// keyword heuristics. Pure planning over the given snapshots; the caller
// persists the assignments. Idempotent: planning again over applied data
// yields an empty plan.
func AutoConfigure(categories []model.Category, printers []model.Printer) (*Plan, error) {
	if len(printers) == 0 {
		return nil, ErrNoPrinters
	}

	plan := &Plan{}

	for _, category := range categories {
		dest := DestinationFor(category.Name)

		printer, ok := PrinterFor(dest, printers)
		if !ok {
			// No printer serves this area; the category keeps its current
			// assignment (or stays unassigned, which means "no printing").
			plan.Skipped++
			continue
		}

		if category.PrinterID != nil && *category.PrinterID == printer.ID {
			continue
		}

		plan.Assignments = append(plan.Assignments, Assignment{
			CategoryID:   category.ID,
			CategoryName: category.Name,
			Destination:  dest,
			PrinterID:    printer.ID,
			PrinterName:  printer.Name,
		})
	}

	return plan, nil
}
