// internal/service/printer_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/repository"
	"print-service/internal/routing"
)

// PrinterService manages printer configuration and category routing setup
type PrinterService struct {
	printers   repository.PrinterRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
}

// NewPrinterService creates a new printer service
func NewPrinterService(
	printers repository.PrinterRepository,
	categories repository.CategoryRepository,
	logger *zap.Logger,
) *PrinterService {
	return &PrinterService{
		printers:   printers,
		categories: categories,
		logger:     logger,
	}
}

// List returns the printers of a branch. A zero branch id yields an empty
// list without touching the store; callers probing before branch selection
// get a cheap, harmless answer.
func (s *PrinterService) List(ctx context.Context, branchID uuid.UUID) ([]model.Printer, error) {
	if branchID == uuid.Nil {
		return []model.Printer{}, nil
	}

	printers, err := s.printers.GetByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if printers == nil {
		printers = []model.Printer{}
	}
	return printers, nil
}

// Get returns one printer by id
func (s *PrinterService) Get(ctx context.Context, id uuid.UUID) (*model.Printer, error) {
	return s.printers.GetByID(ctx, id)
}

// Save validates and persists a printer. A zero id means create; otherwise
// the existing row is updated.
func (s *PrinterService) Save(ctx context.Context, printer *model.Printer) error {
	if err := printer.Validate(); err != nil {
		return fmt.Errorf("invalid printer: %w", err)
	}
	if printer.BranchID == uuid.Nil {
		return fmt.Errorf("invalid printer: branch id is required")
	}

	if printer.PaperWidth == 0 {
		printer.PaperWidth = 80
	}

	now := time.Now()
	if printer.ID == uuid.Nil {
		printer.ID = uuid.New()
		printer.CreatedAt = now
		printer.UpdatedAt = now
		return s.printers.Create(ctx, printer)
	}

	printer.UpdatedAt = now
	return s.printers.Update(ctx, printer)
}

// Delete removes a printer
func (s *PrinterService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.printers.Delete(ctx, id)
}

// AutoConfigure plans and applies keyword-based category→printer
// assignments for a branch, returning the applied plan
func (s *PrinterService) AutoConfigure(ctx context.Context, branchID uuid.UUID) (*routing.Plan, error) {
	printers, err := s.printers.GetByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.GetByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	plan, err := routing.AutoConfigure(categories, printers)
	if err != nil {
		return nil, err
	}

	for _, assignment := range plan.Assignments {
		if err := s.categories.AssignPrinter(ctx, assignment.CategoryID, assignment.PrinterID); err != nil {
			return nil, fmt.Errorf("failed to apply assignment for %q: %w", assignment.CategoryName, err)
		}

		if assignment.Destination == routing.DestinationKitchen {
			if _, named := routing.NamedPrinterFor(routing.DestinationKitchen, printers); !named {
				s.logger.Warn("Kitchen category assigned via first-printer fallback",
					zap.String("category", assignment.CategoryName),
					zap.String("printer", assignment.PrinterName),
				)
			}
		}
	}

	s.logger.Info("Auto-configure applied",
		zap.String("branch_id", branchID.String()),
		zap.Int("updated", plan.UpdatedCount()),
		zap.Int("skipped", plan.Skipped),
	)

	return plan, nil
}
