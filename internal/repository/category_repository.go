// internal/repository/category_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/database"
	"print-service/internal/model"
)

// categoryRepository implements CategoryRepository interface
type categoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB, logger *zap.Logger) CategoryRepository {
	return &categoryRepository{
		db:     db,
		logger: logger,
	}
}

// GetByBranch retrieves all categories of a branch
func (r *categoryRepository) GetByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Category, error) {
	query := `
		SELECT id, branch_id, name, printer_id, created_at, updated_at
		FROM categories WHERE branch_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, branchID)
	if err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err), zap.String("branch_id", branchID.String()))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var category model.Category
		err := rows.Scan(
			&category.ID, &category.BranchID, &category.Name,
			&category.PrinterID, &category.CreatedAt, &category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// AssignPrinter points a category at a printer
func (r *categoryRepository) AssignPrinter(ctx context.Context, categoryID uuid.UUID, printerID uuid.UUID) error {
	query := `
		UPDATE categories SET printer_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, categoryID, printerID)
	if err != nil {
		r.logger.Error("Failed to assign printer to category",
			zap.Error(err),
			zap.String("category_id", categoryID.String()),
			zap.String("printer_id", printerID.String()),
		)
		return fmt.Errorf("failed to assign printer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}

	return nil
}
