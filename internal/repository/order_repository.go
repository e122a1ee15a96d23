// internal/repository/order_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/database"
	"print-service/internal/model"
)

// orderRepository implements OrderRepository interface
type orderRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.DB, logger *zap.Logger) OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an order with its items. Item category names are
// resolved in the same query so the router never needs a second lookup.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT o.id, o.branch_id, o.table_name, o.area_name, o.waiter_name,
			   o.total_amount, o.created_at
		FROM orders o WHERE o.id = $1
	`

	order := &model.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.BranchID, &order.TableName, &order.AreaName,
		&order.WaiterName, &order.TotalAmount, &order.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		r.logger.Error("Failed to get order", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) getItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_name, COALESCE(c.name, ''),
			   i.quantity, i.unit_price, i.notes
		FROM order_items i
		LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.order_id = $1
		ORDER BY i.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to list order items", zap.Error(err), zap.String("order_id", orderID.String()))
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductName, &item.CategoryName,
			&item.Quantity, &item.UnitPrice, &item.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return items, nil
}
