// internal/repository/printer_repository.go
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

// printerRepository implements PrinterRepository interface
type printerRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPrinterRepository creates a new printer repository
func NewPrinterRepository(db *database.DB, logger *zap.Logger) PrinterRepository {
	return &printerRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new printer
func (r *printerRepository) Create(ctx context.Context, printer *model.Printer) error {
	query := `
		INSERT INTO printers (
			id, branch_id, name, connection_type, ip_address, port,
			usb_vendor_id, usb_product_id, bluetooth_name, serial_port,
			baud_rate, paper_width, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		printer.ID, printer.BranchID, printer.Name, printer.ConnectionType,
		printer.Address, printer.Port, printer.USBVendorID, printer.USBProductID,
		printer.BluetoothName, printer.SerialPort, printer.BaudRate,
		printer.PaperWidth, printer.CreatedAt, printer.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create printer", zap.Error(err), zap.String("name", printer.Name))
		return fmt.Errorf("failed to create printer: %w", err)
	}

	r.logger.Info("Printer created successfully", zap.String("name", printer.Name))
	return nil
}

// GetByID retrieves a printer by its UUID
func (r *printerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Printer, error) {
	query := `
		SELECT id, branch_id, name, connection_type, ip_address, port,
			   usb_vendor_id, usb_product_id, bluetooth_name, serial_port,
			   baud_rate, paper_width, created_at, updated_at
		FROM printers WHERE id = $1
	`

	printer := &model.Printer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&printer.ID, &printer.BranchID, &printer.Name, &printer.ConnectionType,
		&printer.Address, &printer.Port, &printer.USBVendorID, &printer.USBProductID,
		&printer.BluetoothName, &printer.SerialPort, &printer.BaudRate,
		&printer.PaperWidth, &printer.CreatedAt, &printer.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("printer %s: %w", id, ErrNotFound)
		}
		r.logger.Error("Failed to get printer by ID", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get printer: %w", err)
	}

	return printer, nil
}

// GetByBranch retrieves all printers of a branch ordered by creation time
func (r *printerRepository) GetByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Printer, error) {
	query := `
		SELECT id, branch_id, name, connection_type, ip_address, port,
			   usb_vendor_id, usb_product_id, bluetooth_name, serial_port,
			   baud_rate, paper_width, created_at, updated_at
		FROM printers WHERE branch_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, branchID)
	if err != nil {
		r.logger.Error("Failed to list printers", zap.Error(err), zap.String("branch_id", branchID.String()))
		return nil, fmt.Errorf("failed to list printers: %w", err)
	}
	defer rows.Close()

	var printers []model.Printer
	for rows.Next() {
		var printer model.Printer
		err := rows.Scan(
			&printer.ID, &printer.BranchID, &printer.Name, &printer.ConnectionType,
			&printer.Address, &printer.Port, &printer.USBVendorID, &printer.USBProductID,
			&printer.BluetoothName, &printer.SerialPort, &printer.BaudRate,
			&printer.PaperWidth, &printer.CreatedAt, &printer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan printer: %w", err)
		}
		printers = append(printers, printer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate printers: %w", err)
	}

	return printers, nil
}

// Update updates an existing printer
func (r *printerRepository) Update(ctx context.Context, printer *model.Printer) error {
	query := `
		UPDATE printers SET
			name = $2, connection_type = $3, ip_address = $4, port = $5,
			usb_vendor_id = $6, usb_product_id = $7, bluetooth_name = $8,
			serial_port = $9, baud_rate = $10, paper_width = $11,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		printer.ID, printer.Name, printer.ConnectionType, printer.Address,
		printer.Port, printer.USBVendorID, printer.USBProductID,
		printer.BluetoothName, printer.SerialPort, printer.BaudRate,
		printer.PaperWidth,
	)

	if err != nil {
		r.logger.Error("Failed to update printer", zap.Error(err), zap.String("name", printer.Name))
		return fmt.Errorf("failed to update printer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("printer %s: %w", printer.ID, ErrNotFound)
	}

	r.logger.Debug("Printer updated successfully", zap.String("name", printer.Name))
	return nil
}

// Delete removes a printer; category assignments pointing at it are
// cleared by the schema's ON DELETE SET NULL
func (r *printerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM printers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete printer", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to delete printer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("printer %s: %w", id, ErrNotFound)
	}

	r.logger.Info("Printer deleted successfully", zap.String("id", id.String()))
	return nil
}
