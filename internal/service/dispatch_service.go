// internal/service/dispatch_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/escpos"
	"print-service/internal/model"
	"print-service/internal/repository"
	"print-service/internal/routing"
	"print-service/internal/transport"
)

// PayloadSender delivers a formatted payload to a printer. Satisfied by
// transport.Sender; tests substitute an in-memory fake.
type PayloadSender interface {
	Send(ctx context.Context, printer *model.Printer, payload []byte) transport.Result
}

// RelayForwarder forwards payloads through a remote print bridge
type RelayForwarder interface {
	PrintRaw(ctx context.Context, printer *model.Printer, payload []byte) error
}

// JobPublisher receives finished print jobs for live streaming
type JobPublisher interface {
	PublishJob(job *model.PrintJob)
}

// DispatchService orchestrates document generation, routing and delivery.
// One print request to a failing printer never aborts the others; every
// attempt degrades to a recorded job with Success=false.
type DispatchService struct {
	orders   repository.OrderRepository
	printers repository.PrinterRepository
	sender   PayloadSender
	relay    RelayForwarder
	config   *config.PrintingConfig
	logger   *zap.Logger

	publisher JobPublisher

	historyMutex sync.Mutex
	history      []model.PrintJob
}

// NewDispatchService creates a dispatch service. relay may be nil; when set
// it takes precedence over direct transport delivery.
func NewDispatchService(
	orders repository.OrderRepository,
	printers repository.PrinterRepository,
	sender PayloadSender,
	relay RelayForwarder,
	cfg *config.PrintingConfig,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		orders:   orders,
		printers: printers,
		sender:   sender,
		relay:    relay,
		config:   cfg,
		logger:   logger,
	}
}

// SetJobPublisher wires the live job stream. Must be called before serving
// requests.
func (s *DispatchService) SetJobPublisher(publisher JobPublisher) {
	s.publisher = publisher
}

// GenerateComandas groups an order's items by production area. Items of
// unknown categories land on the kitchen comanda; areas with no items get
// no comanda at all.
func (s *DispatchService) GenerateComandas(order *model.Order, priority bool) map[routing.Destination]*model.Comanda {
	comandas := make(map[routing.Destination]*model.Comanda)

	for _, item := range order.Items {
		dest := routing.DestinationFor(item.CategoryName)

		comanda, ok := comandas[dest]
		if !ok {
			comanda = &model.Comanda{
				ID:        uuid.New(),
				OrderID:   order.ID,
				TableName: order.TableName,
				AreaName:  order.AreaName,
				AreaLabel: dest.Label(),
				CreatedAt: time.Now(),
				Priority:  priority,
			}
			comandas[dest] = comanda
		}

		comanda.Items = append(comanda.Items, model.ComandaItem{
			ProductName:  item.ProductName,
			CategoryName: item.CategoryName,
			Quantity:     item.Quantity,
			Notes:        item.Notes,
		})
	}

	return comandas
}

// BuildTicket assembles the customer receipt for an order. The order total
// is tax-inclusive; subtotal and tax are derived from it.
func (s *DispatchService) BuildTicket(order *model.Order) *model.Ticket {
	subtotal, tax := splitTax(order.TotalAmount, s.config.TaxRate)

	ticket := &model.Ticket{
		OrderID:    order.ID,
		TableName:  order.TableName,
		WaiterName: order.WaiterName,
		Subtotal:   subtotal,
		TaxAmount:  tax,
		TaxLabel:   s.config.TaxLabel,
		Total:      order.TotalAmount,
		CreatedAt:  time.Now(),
	}

	for _, item := range order.Items {
		ticket.Lines = append(ticket.Lines, model.TicketLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	return ticket
}

// PrintComandas prints one comanda per production area that has items.
// The returned map reports per-area success: a destination whose printer
// is missing or failing maps to false while the rest still print.
func (s *DispatchService) PrintComandas(ctx context.Context, orderID uuid.UUID, priority bool) (map[routing.Destination]bool, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order for comandas: %w", err)
	}

	printers, err := s.printers.GetByBranch(ctx, order.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch printers: %w", err)
	}

	comandas := s.GenerateComandas(order, priority)

	results := make(map[routing.Destination]bool, len(comandas))
	var (
		resultsMutex sync.Mutex
		wg           sync.WaitGroup
	)

	for dest, comanda := range comandas {
		printer, ok := routing.PrinterFor(dest, printers)
		if !ok {
			s.logger.Warn("No printer serves production area",
				zap.String("destination", string(dest)),
				zap.String("order_id", orderID.String()),
			)
			s.recordJob("", string(dest), transport.Result{Message: "no printer configured"})
			resultsMutex.Lock()
			results[dest] = false
			resultsMutex.Unlock()
			continue
		}

		wg.Add(1)
		go func(dest routing.Destination, printer *model.Printer, comanda *model.Comanda) {
			defer wg.Done()

			payload := escpos.FormatComanda(comanda, s.settingsFor(printer))
			result := s.deliver(ctx, printer, payload)
			s.recordJob(printer.Name, string(dest), result)

			resultsMutex.Lock()
			results[dest] = result.Success
			resultsMutex.Unlock()
		}(dest, printer, comanda)
	}

	wg.Wait()
	return results, nil
}

// PrintTicket prints the customer receipt on the branch's general printer
func (s *DispatchService) PrintTicket(ctx context.Context, orderID uuid.UUID) (*model.PrintJob, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order for ticket: %w", err)
	}

	printers, err := s.printers.GetByBranch(ctx, order.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch printers: %w", err)
	}

	printer, ok := routing.GeneralPrinter(printers)
	if !ok {
		job := s.recordJob("", "", transport.Result{Message: "no printer configured"})
		return job, nil
	}

	ticket := s.BuildTicket(order)
	payload := escpos.FormatTicket(ticket, s.settingsFor(printer))

	result := s.deliver(ctx, printer, payload)
	return s.recordJob(printer.Name, "", result), nil
}

// TestPrinter prints a connectivity test page on one printer
func (s *DispatchService) TestPrinter(ctx context.Context, printerID uuid.UUID) (*model.PrintJob, error) {
	printer, err := s.printers.GetByID(ctx, printerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load printer: %w", err)
	}

	payload := escpos.FormatTestPage(printer.Name, time.Now(), s.settingsFor(printer))

	result := s.deliver(ctx, printer, payload)
	return s.recordJob(printer.Name, "", result), nil
}

// PrintRaw delivers a caller-built payload to an explicit printer. Serves
// the bridge endpoint where a remote service has already formatted the
// bytes.
func (s *DispatchService) PrintRaw(ctx context.Context, printer *model.Printer, payload []byte) *model.PrintJob {
	result := s.deliver(ctx, printer, payload)
	return s.recordJob(printer.Name, "", result)
}

// History returns recorded print jobs, most recent first
func (s *DispatchService) History() []model.PrintJob {
	s.historyMutex.Lock()
	defer s.historyMutex.Unlock()

	jobs := make([]model.PrintJob, len(s.history))
	copy(jobs, s.history)
	return jobs
}

// deliver sends a payload directly or through the configured bridge
func (s *DispatchService) deliver(ctx context.Context, printer *model.Printer, payload []byte) transport.Result {
	if s.relay != nil {
		start := time.Now()
		if err := s.relay.PrintRaw(ctx, printer, payload); err != nil {
			return transport.Result{Message: err.Error(), Err: err, Duration: time.Since(start)}
		}
		return transport.Result{Success: true, Message: "printed via bridge", Duration: time.Since(start)}
	}

	return s.sender.Send(ctx, printer, payload)
}

// settingsFor builds the rendering settings for one printer
func (s *DispatchService) settingsFor(printer *model.Printer) escpos.Settings {
	return escpos.Settings{
		BusinessName:   s.config.BusinessName,
		FooterMessage:  s.config.FooterMessage,
		CurrencySymbol: s.config.CurrencySymbol,
		Width:          escpos.WidthForPaper(printer.PaperWidth),
	}
}

// recordJob appends a job to the bounded history and publishes it
func (s *DispatchService) recordJob(printerName, destination string, result transport.Result) *model.PrintJob {
	job := &model.PrintJob{
		ID:          uuid.New(),
		PrinterName: printerName,
		Destination: destination,
		Success:     result.Success,
		Message:     result.Message,
		Timestamp:   time.Now(),
	}

	limit := s.config.HistorySize
	if limit <= 0 {
		limit = 50
	}

	s.historyMutex.Lock()
	s.history = append([]model.PrintJob{*job}, s.history...)
	if len(s.history) > limit {
		s.history = s.history[:limit]
	}
	s.historyMutex.Unlock()

	if s.publisher != nil {
		s.publisher.PublishJob(job)
	}

	return job
}

// splitTax derives the pre-tax subtotal and tax amount from a
// tax-inclusive total
func splitTax(total decimal.Decimal, rate float64) (subtotal, tax decimal.Decimal) {
	if rate <= 0 {
		return total, decimal.Zero
	}

	divisor := decimal.NewFromFloat(1).Add(decimal.NewFromFloat(rate))
	subtotal = total.Div(divisor).Round(2)
	tax = total.Sub(subtotal)
	return subtotal, tax
}
