// internal/service/dispatch_service_test.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
	"print-service/internal/repository"
	"print-service/internal/routing"
	"print-service/internal/transport"
)

// fakeOrderRepo serves orders from memory
type fakeOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, repository.ErrNotFound)
	}
	return order, nil
}

// fakePrinterRepo serves printers from memory
type fakePrinterRepo struct {
	printers []model.Printer
}

func (f *fakePrinterRepo) Create(ctx context.Context, p *model.Printer) error {
	f.printers = append(f.printers, *p)
	return nil
}

func (f *fakePrinterRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Printer, error) {
	for i := range f.printers {
		if f.printers[i].ID == id {
			return &f.printers[i], nil
		}
	}
	return nil, fmt.Errorf("printer %s: %w", id, repository.ErrNotFound)
}

func (f *fakePrinterRepo) GetByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Printer, error) {
	var out []model.Printer
	for _, p := range f.printers {
		if p.BranchID == branchID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrinterRepo) Update(ctx context.Context, p *model.Printer) error {
	for i := range f.printers {
		if f.printers[i].ID == p.ID {
			f.printers[i] = *p
			return nil
		}
	}
	return fmt.Errorf("printer %s: %w", p.ID, repository.ErrNotFound)
}

func (f *fakePrinterRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range f.printers {
		if f.printers[i].ID == id {
			f.printers = append(f.printers[:i], f.printers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("printer %s: %w", id, repository.ErrNotFound)
}

// fakeSender records deliveries and fails for configured printer names
type fakeSender struct {
	mutex   sync.Mutex
	sent    map[string][]byte
	failFor map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		sent:    make(map[string][]byte),
		failFor: make(map[string]bool),
	}
}

func (f *fakeSender) Send(ctx context.Context, printer *model.Printer, payload []byte) transport.Result {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.failFor[printer.Name] {
		err := errors.New("connection refused")
		return transport.Result{Message: err.Error(), Err: err}
	}

	f.sent[printer.Name] = append([]byte(nil), payload...)
	return transport.Result{Success: true, Message: "printed"}
}

func (f *fakeSender) payloadFor(name string) []byte {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.sent[name]
}

func testConfig() *config.PrintingConfig {
	return &config.PrintingConfig{
		BusinessName:   "La Terraza",
		FooterMessage:  "¡Gracias por su visita!",
		CurrencySymbol: "$",
		TaxRate:        0.16,
		TaxLabel:       "IVA",
		HistorySize:    50,
	}
}

func networkPrinter(branchID uuid.UUID, name string) model.Printer {
	return model.Printer{
		ID:             uuid.New(),
		BranchID:       branchID,
		Name:           name,
		ConnectionType: model.ConnectionTypeNetwork,
		Address:        "192.168.1.100",
		Port:           9100,
		PaperWidth:     80,
	}
}

func newTestDispatch(orders *fakeOrderRepo, printers *fakePrinterRepo, sender *fakeSender) *DispatchService {
	return NewDispatchService(orders, printers, sender, nil, testConfig(), zap.NewNop())
}

func TestPrintComandasRoutesByCategory(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()

	orders := &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{
		orderID: {
			ID:        orderID,
			BranchID:  branchID,
			TableName: "Mesa 3",
			Items: []model.OrderItem{
				{ProductName: "Taco de Asada", CategoryName: "Tacos", Quantity: 2},
				{ProductName: "Cerveza Clara", CategoryName: "Bebidas", Quantity: 1},
			},
		},
	}}
	printers := &fakePrinterRepo{printers: []model.Printer{
		networkPrinter(branchID, "Cocina"),
		networkPrinter(branchID, "Bar"),
	}}
	sender := newFakeSender()

	svc := newTestDispatch(orders, printers, sender)

	results, err := svc.PrintComandas(context.Background(), orderID, false)
	require.NoError(t, err)

	assert.Equal(t, map[routing.Destination]bool{
		routing.DestinationKitchen: true,
		routing.DestinationBar:     true,
	}, results)

	// Kitchen comanda carries the taco, bar comanda the beer
	assert.Contains(t, string(sender.payloadFor("Cocina")), "Taco de Asada")
	assert.NotContains(t, string(sender.payloadFor("Cocina")), "Cerveza")
	assert.Contains(t, string(sender.payloadFor("Bar")), "Cerveza Clara")
}

func TestPrintComandasPartialFailure(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()

	orders := &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{
		orderID: {
			ID:       orderID,
			BranchID: branchID,
			Items: []model.OrderItem{
				{ProductName: "Sopa Azteca", CategoryName: "Sopas", Quantity: 1},
				{ProductName: "Mojito", CategoryName: "Cocteles", Quantity: 2},
			},
		},
	}}
	printers := &fakePrinterRepo{printers: []model.Printer{
		networkPrinter(branchID, "Cocina"),
		networkPrinter(branchID, "Bar"),
	}}
	sender := newFakeSender()
	sender.failFor["Bar"] = true

	svc := newTestDispatch(orders, printers, sender)

	results, err := svc.PrintComandas(context.Background(), orderID, false)
	require.NoError(t, err)

	assert.True(t, results[routing.DestinationKitchen])
	assert.False(t, results[routing.DestinationBar])

	// Both attempts are in the history, the failure with its message
	history := svc.History()
	require.Len(t, history, 2)

	var failed *model.PrintJob
	for i := range history {
		if !history[i].Success {
			failed = &history[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "Bar", failed.PrinterName)
	assert.Contains(t, failed.Message, "connection refused")
}

func TestPrintComandasMissingPrinterIsFalseNotError(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()

	orders := &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{
		orderID: {
			ID:       orderID,
			BranchID: branchID,
			Items: []model.OrderItem{
				{ProductName: "Arrachera", CategoryName: "Parrilla", Quantity: 1},
			},
		},
	}}
	// Only a bar printer; the grill area has no printer and no fallback
	printers := &fakePrinterRepo{printers: []model.Printer{
		networkPrinter(branchID, "Bar"),
	}}
	sender := newFakeSender()

	svc := newTestDispatch(orders, printers, sender)

	results, err := svc.PrintComandas(context.Background(), orderID, false)
	require.NoError(t, err)

	assert.False(t, results[routing.DestinationGrill])
}

func TestPrintComandasUnknownOrder(t *testing.T) {
	orders := &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{}}
	printers := &fakePrinterRepo{}
	svc := newTestDispatch(orders, printers, newFakeSender())

	_, err := svc.PrintComandas(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPrintComandasPriority(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()

	orders := &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{
		orderID: {
			ID:       orderID,
			BranchID: branchID,
			Items: []model.OrderItem{
				{ProductName: "Enchiladas", CategoryName: "Platillos", Quantity: 1},
			},
		},
	}}
	printers := &fakePrinterRepo{printers: []model.Printer{
		networkPrinter(branchID, "Cocina"),
	}}
	sender := newFakeSender()

	svc := newTestDispatch(orders, printers, sender)

	_, err := svc.PrintComandas(context.Background(), orderID, true)
	require.NoError(t, err)

	assert.Contains(t, string(sender.payloadFor("Cocina")), "URGENTE")
}

func TestBuildTicketSplitsTax(t *testing.T) {
	svc := newTestDispatch(&fakeOrderRepo{}, &fakePrinterRepo{}, newFakeSender())

	order := &model.Order{
		ID:          uuid.New(),
		TotalAmount: decimal.RequireFromString("116.00"),
	}

	ticket := svc.BuildTicket(order)

	assert.Equal(t, "100.00", ticket.Subtotal.StringFixed(2))
	assert.Equal(t, "16.00", ticket.TaxAmount.StringFixed(2))
	assert.Equal(t, "116.00", ticket.Total.StringFixed(2))
	assert.Equal(t, "IVA", ticket.TaxLabel)
}

func TestBuildTicketZeroRate(t *testing.T) {
	svc := newTestDispatch(&fakeOrderRepo{}, &fakePrinterRepo{}, newFakeSender())
	svc.config.TaxRate = 0

	order := &model.Order{TotalAmount: decimal.RequireFromString("50.00")}
	ticket := svc.BuildTicket(order)

	assert.Equal(t, "50.00", ticket.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", ticket.TaxAmount.StringFixed(2))
}

func TestPrintTicketUsesGeneralPrinter(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()

	orders := &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{
		orderID: {
			ID:          orderID,
			BranchID:    branchID,
			TableName:   "Mesa 7",
			WaiterName:  "Ana",
			TotalAmount: decimal.RequireFromString("232.00"),
			Items: []model.OrderItem{
				{ProductName: "Parrillada", CategoryName: "Parrilla", Quantity: 1, UnitPrice: decimal.RequireFromString("232.00")},
			},
		},
	}}
	printers := &fakePrinterRepo{printers: []model.Printer{
		networkPrinter(branchID, "Cocina"),
		networkPrinter(branchID, "Caja"),
	}}
	sender := newFakeSender()

	svc := newTestDispatch(orders, printers, sender)

	job, err := svc.PrintTicket(context.Background(), orderID)
	require.NoError(t, err)

	assert.True(t, job.Success)
	assert.Equal(t, "Caja", job.PrinterName)

	payload := string(sender.payloadFor("Caja"))
	assert.Contains(t, payload, "TOTAL: $232.00")
	assert.Contains(t, payload, "SUBTOTAL: $200.00")
	assert.Contains(t, payload, "IVA: $32.00")
}

func TestPrintTicketNoPrinters(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()

	orders := &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{
		orderID: {ID: orderID, BranchID: branchID, TotalAmount: decimal.RequireFromString("10.00")},
	}}
	svc := newTestDispatch(orders, &fakePrinterRepo{}, newFakeSender())

	job, err := svc.PrintTicket(context.Background(), orderID)
	require.NoError(t, err)

	assert.False(t, job.Success)
	assert.Contains(t, job.Message, "no printer configured")
}

func TestTestPrinter(t *testing.T) {
	branchID := uuid.New()
	printer := networkPrinter(branchID, "Cocina")

	printers := &fakePrinterRepo{printers: []model.Printer{printer}}
	sender := newFakeSender()

	svc := newTestDispatch(&fakeOrderRepo{}, printers, sender)

	job, err := svc.TestPrinter(context.Background(), printer.ID)
	require.NoError(t, err)

	assert.True(t, job.Success)
	assert.Contains(t, string(sender.payloadFor("Cocina")), "PRUEBA DE IMPRESIÓN")
}

func TestTestPrinterUnknownID(t *testing.T) {
	svc := newTestDispatch(&fakeOrderRepo{}, &fakePrinterRepo{}, newFakeSender())

	_, err := svc.TestPrinter(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHistoryIsBoundedMostRecentFirst(t *testing.T) {
	branchID := uuid.New()
	printer := networkPrinter(branchID, "Cocina")

	printers := &fakePrinterRepo{printers: []model.Printer{printer}}
	sender := newFakeSender()

	svc := newTestDispatch(&fakeOrderRepo{}, printers, sender)
	svc.config.HistorySize = 5

	for i := 0; i < 8; i++ {
		_, err := svc.TestPrinter(context.Background(), printer.ID)
		require.NoError(t, err)
	}

	history := svc.History()
	require.Len(t, history, 5)

	// Most recent first
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.After(history[i-1].Timestamp))
	}
}

// collectingPublisher records published jobs
type collectingPublisher struct {
	mutex sync.Mutex
	jobs  []*model.PrintJob
}

func (c *collectingPublisher) PublishJob(job *model.PrintJob) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.jobs = append(c.jobs, job)
}

func TestJobsArePublished(t *testing.T) {
	branchID := uuid.New()
	printer := networkPrinter(branchID, "Cocina")

	printers := &fakePrinterRepo{printers: []model.Printer{printer}}
	svc := newTestDispatch(&fakeOrderRepo{}, printers, newFakeSender())

	publisher := &collectingPublisher{}
	svc.SetJobPublisher(publisher)

	_, err := svc.TestPrinter(context.Background(), printer.ID)
	require.NoError(t, err)

	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()
	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, "Cocina", publisher.jobs[0].PrinterName)
}
