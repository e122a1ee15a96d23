// internal/service/printer_service_test.go
package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/repository"
	"print-service/internal/routing"
)

// fakeCategoryRepo serves categories from memory
type fakeCategoryRepo struct {
	categories []model.Category
}

func (f *fakeCategoryRepo) GetByBranch(ctx context.Context, branchID uuid.UUID) ([]model.Category, error) {
	var out []model.Category
	for _, c := range f.categories {
		if c.BranchID == branchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) AssignPrinter(ctx context.Context, categoryID uuid.UUID, printerID uuid.UUID) error {
	for i := range f.categories {
		if f.categories[i].ID == categoryID {
			id := printerID
			f.categories[i].PrinterID = &id
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", categoryID, repository.ErrNotFound)
}

func newTestPrinterService(printers *fakePrinterRepo, categories *fakeCategoryRepo) *PrinterService {
	return NewPrinterService(printers, categories, zap.NewNop())
}

func TestListEmptyBranchID(t *testing.T) {
	repo := &fakePrinterRepo{printers: []model.Printer{
		networkPrinter(uuid.New(), "Cocina"),
	}}
	svc := newTestPrinterService(repo, &fakeCategoryRepo{})

	printers, err := svc.List(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, printers)
}

func TestListReturnsBranchPrinters(t *testing.T) {
	branchID := uuid.New()
	repo := &fakePrinterRepo{printers: []model.Printer{
		networkPrinter(branchID, "Cocina"),
		networkPrinter(uuid.New(), "Otra Sucursal"),
	}}
	svc := newTestPrinterService(repo, &fakeCategoryRepo{})

	printers, err := svc.List(context.Background(), branchID)
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.Equal(t, "Cocina", printers[0].Name)
}

func TestSaveCreatesWithIDAndTimestamps(t *testing.T) {
	repo := &fakePrinterRepo{}
	svc := newTestPrinterService(repo, &fakeCategoryRepo{})

	printer := &model.Printer{
		BranchID:       uuid.New(),
		Name:           "Cocina",
		ConnectionType: model.ConnectionTypeNetwork,
		Address:        "192.168.1.50",
		Port:           9100,
	}

	require.NoError(t, svc.Save(context.Background(), printer))

	assert.NotEqual(t, uuid.Nil, printer.ID)
	assert.False(t, printer.CreatedAt.IsZero())
	assert.Equal(t, 80, printer.PaperWidth)
	require.Len(t, repo.printers, 1)
}

func TestSaveUpdatesExisting(t *testing.T) {
	branchID := uuid.New()
	existing := networkPrinter(branchID, "Cocina")
	repo := &fakePrinterRepo{printers: []model.Printer{existing}}
	svc := newTestPrinterService(repo, &fakeCategoryRepo{})

	existing.Name = "Cocina Principal"
	require.NoError(t, svc.Save(context.Background(), &existing))

	stored, err := repo.GetByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cocina Principal", stored.Name)
}

func TestSaveRejectsInvalidPrinter(t *testing.T) {
	svc := newTestPrinterService(&fakePrinterRepo{}, &fakeCategoryRepo{})

	err := svc.Save(context.Background(), &model.Printer{
		BranchID:       uuid.New(),
		Name:           "Sin Dirección",
		ConnectionType: model.ConnectionTypeNetwork,
	})
	assert.Error(t, err)

	err = svc.Save(context.Background(), &model.Printer{
		Name:           "Sin Sucursal",
		ConnectionType: model.ConnectionTypeNetwork,
		Address:        "10.0.0.5",
	})
	assert.Error(t, err)
}

func TestDeleteMissingPrinter(t *testing.T) {
	svc := newTestPrinterService(&fakePrinterRepo{}, &fakeCategoryRepo{})

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAutoConfigureAssignsCategories(t *testing.T) {
	branchID := uuid.New()
	kitchen := networkPrinter(branchID, "Cocina")
	bar := networkPrinter(branchID, "Bar")

	printers := &fakePrinterRepo{printers: []model.Printer{kitchen, bar}}
	categories := &fakeCategoryRepo{categories: []model.Category{
		{ID: uuid.New(), BranchID: branchID, Name: "Entradas"},
		{ID: uuid.New(), BranchID: branchID, Name: "Bebidas"},
	}}

	svc := newTestPrinterService(printers, categories)

	plan, err := svc.AutoConfigure(context.Background(), branchID)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.UpdatedCount())

	require.NotNil(t, categories.categories[0].PrinterID)
	assert.Equal(t, kitchen.ID, *categories.categories[0].PrinterID)
	require.NotNil(t, categories.categories[1].PrinterID)
	assert.Equal(t, bar.ID, *categories.categories[1].PrinterID)
}

func TestAutoConfigureSecondRunIsEmpty(t *testing.T) {
	branchID := uuid.New()
	kitchen := networkPrinter(branchID, "Cocina")

	printers := &fakePrinterRepo{printers: []model.Printer{kitchen}}
	categories := &fakeCategoryRepo{categories: []model.Category{
		{ID: uuid.New(), BranchID: branchID, Name: "Postres"},
	}}

	svc := newTestPrinterService(printers, categories)

	plan, err := svc.AutoConfigure(context.Background(), branchID)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.UpdatedCount())

	plan, err = svc.AutoConfigure(context.Background(), branchID)
	require.NoError(t, err)
	assert.Equal(t, 0, plan.UpdatedCount())
}

func TestAutoConfigureNoPrinters(t *testing.T) {
	branchID := uuid.New()
	svc := newTestPrinterService(&fakePrinterRepo{}, &fakeCategoryRepo{
		categories: []model.Category{{ID: uuid.New(), BranchID: branchID, Name: "Entradas"}},
	})

	_, err := svc.AutoConfigure(context.Background(), branchID)
	assert.ErrorIs(t, err, routing.ErrNoPrinters)
}
