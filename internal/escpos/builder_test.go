// internal/escpos/builder_test.go
package escpos

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print-service/internal/model"
)

func testSettings() Settings {
	return Settings{
		BusinessName:   "La Terraza",
		FooterMessage:  "¡Gracias por su visita!",
		CurrencySymbol: "$",
		Width:          42,
	}
}

func testComanda() *model.Comanda {
	return &model.Comanda{
		ID:        uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		OrderID:   uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
		TableName: "Mesa 5",
		AreaName:  "Terraza",
		AreaLabel: "COCINA",
		CreatedAt: time.Date(2025, 3, 14, 13, 45, 0, 0, time.UTC),
		Items: []model.ComandaItem{
			{ProductName: "Tacos al Pastor", CategoryName: "Tacos", Quantity: 3, Notes: "sin cebolla"},
			{ProductName: "Quesadilla", CategoryName: "Antojitos", Quantity: 1},
		},
	}
}

func testTicket() *model.Ticket {
	return &model.Ticket{
		OrderID:    uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
		TableName:  "Mesa 5",
		WaiterName: "Carlos",
		Subtotal:   decimal.RequireFromString("100.00"),
		TaxAmount:  decimal.RequireFromString("16.00"),
		TaxLabel:   "IVA",
		Total:      decimal.RequireFromString("116.00"),
		CreatedAt:  time.Date(2025, 3, 14, 13, 45, 0, 0, time.UTC),
		Lines: []model.TicketLine{
			{ProductName: "Tacos al Pastor", Quantity: 3, UnitPrice: decimal.RequireFromString("25.00")},
			{ProductName: "Cerveza Clara", Quantity: 2, UnitPrice: decimal.RequireFromString("20.50")},
		},
	}
}

func TestFormatTextStylesAreBalanced(t *testing.T) {
	out := FormatText("Hola", Style{Align: AlignCenter, Bold: true, Underline: true, DoubleSize: true})

	assert.True(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_BOLD_ON))
	assert.True(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_BOLD_OFF))
	assert.True(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_UNDERLINE_ON))
	assert.True(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_UNDERLINE_OFF))
	assert.True(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_SIZE_DOUBLE_BOTH))
	assert.True(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_SIZE_NORMAL))
	assert.True(t, bytes.Contains(out, ESC_POS_COMMANDS.ALIGN_CENTER))

	// Alignment is restored so the next block starts left-aligned
	assert.True(t, bytes.HasSuffix(out, ESC_POS_COMMANDS.ALIGN_LEFT))
}

func TestFormatTextPlainHasNoToggles(t *testing.T) {
	out := FormatText("Hola", Style{})

	assert.False(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_BOLD_ON))
	assert.False(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_UNDERLINE_ON))
	assert.False(t, bytes.Contains(out, ESC_POS_COMMANDS.TEXT_SIZE_DOUBLE_BOTH))
	assert.True(t, bytes.Contains(out, []byte("Hola")))
	assert.True(t, bytes.HasSuffix(out, ESC_POS_COMMANDS.LINE_FEED))
}

func TestFormatComandaIsDeterministic(t *testing.T) {
	a := FormatComanda(testComanda(), testSettings())
	b := FormatComanda(testComanda(), testSettings())

	assert.Equal(t, a, b)
}

func TestFormatComandaStructure(t *testing.T) {
	out := FormatComanda(testComanda(), testSettings())

	require.True(t, bytes.HasPrefix(out, ESC_POS_COMMANDS.INITIALIZE))
	assert.True(t, bytes.Contains(out, ESC_POS_COMMANDS.SELECT_CHARSET_PC850))
	assert.True(t, bytes.Contains(out, []byte("COMANDA - COCINA")))
	assert.True(t, bytes.Contains(out, []byte("Mesa: Mesa 5")))
	assert.True(t, bytes.Contains(out, []byte("Orden: aaaaaaaa")))
	assert.True(t, bytes.Contains(out, []byte("3x Tacos al Pastor")))
	assert.True(t, bytes.Contains(out, []byte("* sin cebolla")))
	assert.True(t, bytes.Contains(out, []byte("1x Quesadilla")))
	assert.False(t, bytes.Contains(out, []byte("URGENTE")))
	assert.True(t, bytes.HasSuffix(out, ESC_POS_COMMANDS.CUT_PARTIAL))
}

func TestFormatComandaPriority(t *testing.T) {
	c := testComanda()
	c.Priority = true

	out := FormatComanda(c, testSettings())

	assert.True(t, bytes.Contains(out, []byte("*** URGENTE ***")))
}

func TestFormatComandaOmitsPrices(t *testing.T) {
	out := FormatComanda(testComanda(), testSettings())

	assert.False(t, bytes.Contains(out, []byte("$")))
	assert.False(t, bytes.Contains(out, []byte("TOTAL")))
}

func TestFormatTicketStructure(t *testing.T) {
	out := FormatTicket(testTicket(), testSettings())

	require.True(t, bytes.HasPrefix(out, ESC_POS_COMMANDS.INITIALIZE))
	assert.True(t, bytes.Contains(out, []byte("La Terraza")))
	assert.True(t, bytes.Contains(out, []byte("Mesero: Carlos")))
	assert.True(t, bytes.Contains(out, []byte("3x Tacos al Pastor")))
	assert.True(t, bytes.Contains(out, []byte("$25.00")))
	assert.True(t, bytes.Contains(out, []byte("SUBTOTAL: $100.00")))
	assert.True(t, bytes.Contains(out, []byte("IVA: $16.00")))
	assert.True(t, bytes.Contains(out, []byte("TOTAL: $116.00")))
	assert.True(t, bytes.Contains(out, []byte("¡Gracias por su visita!")))
	assert.True(t, bytes.HasSuffix(out, ESC_POS_COMMANDS.CUT_PARTIAL))
}

func TestFormatTicketIsDeterministic(t *testing.T) {
	a := FormatTicket(testTicket(), testSettings())
	b := FormatTicket(testTicket(), testSettings())

	assert.Equal(t, a, b)
}

func TestFormatTestPage(t *testing.T) {
	now := time.Date(2025, 3, 14, 13, 45, 0, 0, time.UTC)
	out := FormatTestPage("Cocina", now, testSettings())

	require.True(t, bytes.HasPrefix(out, ESC_POS_COMMANDS.INITIALIZE))
	assert.True(t, bytes.Contains(out, []byte("PRUEBA DE IMPRESIÓN")))
	assert.True(t, bytes.Contains(out, []byte("Impresora: Cocina")))
	assert.True(t, bytes.HasSuffix(out, ESC_POS_COMMANDS.CUT_PARTIAL))
}

func TestWidthForPaper(t *testing.T) {
	assert.Equal(t, 32, WidthForPaper(58))
	assert.Equal(t, 42, WidthForPaper(80))
	assert.Equal(t, 42, WidthForPaper(0))
}

func TestPadBetween(t *testing.T) {
	line := padBetween("2x Cerveza", "$41.00", 32)

	assert.Len(t, []rune(line), 32)
	assert.True(t, bytes.HasPrefix([]byte(line), []byte("2x Cerveza")))
	assert.True(t, bytes.HasSuffix([]byte(line), []byte("$41.00")))
}

func TestPadBetweenTruncatesLongNames(t *testing.T) {
	line := padBetween("1x Hamburguesa Doble con Queso y Tocino Extra", "$189.00", 32)

	assert.Contains(t, line, "...")
	assert.True(t, bytes.HasSuffix([]byte(line), []byte("$189.00")))
}
