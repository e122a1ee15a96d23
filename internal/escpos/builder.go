// internal/escpos/builder.go
package escpos

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"print-service/internal/model"
)

// Alignment selects the horizontal alignment for a formatted block
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Style holds the independent formatting toggles for FormatText
type Style struct {
	Align      Alignment
	Bold       bool
	Underline  bool
	DoubleSize bool
}

// Settings holds branch-level rendering parameters. Width is the printable
// character count of the paper (42 for 80mm, 32 for 58mm).
type Settings struct {
	BusinessName   string
	FooterMessage  string
	CurrencySymbol string
	Width          int
}

const (
	defaultWidth = 42
	narrowWidth  = 32
	noteMarker   = "* "
	feedAfterDoc = 4
)

// WidthForPaper maps a paper width in millimeters to printable characters
func WidthForPaper(paperMM int) int {
	if paperMM == 58 {
		return narrowWidth
	}
	return defaultWidth
}

func (s Settings) width() int {
	if s.Width > 0 {
		return s.Width
	}
	return defaultWidth
}

// FormatText renders a single line with the requested style. Every toggle
// emitted before the text has its matching off command emitted after it, so
// no style leaks into the next block.
func FormatText(text string, style Style) []byte {
	var buf bytes.Buffer

	switch style.Align {
	case AlignCenter:
		buf.Write(ESC_POS_COMMANDS.ALIGN_CENTER)
	case AlignRight:
		buf.Write(ESC_POS_COMMANDS.ALIGN_RIGHT)
	default:
		buf.Write(ESC_POS_COMMANDS.ALIGN_LEFT)
	}

	if style.Bold {
		buf.Write(ESC_POS_COMMANDS.TEXT_BOLD_ON)
	}
	if style.Underline {
		buf.Write(ESC_POS_COMMANDS.TEXT_UNDERLINE_ON)
	}
	if style.DoubleSize {
		buf.Write(ESC_POS_COMMANDS.TEXT_SIZE_DOUBLE_BOTH)
	}

	buf.WriteString(text)
	buf.Write(ESC_POS_COMMANDS.LINE_FEED)

	if style.DoubleSize {
		buf.Write(ESC_POS_COMMANDS.TEXT_SIZE_NORMAL)
	}
	if style.Underline {
		buf.Write(ESC_POS_COMMANDS.TEXT_UNDERLINE_OFF)
	}
	if style.Bold {
		buf.Write(ESC_POS_COMMANDS.TEXT_BOLD_OFF)
	}
	if style.Align == AlignCenter || style.Align == AlignRight {
		buf.Write(ESC_POS_COMMANDS.ALIGN_LEFT)
	}

	return buf.Bytes()
}

// Divider renders a horizontal rule across the paper
func Divider(width int) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Repeat("-", width))
	buf.Write(ESC_POS_COMMANDS.LINE_FEED)
	return buf.Bytes()
}

// FormatComanda renders a production ticket for one kitchen/bar area.
// Pure transform: identical comanda and settings produce identical bytes.
func FormatComanda(c *model.Comanda, s Settings) []byte {
	width := s.width()
	var buf bytes.Buffer

	buf.Write(ESC_POS_COMMANDS.INITIALIZE)
	buf.Write(ESC_POS_COMMANDS.SELECT_CHARSET_PC850)

	header := "COMANDA"
	if c.AreaLabel != "" {
		header = "COMANDA - " + c.AreaLabel
	}
	buf.Write(FormatText(header, Style{Align: AlignCenter, Bold: true, DoubleSize: true}))
	buf.Write(ESC_POS_COMMANDS.LINE_FEED)

	buf.Write(FormatText("Mesa: "+c.TableName, Style{}))
	if c.AreaName != "" {
		buf.Write(FormatText("Área: "+c.AreaName, Style{}))
	}
	buf.Write(FormatText("Hora: "+c.CreatedAt.Format("02/01/2006 15:04"), Style{}))
	buf.Write(FormatText("Orden: "+shortID(c.OrderID.String()), Style{}))

	buf.Write(Divider(width))

	for _, item := range c.Items {
		line := fmt.Sprintf("%dx %s", item.Quantity, item.ProductName)
		buf.Write(FormatText(line, Style{Bold: true, DoubleSize: true}))
		if item.Notes != "" {
			buf.Write(FormatText("  "+noteMarker+item.Notes, Style{}))
		}
	}

	buf.Write(Divider(width))

	if c.Priority {
		buf.Write(FormatText("*** URGENTE ***", Style{Align: AlignCenter, Bold: true}))
	}

	feed(&buf, feedAfterDoc)
	buf.Write(ESC_POS_COMMANDS.CUT_PARTIAL)

	return buf.Bytes()
}

// FormatTicket renders the customer receipt. Pure transform.
func FormatTicket(t *model.Ticket, s Settings) []byte {
	width := s.width()
	var buf bytes.Buffer

	buf.Write(ESC_POS_COMMANDS.INITIALIZE)
	buf.Write(ESC_POS_COMMANDS.SELECT_CHARSET_PC850)

	if s.BusinessName != "" {
		buf.Write(FormatText(s.BusinessName, Style{Align: AlignCenter, Bold: true, DoubleSize: true}))
		buf.Write(ESC_POS_COMMANDS.LINE_FEED)
	}

	buf.Write(FormatText("Mesa: "+t.TableName, Style{}))
	buf.Write(FormatText("Mesero: "+t.WaiterName, Style{}))
	buf.Write(FormatText("Orden: "+shortID(t.OrderID.String()), Style{}))
	buf.Write(FormatText("Fecha: "+t.CreatedAt.Format("02/01/2006 15:04"), Style{}))

	buf.Write(Divider(width))

	for _, line := range t.Lines {
		name := fmt.Sprintf("%dx %s", line.Quantity, line.ProductName)
		price := money(s, line.UnitPrice)
		buf.Write(FormatText(padBetween(name, price, width), Style{}))
	}

	buf.Write(Divider(width))

	buf.Write(FormatText("SUBTOTAL: "+money(s, t.Subtotal), Style{Align: AlignRight}))
	taxLabel := t.TaxLabel
	if taxLabel == "" {
		taxLabel = "IVA"
	}
	buf.Write(FormatText(taxLabel+": "+money(s, t.TaxAmount), Style{Align: AlignRight}))
	buf.Write(FormatText("TOTAL: "+money(s, t.Total), Style{Align: AlignRight, Bold: true, DoubleSize: true}))

	buf.Write(ESC_POS_COMMANDS.LINE_FEED)
	if s.FooterMessage != "" {
		buf.Write(FormatText(s.FooterMessage, Style{Align: AlignCenter}))
	}

	feed(&buf, feedAfterDoc)
	buf.Write(ESC_POS_COMMANDS.CUT_PARTIAL)

	return buf.Bytes()
}

// FormatTestPage renders the operator-triggered connectivity check payload
func FormatTestPage(printerName string, now time.Time, s Settings) []byte {
	width := s.width()
	var buf bytes.Buffer

	buf.Write(ESC_POS_COMMANDS.INITIALIZE)
	buf.Write(ESC_POS_COMMANDS.SELECT_CHARSET_PC850)

	buf.Write(FormatText("PRUEBA DE IMPRESIÓN", Style{Align: AlignCenter, Bold: true, DoubleSize: true}))
	buf.Write(ESC_POS_COMMANDS.LINE_FEED)
	buf.Write(FormatText("Impresora: "+printerName, Style{}))
	buf.Write(FormatText("Fecha: "+now.Format("02/01/2006 15:04:05"), Style{}))
	buf.Write(Divider(width))
	buf.Write(FormatText("Conexión correcta", Style{Align: AlignCenter}))

	feed(&buf, feedAfterDoc)
	buf.Write(ESC_POS_COMMANDS.CUT_PARTIAL)

	return buf.Bytes()
}

// money renders an amount with the currency symbol and two decimals.
// Fixed-width receipts have no room for thousands separators.
func money(s Settings, amount decimal.Decimal) string {
	symbol := s.CurrencySymbol
	if symbol == "" {
		symbol = "$"
	}
	return symbol + amount.StringFixed(2)
}

// padBetween joins a left and right fragment with spacing to fill the paper
// width, truncating the left fragment when the line does not fit.
func padBetween(left, right string, width int) string {
	gap := width - len([]rune(left)) - len([]rune(right))
	if gap < 1 {
		maxLeft := width - len([]rune(right)) - 4
		if maxLeft < 1 {
			maxLeft = 1
		}
		runes := []rune(left)
		if len(runes) > maxLeft {
			left = string(runes[:maxLeft]) + "..."
		}
		gap = width - len([]rune(left)) - len([]rune(right))
		if gap < 1 {
			gap = 1
		}
	}
	return left + strings.Repeat(" ", gap) + right
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func feed(buf *bytes.Buffer, lines int) {
	buf.Write(ESC_POS_COMMANDS.FEED_LINES)
	buf.WriteByte(byte(lines))
}
