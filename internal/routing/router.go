// internal/routing/router.go
package routing

import (
	"strings"

	"print-service/internal/model"
)

// Destination is the production area a line item is routed to
type Destination string

const (
	DestinationKitchen  Destination = "kitchen"
	DestinationBar      Destination = "bar"
	DestinationSushiBar Destination = "sushi_bar"
	DestinationGrill    Destination = "grill"
)

// Label returns the Spanish display label printed on comanda headers
func (d Destination) Label() string {
	switch d {
	case DestinationBar:
		return "BAR"
	case DestinationSushiBar:
		return "BARRA SUSHI"
	case DestinationGrill:
		return "PARRILLA"
	default:
		return "COCINA"
	}
}

// Destinations lists all production areas in routing precedence order
func Destinations() []Destination {
	return []Destination{DestinationBar, DestinationSushiBar, DestinationGrill, DestinationKitchen}
}

// categoryKeywords drive DestinationFor. Tests run in order; the first
// family with a containment match wins, kitchen is the default.
var categoryKeywords = []struct {
	dest     Destination
	keywords []string
}{
	{DestinationBar, []string{
		"bebida", "beverage", "cerveza", "beer", "vino", "wine",
		"coctel", "cocktail", "licor", "liquor", "refresco", "soda", "jugo",
	}},
	{DestinationSushiBar, []string{
		"sushi", "roll", "sashimi", "nigiri", "tempura", "wasabi", "soya", "soy",
	}},
	{DestinationGrill, []string{
		"parrilla", "grill", "asado", "roast", "carne", "meat",
		"steak", "brocheta", "skewer",
	}},
}

// printerKeywords drive the soft name matching used to pick a physical
// printer per destination. This is a deliberate convenience, not a schema:
// operators name printers "Cocina Principal", "Bar", "Barra Sushi" and the
// match follows the name.
var printerKeywords = map[Destination][]string{
	DestinationKitchen:  {"cocina", "kitchen", "caliente", "hot", "produccion", "producción"},
	DestinationBar:      {"bar", "bebida", "beverage"},
	DestinationSushiBar: {"sushi", "barra", "counter"},
	DestinationGrill:    {"parrilla", "grill", "asador", "searer"},
}

// DestinationFor maps a category name to exactly one production area.
// Empty or unknown names route to the kitchen, never to "unassigned".
func DestinationFor(categoryName string) Destination {
	name := strings.ToLower(strings.TrimSpace(categoryName))
	if name == "" {
		return DestinationKitchen
	}

	for _, family := range categoryKeywords {
		for _, kw := range family.keywords {
			if strings.Contains(name, kw) {
				return family.dest
			}
		}
	}

	return DestinationKitchen
}

// NamedPrinterFor finds the printer serving a destination by
// case-insensitive substring match over printer names, with no fallback
func NamedPrinterFor(dest Destination, printers []model.Printer) (*model.Printer, bool) {
	for i := range printers {
		if nameMatches(printers[i].Name, printerKeywords[dest]) {
			return &printers[i], true
		}
	}
	return nil, false
}

// PrinterFor finds the configured printer serving a destination. The
// kitchen falls back to the branch's first printer when nothing matches by
// name, matching the long-standing operator expectation that a
// single-printer branch prints everything on that device.
func PrinterFor(dest Destination, printers []model.Printer) (*model.Printer, bool) {
	if printer, ok := NamedPrinterFor(dest, printers); ok {
		return printer, true
	}

	if dest == DestinationKitchen && len(printers) > 0 {
		return &printers[0], true
	}

	return nil, false
}

// GeneralPrinter picks the cashier/receipt printer: the first printer whose
// name matches no production-area keyword, falling back to the first one.
func GeneralPrinter(printers []model.Printer) (*model.Printer, bool) {
	for i := range printers {
		matched := false
		for _, keywords := range printerKeywords {
			if nameMatches(printers[i].Name, keywords) {
				matched = true
				break
			}
		}
		if !matched {
			return &printers[i], true
		}
	}

	if len(printers) > 0 {
		return &printers[0], true
	}

	return nil, false
}

func nameMatches(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
