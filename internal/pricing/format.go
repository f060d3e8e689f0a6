package pricing

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders Money in a locale-aware currency notation.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter builds a formatter for the ISO currency code and BCP 47 locale.
func NewFormatter(code, locale string) (Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Formatter{}, fmt.Errorf("pricing: currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}, fmt.Errorf("pricing: locale %q: %w", locale, err)
	}
	return Formatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

// Currency returns the ISO code of the formatter's currency.
func (f Formatter) Currency() string {
	return f.unit.String()
}

// Format renders m using the currency symbol of the configured locale.
func (f Formatter) Format(m Money) string {
	if f.printer == nil {
		return fmt.Sprintf("%.2f", Major(m))
	}
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(Major(m))))
}
