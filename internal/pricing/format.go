package pricing

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"milsabores/pkg/money"
)

// Formatter renders amounts for display.
type Formatter interface {
	Format(m money.Money) string
}

// symbols covers the currencies the storefront is sold in; others fall back
// to the ISO code.
var symbols = map[string]string{
	"CLP": "$",
	"USD": "US$",
	"EUR": "€",
}

// LocaleFormatter groups digits per locale and prefixes the currency
// symbol, e.g. 45000 CLP in es-CL renders as $45.000.
type LocaleFormatter struct {
	printer *message.Printer
	symbol  string
	scale   int
}

// NewFormatter builds a formatter for an ISO 4217 code and a BCP 47 locale.
// The number of minor-unit digits comes from the currency's standard
// rounding: zero for CLP, two for USD.
func NewFormatter(code, locale string) (*LocaleFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	scale, _ := currency.Standard.Rounding(unit)

	symbol, ok := symbols[unit.String()]
	if !ok {
		symbol = unit.String() + " "
	}
	return &LocaleFormatter{printer: message.NewPrinter(tag), symbol: symbol, scale: scale}, nil
}

// DefaultFormatter is the es-CL peso formatter.
func DefaultFormatter() *LocaleFormatter {
	f, err := NewFormatter("CLP", "es-CL")
	if err != nil {
		panic(err)
	}
	return f
}

func (f *LocaleFormatter) Format(m money.Money) string {
	sign := ""
	v := m.Int64()
	if v < 0 {
		sign = "-"
		v = -v
	}
	var digits string
	if f.scale == 0 {
		digits = f.printer.Sprint(number.Decimal(v))
	} else {
		major := float64(v) / math.Pow10(f.scale)
		digits = f.printer.Sprint(number.Decimal(major, number.Scale(f.scale)))
	}
	return sign + f.symbol + strings.TrimSpace(digits)
}
