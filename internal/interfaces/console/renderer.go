// Package console renders routine results and reads prompt answers on a
// line-oriented terminal.
package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Renderer writes formatted lines to an output stream.
type Renderer struct {
	out     io.Writer
	heading lipgloss.Style
	printer *message.Printer
}

// NewRenderer returns a Renderer for w. Styling is dropped when w is not a
// terminal.
func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		out:     w,
		heading: r.NewStyle().Bold(true),
		printer: message.NewPrinter(language.English),
	}
}

// Heading writes a styled title line.
func (r *Renderer) Heading(text string) {
	fmt.Fprintln(r.out, r.heading.Render(text))
}

// Line writes one unstyled line.
func (r *Renderer) Line(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Currency formats a cost as $#,##0.00. An unknown cost renders empty.
// Only the integer part goes through the printer, so every digit of a
// NUMERIC(18,2) value survives.
func (r *Renderer) Currency(cost decimal.NullDecimal) string {
	if !cost.Valid {
		return ""
	}
	sign := ""
	if cost.Decimal.Round(2).IsNegative() {
		sign = "-"
	}
	whole, frac, _ := strings.Cut(cost.Decimal.Abs().StringFixed(2), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = r.printer.Sprint(number.Decimal(n))
	}
	return sign + "$" + whole + "." + frac
}

// WholeCurrency formats a cost rounded to whole dollars without grouping.
func WholeCurrency(cost decimal.NullDecimal) string {
	if !cost.Valid {
		return ""
	}
	return "$" + cost.Decimal.Round(0).String()
}
