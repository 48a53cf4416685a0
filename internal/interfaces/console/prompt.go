package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Prompter asks questions on out and reads answers line by line from in.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter returns a Prompter over the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Line prints label and returns the next input line. Input ending before a
// line is read yields io.ErrUnexpectedEOF.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprintln(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return p.in.Text(), nil
}

// Decimal repeats the prompt until a line parses as a decimal number.
func (p *Prompter) Decimal(label string) (decimal.Decimal, error) {
	for {
		line, err := p.Line(label)
		if err != nil {
			return decimal.Decimal{}, err
		}
		if d, err := decimal.NewFromString(strings.TrimSpace(line)); err == nil {
			return d, nil
		}
	}
}
