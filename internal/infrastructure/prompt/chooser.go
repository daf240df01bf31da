// Package prompt selector interactivo de terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/jhoicas/partimport/internal/application/ports"
)

var (
	_ ports.Chooser     = (*Chooser)(nil)
	_ ports.ManualEntry = (*Chooser)(nil)
)

const maxAttempts = 3

// Chooser muestra opciones numeradas y lee la selección de una línea.
// 0 o línea vacía significa "ninguna".
type Chooser struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// New construye el selector sobre la entrada y salida dadas (normalmente stdin/stdout).
func New(in io.Reader, out io.Writer) *Chooser {
	return &Chooser{in: bufio.NewReader(in), out: out}
}

// Choose implementa ports.Chooser.
func (c *Chooser) Choose(ctx context.Context, title string, options []string, maxShown int) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if maxShown > 0 && len(options) > maxShown {
		options = options[:maxShown]
	}
	if len(options) == 0 {
		return -1, false, nil
	}

	fmt.Fprintf(c.out, "%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprintf(c.out, "  0) None of the above\n")

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return -1, false, err
		}
		fmt.Fprintf(c.out, "> ")
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return -1, false, nil
			}
			return -1, false, err
		}
		line = strings.TrimSpace(line)
		if line == "" || line == "0" {
			return -1, false, nil
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, true, nil
		}
		fmt.Fprintf(c.out, "invalid choice %q, expected 0-%d\n", line, len(options))
	}
	return -1, false, nil
}

// EnterText implementa ports.ManualEntry: lee una línea de texto libre.
// Línea vacía o fin de entrada significa "ninguno".
func (c *Chooser) EnterText(ctx context.Context, label string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	fmt.Fprintf(c.out, "%s: ", label)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return "", false, nil
		}
		return "", false, err
	}
	line = strings.TrimSpace(line)
	return line, line != "", nil
}
