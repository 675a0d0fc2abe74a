// Package console formata a saída interativa dos comandos: títulos, seções,
// avisos, confirmação y/n, contagem regressiva e contadores ao vivo.
//
// Cores só são usadas quando a saída é um terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	fcolor "github.com/fatih/color"
	"golang.org/x/term"
)

var ErrNoAnswer = errors.New("no answer")

type Console struct {
	in    *bufio.Reader
	out   io.Writer
	isTTY bool
	tick  time.Duration

	title   *fcolor.Color
	section *fcolor.Color
	warning *fcolor.Color
	success *fcolor.Color
	failure *fcolor.Color
}

func New(in io.Reader, out io.Writer) *Console {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	c := &Console{
		in:      bufio.NewReader(in),
		out:     out,
		isTTY:   isTTY,
		tick:    time.Second,
		title:   fcolor.New(fcolor.FgGreen, fcolor.Bold),
		section: fcolor.New(fcolor.FgYellow, fcolor.Bold),
		warning: fcolor.New(fcolor.FgBlack, fcolor.BgYellow),
		success: fcolor.New(fcolor.FgBlack, fcolor.BgGreen),
		failure: fcolor.New(fcolor.FgRed),
	}
	for _, col := range []*fcolor.Color{c.title, c.section, c.warning, c.success, c.failure} {
		if isTTY {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) IsTTY() bool { return c.isTTY }

func (c *Console) Title(text string) {
	c.printf(c.title, "%s\n%s\n\n", text, strings.Repeat("=", len([]rune(text))))
}

func (c *Console) Section(text string) {
	c.printf(c.section, "%s\n%s\n\n", text, strings.Repeat("-", len([]rune(text))))
}

func (c *Console) Writeln(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) Newline() {
	_, _ = fmt.Fprintln(c.out)
}

func (c *Console) Warning(text string) {
	c.printf(c.warning, "[WARNING] %s\n", text)
	c.Newline()
}

func (c *Console) Success(text string) {
	c.printf(c.success, "[OK] %s\n", text)
	c.Newline()
}

func (c *Console) Error(text string) {
	c.printf(c.failure, "[ERROR] %s\n", text)
	c.Newline()
}

// Confirm pergunta até receber "y" ou "n" (sem diferenciar maiúsculas).
// Entrada encerrada antes de uma resposta válida retorna ErrNoAnswer.
func (c *Console) Confirm(question string) (bool, error) {
	for {
		_, _ = fmt.Fprintf(c.out, "%s:\n > ", question)

		line, err := c.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y":
			c.Newline()
			return true, nil
		case "n":
			c.Newline()
			return false, nil
		}

		if err != nil {
			c.Newline()
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, fmt.Errorf("read answer: %w", err)
		}

		c.Newline()
		c.Error(`You need to enter "y" to continue or "n" to abort.`)
	}
}

// Countdown espera seconds passos de um segundo desenhando uma barra.
func (c *Console) Countdown(ctx context.Context, seconds int) error {
	c.Writeln("The command will wait for %d seconds before starting", seconds)
	c.drawBar(0, seconds)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for i := 1; i <= seconds; i++ {
		select {
		case <-ctx.Done():
			c.Newline()
			return ctx.Err()
		case <-ticker.C:
		}
		c.drawBar(i, seconds)
	}

	_, _ = fmt.Fprint(c.out, "\n\n\n")
	return nil
}

func (c *Console) drawBar(done, total int) {
	const width = 28
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	bar := strings.Repeat("=", filled) + strings.Repeat("-", width-filled)
	_, _ = fmt.Fprintf(c.out, "\r %d/%d [%s] %3d%%", done, total, bar, percent(done, total))
}

func percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}

func (c *Console) printf(col *fcolor.Color, format string, args ...any) {
	if _, err := col.Fprintf(c.out, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "console: failed to print message: %v\n", err)
	}
}
