// Package ui holds the small feedback primitives of the terminal front
// end: one-line toasts, yes/no confirmation and the terminal bell.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

type Level int

const (
	Info Level = iota
	Success
	Failure
)

func (l Level) prefix() string {
	switch l {
	case Success:
		return "[ok]"
	case Failure:
		return "[error]"
	default:
		return "[info]"
	}
}

type Toaster interface {
	Toast(level Level, text string)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

type Alerter interface {
	Alert(n models.Notification)
}

// Console writes toasts and the bell to one writer. It is safe for
// concurrent use, which matters because the notification poller toasts
// from its own goroutine.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Toast(level Level, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", level.prefix(), text)
}

// Ring sounds the terminal bell.
func (c *Console) Ring() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.w, "\a")
}

// Prompt asks on w and reads the answer from r. Only "y" or "yes"
// confirms; anything else, EOF included, declines.
type Prompt struct {
	mu sync.Mutex
	r  *bufio.Reader
	w  io.Writer
}

func NewPrompt(r io.Reader, w io.Writer) *Prompt {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Prompt{r: br, w: w}
}

func (p *Prompt) Confirm(prompt string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s [y/N] ", prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Bell is the notification alert: a toast with the title plus the bell.
type Bell struct {
	Console *Console
}

func (b Bell) Alert(n models.Notification) {
	b.Console.Toast(Info, "New notification: "+n.Title)
	b.Console.Ring()
}

// Always is a Confirmer that answers the same way every time; one-shot
// commands use it for --yes.
type Always bool

func (a Always) Confirm(string) bool { return bool(a) }
