// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver calls Update directly and runs every returned Cmd inline, feeding
// the resulting messages back into the model. Cmds that block, such as the
// cursor blink timer, are abandoned after a short timeout.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDepth bounds how many chained Cmds a single message may trigger.
const maxDepth = 100

// cmdTimeout separates Cmds that return immediately from timer Cmds.
const cmdTimeout = 10 * time.Millisecond

type Driver struct {
	t     testing.TB
	model tea.Model

	// Quit is set once the model returns tea.Quit.
	Quit bool
}

type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.model, _ = d.model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// New wraps model and runs its Init command.
func New(t testing.TB, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{t: t, model: model}
	for _, opt := range opts {
		opt(d)
	}
	d.run(d.model.Init(), 0)
	return d
}

// Model returns the current model value.
func (d *Driver) Model() tea.Model { return d.model }

// Send delivers msg and runs the resulting Cmds. Messages after quit are
// dropped.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.Quit {
		return
	}
	var cmd tea.Cmd
	d.model, cmd = d.model.Update(msg)
	d.run(cmd, 0)
}

func (d *Driver) Key(k tea.KeyType) { d.Send(tea.KeyMsg{Type: k}) }

func (d *Driver) Enter() { d.Key(tea.KeyEnter) }
func (d *Driver) Up()    { d.Key(tea.KeyUp) }
func (d *Driver) Down()  { d.Key(tea.KeyDown) }
func (d *Driver) CtrlC() { d.Key(tea.KeyCtrlC) }

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// Submit types line and presses enter.
func (d *Driver) Submit(line string) {
	d.t.Helper()
	d.Type(line)
	d.Enter()
}

func (d *Driver) View() string { return d.model.View() }

func (d *Driver) run(cmd tea.Cmd, depth int) {
	if cmd == nil {
		return
	}
	if depth >= maxDepth {
		d.t.Logf("teatest: command chain deeper than %d, stopping", maxDepth)
		return
	}

	msg := callWithTimeout(cmd)
	switch m := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, c := range m {
			d.run(c, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quit = true
		d.model, _ = d.model.Update(m)
		return
	}
	if isBlink(msg) {
		return
	}

	var next tea.Cmd
	d.model, next = d.model.Update(msg)
	d.run(next, depth+1)
}

func callWithTimeout(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

// isBlink matches the unexported blink messages of bubbles/cursor.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
