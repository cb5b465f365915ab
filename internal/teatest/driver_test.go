package teatest

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type echoMsg string

// counter counts keys, echoes typed runes through a Cmd and quits on "q".
type counter struct {
	keys   int
	width  int
	echoed string
	inited bool
}

func (c counter) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return echoMsg("init") },
		nil,
	)
}

func (c counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
	case echoMsg:
		if msg == "init" {
			c.inited = true
		} else {
			c.echoed += string(msg)
		}
	case tea.KeyMsg:
		c.keys++
		if msg.String() == "q" {
			return c, tea.Quit
		}
		if msg.Type == tea.KeyRunes {
			r := string(msg.Runes)
			return c, func() tea.Msg { return echoMsg(r) }
		}
	}
	return c, nil
}

func (c counter) View() string {
	return fmt.Sprintf("keys=%d echoed=%s width=%d", c.keys, c.echoed, c.width)
}

func TestDriver_RunsInitAndCommands(t *testing.T) {
	d := New(t, counter{}, WithSize(80, 24))
	assert.True(t, d.Model().(counter).inited)

	d.Type("ab")
	d.Enter()
	assert.Equal(t, "keys=3 echoed=ab width=80", d.View())
}

func TestDriver_StopsAfterQuit(t *testing.T) {
	d := New(t, counter{})
	d.Type("xq")
	assert.True(t, d.Quit)

	d.Type("zz")
	assert.Equal(t, 2, d.Model().(counter).keys)
}
