package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/drip/internal/cli/formatter"
	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/repository"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const maxScrollback = 1000

func newShellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell with an active campaign",
		Long: `Start an interactive shell. 'use <campaign>' sets the active campaign,
which is passed to every command as --campaign.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(newShellModel(cmd.Context(), app),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
}

// shellModel is the bubbletea model behind the shell. Commands run
// synchronously through a fresh cobra tree and their output is kept as
// scrollback above the prompt.
type shellModel struct {
	input  textinput.Model
	width  int
	height int

	ctx    context.Context
	app    *App
	active *domain.Campaign
	lines  []string

	history    []string
	historyIdx int

	quitting bool
}

func newShellModel(ctx context.Context, app *App) shellModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 500

	hist := loadHistory(app.HistoryPath)
	m := shellModel{
		input:      ti,
		ctx:        ctx,
		app:        app,
		history:    hist,
		historyIdx: len(hist),
	}
	m.print(formatter.FormatShellWelcome())
	return m
}

func (m shellModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - len(m.promptText()) - 1
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyUp:
			m.recall(-1)
			return m, nil
		case tea.KeyDown:
			m.recall(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) View() string {
	if m.quitting {
		return formatter.Dim("Goodbye.") + "\n"
	}

	lines := m.lines
	if m.height > 1 && len(lines) > m.height-1 {
		lines = lines[len(lines)-(m.height-1):]
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	b.WriteString(m.prompt() + m.input.View())
	return b.String()
}

func (m *shellModel) promptText() string {
	if m.active == nil {
		return "drip ❯ "
	}
	return fmt.Sprintf("drip (%s) ❯ ", m.active.Name)
}

func (m *shellModel) prompt() string {
	if m.active == nil {
		return formatter.StylePurple.Render("drip") + " " + formatter.Dim("❯") + " "
	}
	return formatter.StylePurple.Render("drip") + " " +
		formatter.Dim("(") + formatter.StyleGreen.Render(m.active.Name) + formatter.Dim(")") +
		" " + formatter.Dim("❯") + " "
}

func (m *shellModel) print(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	m.lines = append(m.lines, strings.Split(text, "\n")...)
	if len(m.lines) > maxScrollback {
		m.lines = m.lines[len(m.lines)-maxScrollback:]
	}
}

func (m shellModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return m, nil
	}
	m.addHistory(line)
	m.print(m.prompt() + line)

	out, cmd := m.execute(line)
	m.print(out)
	return m, cmd
}

func (m *shellModel) execute(line string) (string, tea.Cmd) {
	args, err := splitShellArgs(line)
	if err != nil {
		return formatter.Error(err), nil
	}
	if len(args) == 0 {
		return "", nil
	}

	switch args[0] {
	case "exit", "quit", "q":
		m.quitting = true
		return "", tea.Quit
	case "clear":
		m.lines = nil
		return "", nil
	case "use":
		return m.use(strings.Join(args[1:], " ")), nil
	case "shell":
		return formatter.Dim("Already in the shell."), nil
	case "serve":
		return formatter.Error(errors.New("serve cannot run inside the shell")), nil
	}

	out := m.run(args)
	m.refreshActive()
	return out, nil
}

func (m *shellModel) use(ref string) string {
	if ref == "" {
		m.active = nil
		return formatter.Dim("No active campaign.")
	}
	c, err := m.app.Campaigns.Resolve(m.ctx, ref)
	if err != nil {
		return formatter.Error(err)
	}
	m.active = c
	return fmt.Sprintf("Using %s", formatter.Bold(c.Name))
}

// run executes args through a fresh command tree and captures its output.
// Forms are disabled since the shell already owns the terminal.
func (m *shellModel) run(args []string) string {
	nested := *m.app
	nested.IsInteractive = nil

	var buf bytes.Buffer
	root := NewRootCmd(&nested)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(m.withActiveCampaign(args))

	if err := root.ExecuteContext(m.ctx); err != nil {
		if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteString(formatter.Error(err))
		if errors.Is(err, errNoCampaign) {
			buf.WriteString("\n" + formatter.Dim("Hint: set an active campaign with 'use <name>'"))
		}
	}
	return buf.String()
}

func (m *shellModel) withActiveCampaign(args []string) []string {
	if m.active == nil || hasCampaignFlag(args) {
		return args
	}
	return append(slices.Clone(args), "--"+campaignFlag, m.active.ID)
}

func hasCampaignFlag(args []string) bool {
	for _, a := range args {
		if a == "-c" || a == "--"+campaignFlag || strings.HasPrefix(a, "--"+campaignFlag+"=") || strings.HasPrefix(a, "-c=") {
			return true
		}
	}
	return false
}

// refreshActive reloads the active campaign so renames show in the prompt,
// and drops it once the campaign is deleted.
func (m *shellModel) refreshActive() {
	if m.active == nil {
		return
	}
	c, err := m.app.Campaigns.Resolve(m.ctx, m.active.ID)
	if errors.Is(err, repository.ErrNotFound) {
		m.active = nil
		return
	}
	if err == nil {
		m.active = c
	}
}

func (m *shellModel) addHistory(line string) {
	if n := len(m.history); n == 0 || m.history[n-1] != line {
		m.history = append(m.history, line)
		appendHistory(m.app.HistoryPath, line)
	}
	m.historyIdx = len(m.history)
}

// recall moves through history; stepping past the newest entry clears the
// input.
func (m *shellModel) recall(step int) {
	if len(m.history) == 0 {
		return
	}
	m.historyIdx = min(max(m.historyIdx+step, 0), len(m.history))
	if m.historyIdx == len(m.history) {
		m.input.SetValue("")
		return
	}
	m.input.SetValue(m.history[m.historyIdx])
	m.input.CursorEnd()
}
