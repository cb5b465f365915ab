package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/drip/internal/cli/formatter"
	"github.com/alexanderramin/drip/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var errNotInteractive = errors.New("confirmation needed; rerun with --force")

// dripHuhTheme returns a huh theme using the drip palette.
func dripHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// confirm asks a yes/no question. Non-interactive runs refuse rather than
// assume an answer.
func confirm(app *App, question string) (bool, error) {
	if !app.interactive() {
		return false, errNotInteractive
	}
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(question).Value(&ok),
	)).WithTheme(dripHuhTheme()).WithShowHelp(false).Run()
	return ok, err
}

// attrsForm builds a form editing the fields that belong to kind. The form
// writes into the returned formValues; call apply to fold them into attrs.
func attrsForm(kind domain.NodeKind, attrs domain.NodeAttrs) (*huh.Form, *formValues) {
	v := &formValues{
		label:     attrs.Label,
		unit:      string(attrs.Unit),
		template:  attrs.TemplateID,
		subject:   attrs.Subject,
		content:   attrs.Content,
		predicate: string(attrs.Predicate),
	}
	if attrs.Amount > 0 {
		v.amount = strconv.Itoa(attrs.Amount)
	}
	if v.unit == "" {
		v.unit = string(domain.UnitHours)
	}
	if v.predicate == "" {
		v.predicate = string(domain.PredicateOpened)
	}

	var fields []huh.Field
	switch kind {
	case domain.NodeDelay:
		fields = append(fields,
			huh.NewInput().Title("Wait").Placeholder("24").Value(&v.amount).Validate(validateAmount),
			huh.NewSelect[string]().Title("Unit").Options(
				huh.NewOption("minutes", string(domain.UnitMinutes)),
				huh.NewOption("hours", string(domain.UnitHours)),
				huh.NewOption("days", string(domain.UnitDays)),
			).Value(&v.unit),
		)
	case domain.NodeEmail:
		if v.template == "" {
			v.template = "email1"
		}
		fields = append(fields,
			huh.NewSelect[string]().Title("Template").Options(huh.NewOptions("email1", "email2", "email3")...).Value(&v.template),
			huh.NewInput().Title("Subject").Value(&v.subject),
			huh.NewText().Title("Content").Value(&v.content),
		)
	case domain.NodeCondition:
		fields = append(fields,
			huh.NewSelect[string]().Title("Branch when the previous email was").Options(
				huh.NewOption("opened", string(domain.PredicateOpened)),
				huh.NewOption("clicked", string(domain.PredicateClicked)),
			).Value(&v.predicate),
		)
	}
	fields = append(fields, huh.NewInput().Title("Label").Placeholder("optional").Value(&v.label))

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(dripHuhTheme()).WithShowHelp(false)
	return form, v
}

type formValues struct {
	label, amount, unit        string
	template, subject, content string
	predicate                  string
}

func (v *formValues) apply(kind domain.NodeKind) domain.NodeAttrs {
	a := domain.NodeAttrs{Label: strings.TrimSpace(v.label)}
	switch kind {
	case domain.NodeDelay:
		a.Amount, _ = strconv.Atoi(strings.TrimSpace(v.amount))
		a.Unit = domain.DelayUnit(v.unit)
	case domain.NodeEmail:
		a.TemplateID = v.template
		a.Subject = strings.TrimSpace(v.subject)
		a.Content = v.content
	case domain.NodeCondition:
		a.Predicate = domain.Predicate(v.predicate)
	}
	return a
}

func validateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > domain.MaxDelayAmount {
		return fmt.Errorf("enter a whole number from 1 to %d", domain.MaxDelayAmount)
	}
	return nil
}
