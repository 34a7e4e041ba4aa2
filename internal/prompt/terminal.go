package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	messageStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	separatorStyle = lipgloss.NewStyle().Faint(true)
	detailStyle    = lipgloss.NewStyle().Faint(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Terminal is the interactive Prompter used by ckctl. Each question runs a
// small Bubble Tea program.
type Terminal struct{}

// NewTerminal returns a terminal-backed prompter.
func NewTerminal() *Terminal { return &Terminal{} }

func (t *Terminal) Text(ctx context.Context, q TextQuestion) (string, error) {
	return t.text(ctx, q, textinput.EchoNormal)
}

func (t *Terminal) Password(ctx context.Context, q TextQuestion) (string, error) {
	return t.text(ctx, q, textinput.EchoPassword)
}

func (t *Terminal) text(ctx context.Context, q TextQuestion, echo textinput.EchoMode) (string, error) {
	input := textinput.New()
	input.EchoMode = echo
	input.Placeholder = q.Default
	input.Width = 50
	input.Focus()

	m := &textModel{question: q, input: input}
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	tm := final.(*textModel)
	if tm.canceled {
		return "", ErrCanceled
	}
	return tm.answer, nil
}

func (t *Terminal) Select(ctx context.Context, q SelectQuestion) (string, error) {
	items := make([]list.Item, len(q.Options))
	for i, opt := range q.Options {
		items[i] = optionItem{opt}
	}
	height := len(q.Options) + 4
	if height > 16 {
		height = 16
	}
	l := list.New(items, optionDelegate{}, 60, height)
	l.Title = q.Message
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = messageStyle
	l.Select(q.DefaultIndex())

	m := &selectModel{question: q, list: l}
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	sm := final.(*selectModel)
	if sm.canceled {
		return "", ErrCanceled
	}
	return sm.answer, nil
}

func (t *Terminal) Confirm(ctx context.Context, q ConfirmQuestion) (bool, error) {
	hint := "[Y/n]"
	if !q.Default {
		hint = "[y/N]"
	}
	answer, err := t.Text(ctx, TextQuestion{
		Message: fmt.Sprintf("%s %s", q.Message, hint),
		Validate: func(s string) error {
			switch strings.ToLower(s) {
			case "", "y", "yes", "n", "no":
				return nil
			}
			return fmt.Errorf("answer y or n")
		},
	})
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return q.Default, nil
}

type textModel struct {
	question TextQuestion
	input    textinput.Model
	answer   string
	errMsg   string
	canceled bool
	done     bool
}

func (m *textModel) Init() tea.Cmd { return textinput.Blink }

func (m *textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			answer, err := ResolveText(m.question, m.input.Value())
			if err != nil {
				m.errMsg = errText(err)
				m.input.SetValue("")
				return m, nil
			}
			m.answer = answer
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *textModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	var b strings.Builder
	b.WriteString(messageStyle.Render(m.question.Message))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n")
	return b.String()
}

func errText(err error) string {
	if err == errReask {
		return "A value is required."
	}
	return err.Error()
}

type optionItem struct {
	opt SelectOption
}

func (i optionItem) FilterValue() string { return i.opt.Label }

type optionDelegate struct{}

func (d optionDelegate) Height() int  { return 1 }
func (d optionDelegate) Spacing() int { return 0 }
func (d optionDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d optionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(optionItem)
	if !ok {
		return
	}
	if it.opt.Separator {
		fmt.Fprint(w, "  "+separatorStyle.Render(it.opt.Label))
		return
	}
	line := it.opt.Label
	if it.opt.Detail != "" {
		line += " " + detailStyle.Render(it.opt.Detail)
	}
	if index == m.Index() {
		fmt.Fprint(w, cursorStyle.Render("> ")+line)
		return
	}
	fmt.Fprint(w, "  "+line)
}

type selectModel struct {
	question SelectQuestion
	list     list.Model
	answer   string
	canceled bool
	done     bool
}

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			// Separator rows are not selectable.
			if !m.question.Selectable(m.list.Index()) {
				return m, nil
			}
			if it, ok := m.list.SelectedItem().(optionItem); ok {
				m.answer = it.opt.Label
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *selectModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	return m.list.View() + "\n"
}
