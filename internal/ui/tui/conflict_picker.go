package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/klauern/razd/internal/sync"
)

// maxPreviewLines bounds the diff shown above the choices.
const maxPreviewLines = 20

type conflictOption struct {
	label      string
	detail     string
	resolution sync.Resolution
}

var conflictOptions = []conflictOption{
	{"Use Razdfile.yml", "regenerate mise.toml from the Razdfile", sync.ResolveUseRazdfile},
	{"Use mise.toml", "update the Razdfile tool section from mise.toml", sync.ResolveUseMise},
	{"Skip", "leave both files as they are", sync.ResolveSkip},
}

// conflictPickerKeyMap defines the key bindings for the conflict picker.
type conflictPickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Pick   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultConflictPickerKeyMap() conflictPickerKeyMap {
	return conflictPickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Pick: key.NewBinding(
			key.WithKeys("1", "2", "3"),
			key.WithHelp("1-3", "choose"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "skip"),
		),
	}
}

// ConflictPickerModel is the BubbleTea model for choosing which file wins
// when both changed.
type ConflictPickerModel struct {
	preview  *sync.ConflictPreview
	cursor   int
	keys     conflictPickerKeyMap
	result   sync.Resolution
	showHelp bool
	width    int
	quitting bool
}

// NewConflictPickerModel creates a picker for preview.
func NewConflictPickerModel(preview *sync.ConflictPreview) ConflictPickerModel {
	return ConflictPickerModel{
		preview: preview,
		keys:    defaultConflictPickerKeyMap(),
		result:  sync.ResolveSkip,
	}
}

// Init implements tea.Model.
func (m ConflictPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConflictPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.result = sync.ResolveSkip
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(conflictOptions)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, m.keys.Pick):
			m.cursor = int(msg.Runes[0] - '1')
			return m.choose()

		case key.Matches(msg, m.keys.Select):
			return m.choose()
		}
	}

	return m, nil
}

func (m ConflictPickerModel) choose() (tea.Model, tea.Cmd) {
	m.result = conflictOptions[m.cursor].resolution
	m.quitting = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m ConflictPickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render("Both Razdfile.yml and mise.toml changed since the last sync"))
	b.WriteString("\n\n")

	if m.preview != nil {
		if m.preview.ToolsDiffer() {
			b.WriteString(Styles.Help.Render("  " + m.preview.DiffSummary()))
			b.WriteString("\n")
			for _, line := range m.preview.Lines(maxPreviewLines) {
				b.WriteString("  ")
				b.WriteString(m.styleDiffLine(line))
				b.WriteString("\n")
			}
		} else {
			b.WriteString(Styles.Help.Render("  Tool sections are identical; other content differs."))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for i, opt := range conflictOptions {
		label := fmt.Sprintf("%d. %s", i+1, opt.label)
		if i == m.cursor {
			b.WriteString(Styles.Selected.Render("> " + label))
			b.WriteString(Styles.Help.Render("  " + opt.detail))
		} else {
			b.WriteString(Styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}
	return b.String()
}

func (m ConflictPickerModel) styleDiffLine(line string) string {
	if m.width > 4 {
		line = truncateText(line, m.width-4)
	}
	switch {
	case strings.HasPrefix(line, "@@"):
		return Styles.Hunk.Render(line)
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return line
	case strings.HasPrefix(line, "+"):
		return Styles.Added.Render(line)
	case strings.HasPrefix(line, "-"):
		return Styles.Removed.Render(line)
	default:
		return line
	}
}

func (m ConflictPickerModel) renderShortHelp() string {
	keys := []string{"↑/↓ navigate", "enter select", "1-3 choose", "? help", "q skip"}
	return Styles.Help.Render(strings.Join(keys, " • "))
}

func (m ConflictPickerModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down

Actions:
  Enter    Apply the highlighted choice
  1-3      Apply a choice directly

General:
  ?        Toggle full help
  q/Esc    Skip without changing either file`
	return Styles.Help.Render(help)
}

// Result returns the resolution chosen by the user.
func (m ConflictPickerModel) Result() sync.Resolution {
	return m.result
}

// RunConflictPicker shows the picker and returns the chosen resolution.
// Quitting skips.
func RunConflictPicker(preview *sync.ConflictPreview, opts ...tea.ProgramOption) (sync.Resolution, error) {
	finalModel, err := Run(NewConflictPickerModel(preview), opts...)
	if err != nil {
		return sync.ResolveSkip, err
	}
	if m, ok := finalModel.(ConflictPickerModel); ok {
		return m.Result(), nil
	}
	return sync.ResolveSkip, nil
}
