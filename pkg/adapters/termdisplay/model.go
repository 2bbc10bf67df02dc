package termdisplay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ideamans/go-l10n"

	"github.com/user/yuvplay/pkg/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1E88E5")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0E0E0"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90A4AE"))
)

// frameMsg carries a rendered picture from Present to the program.
type frameMsg struct {
	picture string
	label   string
}

// keySink receives terminal events from the model.
type keySink interface {
	key(ev pipeline.KeyEvent)
	resize(cols, rows int)
}

type model struct {
	title   string
	sink    keySink
	picture string
	label   string
}

func newModel(title string, sink keySink) *model {
	return &model{title: title, sink: sink}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.sink.key(keyEvent(msg))
	case tea.WindowSizeMsg:
		m.sink.resize(msg.Width, msg.Height)
	case frameMsg:
		m.picture = msg.picture
		m.label = msg.label
	}
	return m, nil
}

func (m *model) View() string {
	var sb strings.Builder
	if m.picture != "" {
		sb.WriteString(m.picture)
		sb.WriteByte('\n')
	}
	sb.WriteString(titleStyle.Render(m.title))
	if m.label != "" {
		sb.WriteString(" ")
		sb.WriteString(labelStyle.Render(m.label))
	}
	sb.WriteString(" ")
	sb.WriteString(hintStyle.Render(l10n.T("space: pause  q: quit")))
	return sb.String()
}

// keyEvent maps a terminal key to a player key.
func keyEvent(msg tea.KeyMsg) pipeline.KeyEvent {
	switch msg.String() {
	case " ":
		return pipeline.KeyEvent{Kind: pipeline.KeyPause, Rune: ' '}
	case "q", "esc", "ctrl+c":
		ev := pipeline.KeyEvent{Kind: pipeline.KeyQuit}
		if len(msg.Runes) == 1 {
			ev.Rune = msg.Runes[0]
		}
		return ev
	}
	ev := pipeline.KeyEvent{Kind: pipeline.KeyOther}
	if len(msg.Runes) == 1 {
		ev.Rune = msg.Runes[0]
	}
	return ev
}
