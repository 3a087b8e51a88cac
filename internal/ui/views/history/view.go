package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	historydto "tutor/internal/modules/history/dto"
	"tutor/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	ListRecords(ctx context.Context) ([]historydto.RecordOutput, error)
	GetRecord(ctx context.Context, sessionID string) (historydto.RecordDetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RecordsLoadedMsg struct {
	Records []historydto.RecordOutput
	Err     error
}

type DetailLoadedMsg struct {
	Detail historydto.RecordDetailOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type recordItem struct {
	record historydto.RecordOutput
}

func (i recordItem) Title() string { return i.record.PlanTitle }
func (i recordItem) Description() string {
	return fmt.Sprintf("%s  %d/%d mastered",
		i.record.CompletedAt.Format("2006-01-02 15:04"),
		i.record.MasteredCount, i.record.CheckpointCount)
}
func (i recordItem) FilterValue() string { return i.record.PlanTitle + " " + i.record.SessionID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    HistoryPort
	list    list.Model
	detail  historydto.RecordDetailOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadRecordsCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case RecordsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "History — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Records))
		for i, r := range msg.Records {
			items[i] = recordItem{record: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Records) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Records[0].SessionID))
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(recordItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.record.SessionID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Reload re-fetches the record list, used after a session completes.
func (m Model) Reload() tea.Cmd {
	return m.loadRecordsCmd()
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.SessionID == "" {
		return theme.Muted.Render("Select a session to see its outcomes")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.PlanTitle) + "\n\n")
	sb.WriteString(theme.Muted.Render("session:   ") + d.SessionID + "\n")
	sb.WriteString(theme.Muted.Render("started:   ") + d.StartedAt.Format("2006-01-02 15:04") + "\n")
	sb.WriteString(theme.Muted.Render("completed: ") + d.CompletedAt.Format("2006-01-02 15:04") + "\n")
	sb.WriteString(fmt.Sprintf("%s%.0f%% (%d/%d)\n\n",
		theme.Muted.Render("mastery:   "), d.MasteryRate*100, d.MasteredCount, d.CheckpointCount))
	for _, o := range d.Outcomes {
		mark := theme.Bad.Render("✗")
		if o.Mastered {
			mark = theme.Good.Render("✓")
		}
		sb.WriteString(fmt.Sprintf("%s %s  %.0f%%", mark, o.Topic, o.Score*100))
		if o.RemediationAttempts > 0 {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("  (%d remediations)", o.RemediationAttempts)))
		}
		if o.ForcedContent {
			sb.WriteString(theme.Hot.Render("  forced content"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) loadRecordsCmd() tea.Cmd {
	return func() tea.Msg {
		records, err := m.port.ListRecords(context.Background())
		return RecordsLoadedMsg{Records: records, Err: err}
	}
}

func (m Model) loadDetailCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetRecord(context.Background(), sessionID)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
