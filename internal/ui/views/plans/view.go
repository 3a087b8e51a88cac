package plans

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	plandto "tutor/internal/modules/curriculum/dto"
	"tutor/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type PlanPort interface {
	ListPlans(ctx context.Context) ([]plandto.PlanOutput, error)
	GetPlan(ctx context.Context, id string) (plandto.PlanDetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type PlansLoadedMsg struct {
	Plans []plandto.PlanOutput
	Err   error
}

type DetailLoadedMsg struct {
	Detail plandto.PlanDetailOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type planItem struct {
	plan plandto.PlanOutput
}

func (i planItem) Title() string       { return i.plan.Title }
func (i planItem) Description() string { return fmt.Sprintf("%d checkpoints", i.plan.Checkpoints) }
func (i planItem) FilterValue() string { return i.plan.ID + " " + i.plan.Title }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    PlanPort
	list    list.Model
	detail  plandto.PlanDetailOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port PlanPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Plans"
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
	return tea.Batch(m.loadPlansCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case PlansLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Plans — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Plans))
		for i, p := range msg.Plans {
			items[i] = planItem{plan: p}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Plans) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Plans[0].ID))
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
			if item, ok := m.list.SelectedItem().(planItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.plan.ID))
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
			m.spinner.View()+" Loading plans…")
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

// SelectedPlanID returns the current selection's plan ID, if any.
func (m Model) SelectedPlanID() (string, bool) {
	if item, ok := m.list.SelectedItem().(planItem); ok {
		return item.plan.ID, true
	}
	return "", false
}

// SelectedPlanTitle returns the current selection's title.
func (m Model) SelectedPlanTitle() string {
	if item, ok := m.list.SelectedItem().(planItem); ok {
		return item.plan.Title
	}
	return ""
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Reload re-fetches the plan list, used after a reindex.
func (m Model) Reload() tea.Cmd {
	return m.loadPlansCmd()
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
	if d.ID == "" {
		return theme.Muted.Render("Select a plan to see its checkpoints")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:      ") + d.ID + "\n")
	sb.WriteString(theme.Muted.Render("updated: ") + d.UpdatedAt.Format("2006-01-02") + "\n\n")
	for _, cp := range d.Checkpoints {
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			theme.Hot.Render(fmt.Sprintf("%2d.", cp.OrderIndex+1)),
			cp.Topic,
			theme.Muted.Render("["+cp.Difficulty+"]")))
		for _, obj := range cp.Objectives {
			sb.WriteString(theme.Muted.Render("      • "+obj) + "\n")
		}
	}
	return sb.String()
}

func (m Model) loadPlansCmd() tea.Cmd {
	return func() tea.Msg {
		plans, err := m.port.ListPlans(context.Background())
		return PlansLoadedMsg{Plans: plans, Err: err}
	}
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetPlan(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
