package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	plandto "tutor/internal/modules/curriculum/dto"
	historydto "tutor/internal/modules/history/dto"
	providerdto "tutor/internal/modules/provider/dto"
	sessiondto "tutor/internal/modules/session/dto"
	"tutor/internal/ui/components"
	"tutor/internal/ui/theme"
	historyview "tutor/internal/ui/views/history"
	plansview "tutor/internal/ui/views/plans"
	sessionview "tutor/internal/ui/views/session"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type planPort interface {
	ListPlans(ctx context.Context) ([]plandto.PlanOutput, error)
	GetPlan(ctx context.Context, id string) (plandto.PlanDetailOutput, error)
	Reindex(ctx context.Context) error
}

type sessionPort interface {
	Start(ctx context.Context, planID string) (sessiondto.StartSessionOutput, error)
	Run(ctx context.Context) (sessiondto.Directive, error)
	Answer(ctx context.Context, answers []sessiondto.AnswerInput) (sessiondto.Directive, error)
	Status(ctx context.Context) (sessiondto.SessionStatusOutput, error)
	Abort(ctx context.Context) error
}

type historyPort interface {
	ListRecords(ctx context.Context) ([]historydto.RecordOutput, error)
	GetRecord(ctx context.Context, sessionID string) (historydto.RecordDetailOutput, error)
	Reindex(ctx context.Context) error
}

type providerPort interface {
	Doctor(ctx context.Context) ([]providerdto.DoctorResult, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabPlans tabID = iota
	tabSession
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Plans", "Session", "History"}

// ─── async messages ───────────────────────────────────────────────────────────

type reindexedMsg struct {
	what string
	err  error
}

type doctorMsg struct {
	results []providerdto.DoctorResult
	err     error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Start   key.Binding
	Advance key.Binding
	Abort   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start session")),
		Advance: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "advance session")),
		Abort:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "abort session")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Start},
		{k.Advance, k.Abort},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay, and the command palette. All business logic is delegated to port
// interfaces; all rendering is delegated to sub-views.
type Model struct {
	plan     planPort
	history  historyPort
	provider providerPort

	planView    plansview.Model
	sessionView sessionview.Model
	historyView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(plan planPort, session sessionPort, history historyPort, provider providerPort) Model {
	return Model{
		plan:        plan,
		history:     history,
		provider:    provider,
		planView:    plansview.New(planPortBridge{p: plan}),
		sessionView: sessionview.New(sessionPortBridge{p: session}),
		historyView: historyview.New(historyPortBridge{p: history}),
		activeTab:   tabPlans,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.planView.Init(),
		m.sessionView.Init(),
		m.historyView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case sessionview.StartedMsg:
		if msg.Err != nil {
			m.status = "session start failed: " + msg.Err.Error()
		}

	case sessionview.DirectiveMsg:
		if msg.Err == nil && msg.Directive.Kind == sessiondto.DirectiveSessionFinished {
			m.status = "session finished"
			cmds = append(cmds, m.historyView.Reload())
		}

	case reindexedMsg:
		if msg.err != nil {
			m.status = msg.what + " reindex failed: " + msg.err.Error()
		} else {
			m.status = msg.what + " reindexed"
			if msg.what == "plans" {
				cmds = append(cmds, m.planView.Reload())
			} else {
				cmds = append(cmds, m.historyView.Reload())
			}
		}

	case doctorMsg:
		if msg.err != nil {
			m.status = "provider doctor: " + msg.err.Error()
		} else {
			m.status = renderDoctorLine(msg.results)
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when it is consuming free typing.
		if m.subViewTyping() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "s":
			if m.activeTab == tabPlans {
				if id, ok := m.planView.SelectedPlanID(); ok {
					m.activeTab = tabSession
					m.status = "starting: " + m.planView.SelectedPlanTitle()
					cmds = append(cmds, m.sessionView.StartPlan(id))
				}
			}
		}
	}

	// Propagate the message to the active tab's sub-view. The session view
	// also sees messages while inactive so in-flight engine calls land.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabPlans:
		m.planView, tabCmd = m.planView.Update(msg)
	case tabSession:
		m.sessionView, tabCmd = m.sessionView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	if m.activeTab != tabSession {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			var bgCmd tea.Cmd
			m.sessionView, bgCmd = m.sessionView.Update(msg)
			cmds = append(cmds, bgCmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabPlans:
		return m.planView.View()
	case tabSession:
		return m.sessionView.View()
	case tabHistory:
		return m.historyView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "tutor  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "session:start":
		planID := ""
		if len(parts) >= 2 {
			planID = parts[1]
		} else if selected, ok := m.planView.SelectedPlanID(); ok {
			planID = selected
		}
		if planID == "" {
			m.status = "usage: session:start <plan-id>"
			return m, nil
		}
		m.activeTab = tabSession
		m.status = "starting: " + planID
		return m, m.sessionView.StartPlan(planID)

	case "session:step", "session:run":
		m.activeTab = tabSession
		var cmd tea.Cmd
		m.sessionView, cmd = m.sessionView.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
		return m, cmd

	case "session:abort":
		m.activeTab = tabSession
		var cmd tea.Cmd
		m.sessionView, cmd = m.sessionView.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
		return m, cmd

	case "plan:reindex":
		return m, m.reindexCmd("plans")

	case "history:reindex":
		return m, m.reindexCmd("history")

	case "provider:doctor":
		return m, m.doctorCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewTyping reports whether the active tab is consuming free-form typed
// input, in which case global key bindings must yield.
func (m Model) subViewTyping() bool {
	switch m.activeTab {
	case tabPlans:
		return m.planView.Filtering()
	case tabSession:
		return m.sessionView.Answering()
	case tabHistory:
		return m.historyView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.planView, _ = m.planView.Update(sz)
	m.sessionView, _ = m.sessionView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

func renderDoctorLine(results []providerdto.DoctorResult) string {
	if len(results) == 0 {
		return "no providers configured"
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		mark := "ok"
		if r.Error != "" || !r.ChecksumValid || !r.BinaryReachable || !r.LifecycleOK {
			mark = "unhealthy"
		}
		parts = append(parts, r.Name+": "+mark)
	}
	return strings.Join(parts, "  ")
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) reindexCmd(what string) tea.Cmd {
	return func() tea.Msg {
		var err error
		if what == "plans" {
			err = m.plan.Reindex(context.Background())
		} else {
			err = m.history.Reindex(context.Background())
		}
		return reindexedMsg{what: what, err: err}
	}
}

func (m Model) doctorCmd() tea.Cmd {
	return func() tea.Msg {
		results, err := m.provider.Doctor(context.Background())
		return doctorMsg{results: results, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed
// by a specific sub-view, keeping view packages free of knowledge about the
// wider port surface.

type planPortBridge struct{ p planPort }

func (b planPortBridge) ListPlans(ctx context.Context) ([]plandto.PlanOutput, error) {
	return b.p.ListPlans(ctx)
}
func (b planPortBridge) GetPlan(ctx context.Context, id string) (plandto.PlanDetailOutput, error) {
	return b.p.GetPlan(ctx, id)
}

type sessionPortBridge struct{ p sessionPort }

func (b sessionPortBridge) Start(ctx context.Context, planID string) (sessiondto.StartSessionOutput, error) {
	return b.p.Start(ctx, planID)
}
func (b sessionPortBridge) Run(ctx context.Context) (sessiondto.Directive, error) {
	return b.p.Run(ctx)
}
func (b sessionPortBridge) Answer(ctx context.Context, answers []sessiondto.AnswerInput) (sessiondto.Directive, error) {
	return b.p.Answer(ctx, answers)
}
func (b sessionPortBridge) Status(ctx context.Context) (sessiondto.SessionStatusOutput, error) {
	return b.p.Status(ctx)
}
func (b sessionPortBridge) Abort(ctx context.Context) error {
	return b.p.Abort(ctx)
}

type historyPortBridge struct{ p historyPort }

func (b historyPortBridge) ListRecords(ctx context.Context) ([]historydto.RecordOutput, error) {
	return b.p.ListRecords(ctx)
}
func (b historyPortBridge) GetRecord(ctx context.Context, sessionID string) (historydto.RecordDetailOutput, error) {
	return b.p.GetRecord(ctx, sessionID)
}
