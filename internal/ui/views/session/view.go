package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "tutor/internal/modules/session/dto"
	apperrors "tutor/internal/platform/errors"
	"tutor/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type SessionPort interface {
	Start(ctx context.Context, planID string) (sessiondto.StartSessionOutput, error)
	Run(ctx context.Context) (sessiondto.Directive, error)
	Answer(ctx context.Context, answers []sessiondto.AnswerInput) (sessiondto.Directive, error)
	Status(ctx context.Context) (sessiondto.SessionStatusOutput, error)
	Abort(ctx context.Context) error
}

// ─── messages ────────────────────────────────────────────────────────────────

type StartedMsg struct {
	Out sessiondto.StartSessionOutput
	Err error
}

type DirectiveMsg struct {
	Directive sessiondto.Directive
	Err       error
}

type StatusMsg struct {
	Status sessiondto.SessionStatusOutput
	Err    error
}

type AbortedMsg struct{ Err error }

// ─── model ───────────────────────────────────────────────────────────────────

// Model drives one checkpoint session. The engine tells it what it needs
// next through directives; the view's only jobs are to render the current
// directive and to collect answers when one asks for them.
type Model struct {
	port SessionPort

	status    sessiondto.SessionStatusOutput
	hasStatus bool
	directive sessiondto.Directive

	// answer collection state, active only while the directive is need_answers
	answering bool
	answerIdx int
	answers   []sessiondto.AnswerInput
	input     textinput.Model

	content viewport.Model
	spinner spinner.Model
	busy    bool
	note    string
	width   int
	height  int
}

func New(port SessionPort) Model {
	ti := textinput.New()
	ti.Placeholder = "type your answer…"
	ti.CharLimit = 2000

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
		input:   ti,
		content: vp,
		spinner: sp,
		note:    "no session — pick a plan and press s",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatusCmd(), m.spinner.Tick)
}

// StartPlan starts a session on the given plan and runs it to the first
// directive that needs the learner.
func (m Model) StartPlan(planID string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.port.Start(context.Background(), planID)
		if err != nil {
			return StartedMsg{Err: err}
		}
		directive, err := m.port.Run(context.Background())
		return DirectiveMsg{Directive: directive, Err: err}
	}
}

// Busy reports whether an engine call is in flight.
func (m Model) Busy() bool { return m.busy }

// Answering reports whether the view is consuming free-form typed input,
// in which case global key bindings must yield.
func (m Model) Answering() bool { return m.answering }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.content.Width = m.width - 4
		m.content.Height = m.height - 7
		m.input.Width = m.width - 8

	case StartedMsg:
		m.busy = false
		if msg.Err != nil {
			m.note = "start failed: " + msg.Err.Error()
		}
		cmds = append(cmds, m.loadStatusCmd())

	case DirectiveMsg:
		m.busy = false
		if msg.Err != nil {
			if errors.Is(msg.Err, apperrors.ErrNoActiveSession) {
				m.note = "no session — pick a plan and press s"
			} else {
				m.note = msg.Err.Error()
			}
			return m, m.loadStatusCmd()
		}
		m.applyDirective(msg.Directive)
		cmds = append(cmds, m.loadStatusCmd())

	case StatusMsg:
		if msg.Err != nil {
			m.hasStatus = false
		} else {
			m.hasStatus = true
			m.status = msg.Status
		}

	case AbortedMsg:
		m.busy = false
		if msg.Err != nil {
			m.note = "abort failed: " + msg.Err.Error()
		} else {
			m.hasStatus = false
			m.directive = sessiondto.Directive{}
			m.answering = false
			m.note = "session aborted"
			m.content.SetContent("")
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if m.busy {
			return m, tea.Batch(cmds...)
		}
		if m.answering {
			return m.updateAnswering(msg)
		}
		switch msg.String() {
		case "r", "enter":
			if m.hasStatus && !terminalPhase(m.status.Phase) {
				m.busy = true
				m.note = "working…"
				cmds = append(cmds, m.runCmd())
			}
		case "x":
			if m.hasStatus {
				m.busy = true
				cmds = append(cmds, m.abortCmd())
			}
		}
	}

	var vCmd tea.Cmd
	m.content, vCmd = m.content.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updateAnswering(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		question := m.directive.Questions[m.answerIdx]
		m.answers = append(m.answers, sessiondto.AnswerInput{QuestionID: question.ID, Text: text})
		m.input.SetValue("")
		m.answerIdx++
		if m.answerIdx < len(m.directive.Questions) {
			m.content.SetContent(m.renderQuestions())
			return m, nil
		}
		m.answering = false
		m.input.Blur()
		m.busy = true
		m.note = "grading…"
		return m, m.submitAnswersCmd(m.answers)
	case "esc":
		// restart the current question's text, not the whole set
		m.input.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := m.renderHeader()
	body := m.content.View()

	var footer string
	switch {
	case m.busy:
		footer = m.spinner.View() + " " + m.note
	case m.answering:
		footer = "> " + m.input.View()
	default:
		footer = theme.Muted.Render(m.note)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) applyDirective(directive sessiondto.Directive) {
	m.directive = directive
	m.answering = false

	switch directive.Kind {
	case sessiondto.DirectiveNeedAnswers:
		m.answering = true
		m.answerIdx = 0
		m.answers = nil
		m.note = fmt.Sprintf("answer %d questions on %s", len(directive.Questions), directive.Topic)
		m.content.SetContent(m.renderQuestions())
		m.input.Focus()
	case sessiondto.DirectiveShowRemediation:
		m.note = "review the explanations, then press r to retry"
		m.content.SetContent(m.renderRemediation())
	case sessiondto.DirectiveCheckpointResult:
		m.note = "press r to continue to the next checkpoint"
		m.content.SetContent(m.renderResult())
	case sessiondto.DirectiveSessionFinished:
		m.note = "session complete"
		m.content.SetContent(m.renderSummary())
	case sessiondto.DirectiveErrored:
		m.note = "session failed"
		m.content.SetContent(theme.Bad.Render("Session failed") + "\n\n" + directive.Reason)
	default:
		m.note = "press r to continue"
	}
}

func (m Model) renderHeader() string {
	if !m.hasStatus {
		return theme.Title.Render("Session") + "\n"
	}
	s := m.status
	progress := fmt.Sprintf("checkpoint %d/%d  mastered %d", s.CurrentIndex+1, s.CheckpointCount, s.MasteredCount)
	line := theme.Title.Render(s.PlanTitle) + "  " +
		theme.Muted.Render(s.Phase) + "  " +
		theme.Hot.Render(progress)
	if s.CurrentTopic != "" {
		line += "  " + s.CurrentTopic
	}
	return line + "\n"
}

func (m Model) renderQuestions() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Checkpoint: "+m.directive.Topic) + "\n\n")
	for i, q := range m.directive.Questions {
		marker := "  "
		style := theme.Muted
		switch {
		case i < m.answerIdx:
			marker = "✓ "
			style = theme.Good
		case i == m.answerIdx:
			marker = "→ "
			style = lipgloss.NewStyle().Foreground(theme.Text)
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s%d. %s", marker, i+1, q.Text)) + "\n")
	}
	return sb.String()
}

func (m Model) renderRemediation() string {
	var sb strings.Builder
	sb.WriteString(theme.Hot.Render(fmt.Sprintf("Remediation — attempt %d", m.directive.AttemptNumber)) + "\n\n")
	objectives := make([]string, 0, len(m.directive.Explanations))
	for objective := range m.directive.Explanations {
		objectives = append(objectives, objective)
	}
	sort.Strings(objectives)
	for _, objective := range objectives {
		sb.WriteString(theme.Title.Render(objective) + "\n")
		sb.WriteString(m.directive.Explanations[objective] + "\n\n")
	}
	return sb.String()
}

func (m Model) renderResult() string {
	r := m.directive.Result
	if r == nil {
		return ""
	}
	verdict := theme.Bad.Render("not mastered")
	if r.Mastered {
		verdict = theme.Good.Render("mastered")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.Topic) + "  " + verdict + "\n\n")
	sb.WriteString(fmt.Sprintf("score:        %.0f%%\n", r.Score*100))
	sb.WriteString(fmt.Sprintf("remediations: %d\n", r.RemediationAttempts))
	if r.ForcedContent {
		sb.WriteString(theme.Hot.Render("content was force-accepted after repeated low relevance") + "\n")
	}
	return sb.String()
}

func (m Model) renderSummary() string {
	s := m.directive.Summary
	if s == nil {
		return theme.Good.Render("Session complete")
	}
	var sb strings.Builder
	sb.WriteString(theme.Good.Render("Session complete — "+s.PlanTitle) + "\n\n")
	sb.WriteString(fmt.Sprintf("mastered %d of %d checkpoints\n\n", s.MasteredCount, s.CheckpointCount))
	for _, o := range s.Outcomes {
		mark := theme.Bad.Render("✗")
		if o.Mastered {
			mark = theme.Good.Render("✓")
		}
		sb.WriteString(fmt.Sprintf("%s %s  %.0f%%\n", mark, o.Topic, o.Score*100))
	}
	return sb.String()
}

func terminalPhase(phase string) bool {
	return phase == "session_complete" || phase == "failed"
}

func (m Model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.port.Status(context.Background())
		return StatusMsg{Status: status, Err: err}
	}
}

func (m Model) runCmd() tea.Cmd {
	return func() tea.Msg {
		directive, err := m.port.Run(context.Background())
		return DirectiveMsg{Directive: directive, Err: err}
	}
}

func (m Model) submitAnswersCmd(answers []sessiondto.AnswerInput) tea.Cmd {
	return func() tea.Msg {
		directive, err := m.port.Answer(context.Background(), answers)
		if err != nil {
			return DirectiveMsg{Err: err}
		}
		if directive.Kind == sessiondto.DirectiveProceed {
			directive, err = m.port.Run(context.Background())
		}
		return DirectiveMsg{Directive: directive, Err: err}
	}
}

func (m Model) abortCmd() tea.Cmd {
	return func() tea.Msg {
		return AbortedMsg{Err: m.port.Abort(context.Background())}
	}
}
