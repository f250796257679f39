package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
	"github.com/five82/walkin/internal/workflow"
)

// Column widths for the queue list.
const (
	colName      = 24
	colCheckin   = 9
	colWait      = 14
	colCounselor = 20
)

// visibleVisits returns the filtered list the queue page shows.
func (m Model) visibleVisits() []clinic.PatientVisit {
	return queue.FilterByStatus(m.snapshot.Visits, m.snapshot.Filter)
}

// selectedVisit returns the visit under the cursor.
func (m Model) selectedVisit() (clinic.PatientVisit, bool) {
	visits := m.visibleVisits()
	if m.selectedRow < 0 || m.selectedRow >= len(visits) {
		return clinic.PatientVisit{}, false
	}
	return visits[m.selectedRow], true
}

func (m *Model) clampSelection() {
	n := len(m.visibleVisits())
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m *Model) setFilter(f queue.Filter) {
	if m.store != nil {
		m.store.SetFilter(f)
	}
	m.snapshot.Filter = f
	m.selectedRow = 0
}

// handleQueueKey processes keyboard input for the queue page.
func (m Model) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleFilter):
		m.setFilter(m.snapshot.Filter.Next())
		return m, nil

	case key.Matches(msg, m.keys.FilterNumber):
		idx := int(msg.Runes[0] - '1')
		if filters := queue.Filters(); idx >= 0 && idx < len(filters) {
			m.setFilter(filters[idx])
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, m.refreshCmd()
	}

	if action, ok := m.keys.actionFor(msg); ok {
		visit, selected := m.selectedVisit()
		if !selected {
			return m, nil
		}
		return m.startAction(action, visit)
	}

	visits := m.visibleVisits()
	itemCount := len(visits)
	if itemCount == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < itemCount-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = itemCount - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(itemCount-1, m.selectedRow+m.listHeight()/2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(0, m.selectedRow-m.listHeight()/2)
	case key.Matches(msg, m.keys.Details):
		return m.openDetail(visits[m.selectedRow].PatientID)
	}

	return m, nil
}

// startAction validates locally, opens the input dialog an action needs, or
// runs it directly.
func (m Model) startAction(action workflow.Action, visit clinic.PatientVisit) (tea.Model, tea.Cmd) {
	if m.busy {
		status := m.setStatus(statusError, "Another update is still running")
		return m, status
	}

	guard := workflow.CanApply(workflow.TransitionContext{
		Action: action,
		Row:    visit.Row,
		Status: visit.Status,
	})
	if guard.Illegal {
		status := m.setStatus(statusError, guard.Reason)
		return m, status
	}

	switch action {
	case workflow.ActionAssign:
		if visit.Row <= 0 {
			break
		}
		m.modal = modalCounselor
		m.modalVisit = visit
		m.counselorIdx = 0
		return m, nil
	case workflow.ActionCancel:
		if visit.Row <= 0 {
			break
		}
		m.modal = modalCancelReason
		m.modalVisit = visit
		m.reasonInput.SetValue("")
		return m, m.reasonInput.Focus()
	}

	if !guard.Allowed {
		status := m.setStatus(statusError, guard.Reason)
		return m, status
	}
	return m.runAction(action, visit, workflow.Input{})
}

// runAction executes a transition in the background. Only one runs at a time.
func (m Model) runAction(action workflow.Action, visit clinic.PatientVisit, in workflow.Input) (tea.Model, tea.Cmd) {
	if m.controller == nil {
		return m, nil
	}
	m.busy = true
	m.modal = modalNone
	status := m.setStatus(statusInfo, action.Label()+"...")

	controller := m.controller
	ctx := m.ctx
	run := func() tea.Msg {
		outcome, err := controller.Apply(ctx, action, visit, in)
		return actionResultMsg{action: action, outcome: outcome, err: err}
	}
	return m, tea.Batch(status, run)
}

func (m Model) handleActionResult(msg actionResultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.logger.Debug().Err(msg.err).Str("action", string(msg.action)).Msg("action failed")
		status := m.setStatus(statusError, workflow.UserMessage(msg.err))
		return m, tea.Batch(status, fetchSnapshotCmd(m.store))
	}

	var status tea.Cmd
	switch {
	case msg.outcome.RefreshErr != nil:
		status = m.setStatus(statusError, "Failed to load data: "+msg.outcome.RefreshErr.Error())
	case msg.outcome.Message != "":
		status = m.setStatus(statusSuccess, msg.outcome.Message)
	default:
		m.statusText = ""
	}
	return m, tea.Batch(status, fetchSnapshotCmd(m.store))
}

// listHeight is the number of visit rows that fit on screen.
func (m Model) listHeight() int {
	// metrics row, heading, blank, selected-visit panel (3 lines)
	h := m.contentHeight() - 7
	if h < 1 {
		h = 1
	}
	return h
}

// renderQueue renders the queue page.
func (m Model) renderQueue() string {
	styles := m.theme.Styles()
	proj := queue.Project(m.snapshot.Visits, m.snapshot.Filter)

	var b strings.Builder
	b.WriteString(m.renderMetrics(proj))
	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render(proj.Heading()))
	b.WriteString("\n")

	switch {
	case !m.snapshot.Loaded() && m.snapshot.LastError != nil:
		b.WriteString(m.renderLoadFailure())
		return b.String()
	case !m.snapshot.Loaded():
		b.WriteString(styles.MutedText.Render("Loading patients..."))
		return b.String()
	case len(proj.Visits) == 0:
		b.WriteString(styles.MutedText.Render("No patients with status: " + proj.Filter.String()))
		return b.String()
	}

	height := m.listHeight()
	start := 0
	if m.selectedRow >= height {
		start = m.selectedRow - height + 1
	}
	end := min(len(proj.Visits), start+height)

	for i := start; i < end; i++ {
		b.WriteString(m.renderVisitRow(proj.Visits[i], i == m.selectedRow))
		b.WriteString("\n")
	}
	for i := end - start; i < height; i++ {
		b.WriteString("\n")
	}

	if visit, ok := m.selectedVisit(); ok {
		b.WriteString(m.renderVisitPanel(visit))
	}
	return b.String()
}

// renderMetrics draws one count per filter, highlighting the active one.
func (m Model) renderMetrics(proj queue.Projection) string {
	styles := m.theme.Styles()
	parts := make([]string, 0, 6)
	for i, f := range queue.Filters() {
		label := fmt.Sprintf("%d %s %d", i+1, f.String(), proj.Counts.For(f))
		style := styles.MutedText
		if f == proj.Filter {
			style = styles.Selected.Bold(true)
		}
		if status, ok := f.Status(); ok && f != proj.Filter && proj.Counts.For(f) > 0 {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColors[status.Slug()]))
		}
		parts = append(parts, style.Padding(0, 1).Render(label))
	}
	return strings.Join(parts, " ")
}

// renderLoadFailure explains a failed first load.
func (m Model) renderLoadFailure() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Failed to Load Data"))
	b.WriteString("\n")
	b.WriteString(styles.Text.Render(m.snapshot.LastError.Error()))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Check the Logs page (L) for more details."))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Danger)).
		Padding(0, 2).
		Render(b.String())
}

// renderVisitRow renders one line of the queue list.
func (m Model) renderVisitRow(v clinic.PatientVisit, selected bool) string {
	styles := m.theme.Styles()

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	name := padRight(truncate(v.FullName(), colName), colName)
	checkin := padRight(v.CheckinClock(), colCheckin)

	class := queue.ClassifyWait(v.Status, v.WaitMinutes)
	waitText := fmt.Sprintf("%d min wait", v.WaitMinutes)
	if class == queue.WaitDone {
		waitText = "✓ Visit ended"
	}
	wait := styles.WaitStyle(class).Render(padRight(waitText, colWait))

	counselor := v.AssignedCounselor
	if counselor == "" {
		counselor = "-"
	}
	counselor = padRight(truncate(counselor, colCounselor), colCounselor)

	badge := styles.StatusStyle(v.Status).Render(strings.ToUpper(v.Status.String()))

	line := cursor + name + " " + checkin + " " + wait + " " + counselor + " " + badge
	if m.width >= LayoutFlagsWidth {
		if flags := m.renderFlags(queue.Flags(v)); flags != "" {
			line += "  " + flags
		}
	}

	if selected {
		return styles.Selected.Width(m.width).Render(line)
	}
	return line
}

// renderFlags renders intake flags as compact tags.
func (m Model) renderFlags(flags []queue.Flag) string {
	if len(flags) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		style := styles.InfoText
		switch f.Kind {
		case queue.FlagSelfPay:
			style = styles.WarningText
		case queue.FlagPregnant:
			style = styles.DangerText
		case queue.FlagUAReady:
			style = styles.SuccessText
		case queue.FlagResidential, queue.FlagMAT:
			style = styles.AccentText
		}
		parts = append(parts, style.Render("["+truncate(f.Label, 16)+"]"))
	}
	return strings.Join(parts, " ")
}

// renderVisitPanel shows the intake details of the selected visit.
func (m Model) renderVisitPanel(v clinic.PatientVisit) string {
	styles := m.theme.Styles()
	sep := styles.FaintText.Render(" | ")

	line1 := styles.Text.Bold(true).Render(v.FullName()) + sep +
		styles.MutedText.Render("ID "+orNA(v.PatientID)) + sep +
		styles.MutedText.Render("DOB "+orNA(v.DateOfBirth))
	if v.Phone != "" {
		line1 += sep + styles.MutedText.Render("Phone "+v.Phone)
	}

	var line2 string
	switch v.Status {
	case clinic.StatusWaiting:
		line2 = styles.MutedText.Render("Select counselor to assign (a)")
	case clinic.StatusAssigned:
		line2 = styles.MutedText.Render("Assigned To: ") + styles.Text.Render(orDefault(v.AssignedCounselor, "Not assigned"))
	case clinic.StatusInSession:
		line2 = styles.MutedText.Render("With Counselor: ") + styles.Text.Render(orDefault(v.AssignedCounselor, "Not assigned"))
	case clinic.StatusCompleted:
		line2 = styles.MutedText.Render("Seen By: ") + styles.Text.Render(orDefault(v.AssignedCounselor, "Not assigned"))
	case clinic.StatusCancelled:
		if v.AssignedCounselor != "" {
			line2 = styles.MutedText.Render("Was Assigned To: ") + styles.Text.Render(v.AssignedCounselor) + "  "
		}
		if v.Notes != "" {
			line2 += styles.DangerText.Render(v.Notes)
		}
	}

	flags := m.renderFlags(queue.Flags(v))

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.FaintText.Render(strings.Repeat("─", max(10, min(m.width, 80)))),
		line1,
		strings.TrimSpace(line2+"  "+flags),
	)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
