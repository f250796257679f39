package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/config"
	"github.com/five82/walkin/internal/logtail"
	"github.com/five82/walkin/internal/state"
	"github.com/five82/walkin/internal/workflow"
)

// Backend is the read side of the clinic client used by the secondary pages.
type Backend interface {
	PatientHistory(ctx context.Context, patientID string) (clinic.PatientHistory, error)
	SearchPatients(ctx context.Context, term string) (clinic.SearchResult, error)
	Analytics(ctx context.Context, days int) (clinic.Analytics, error)
	Ping(ctx context.Context) (int, error)
}

// Transitioner applies a status transition to a visit.
type Transitioner interface {
	Apply(ctx context.Context, action workflow.Action, visit clinic.PatientVisit, in workflow.Input) (workflow.Outcome, error)
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Config     config.Config
	Client     Backend
	Store      *state.Store
	Controller Transitioner
	Refresh    func(ctx context.Context) error
	Login      func(ctx context.Context, username, password string) (clinic.Identity, error)
	Logout     func() error
	Logger     zerolog.Logger
	PollTick   time.Duration
}

// modalKind is the dialog drawn over the queue.
type modalKind int

const (
	modalNone modalKind = iota
	modalCounselor
	modalCancelReason
)

// statusKind picks the style of the status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	client     Backend
	store      *state.Store
	controller Transitioner
	refresh    func(ctx context.Context) error
	login      func(ctx context.Context, username, password string) (clinic.Identity, error)
	logout     func() error
	logger     zerolog.Logger
	config     config.Config
	pollTick   time.Duration
	keys       keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot state.Snapshot

	// Login form
	loginInputs [2]textinput.Model // username, password
	loginFocus  int
	loginErr    string
	loggingIn   bool

	// Queue state
	selectedRow int
	busy        bool
	refreshing  bool

	// Status line
	statusText string
	statusKind statusKind
	statusID   int

	// Action dialogs
	modal        modalKind
	modalVisit   clinic.PatientVisit
	counselorIdx int
	reasonInput  textinput.Model

	// Patient detail overlay
	showDetail     bool
	detailID       string
	detailLoading  bool
	detailHistory  *clinic.PatientHistory
	detailErr      error
	detailViewport viewport.Model

	// Search page
	searchInput    textinput.Model
	searchTerm     string
	searching      bool
	searchResult   *clinic.SearchResult
	searchErr      error
	searchSelected int

	// Analytics page
	analyticsDays     int
	analyticsLoading  bool
	analytics         *clinic.Analytics
	analyticsErr      error
	analyticsViewport viewport.Model

	// Logs page
	logEntries  []logtail.Entry
	logErr      error
	logViewport viewport.Model
	pinging     bool
	pingText    string
	pingErr     error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	days := opts.Config.AnalyticsDays
	if days <= 0 {
		days = analyticsWindows[1]
	}

	m := Model{
		ctx:           ctx,
		client:        opts.Client,
		store:         opts.Store,
		controller:    opts.Controller,
		refresh:       opts.Refresh,
		login:         opts.Login,
		logout:        opts.Logout,
		logger:        opts.Logger,
		config:        opts.Config,
		pollTick:      pollTick,
		keys:          DefaultKeyMap(),
		theme:         GetTheme(opts.Config.Theme),
		analyticsDays: days,
	}
	m.initLoginInputs()
	m.initReasonInput()
	m.initSearchInput()
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		textinput.Blink,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initViewports()
		}
		m.ready = true
		m.resizeViewports()
		m.updateDetailViewport()
		m.updateAnalyticsViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			m.logger.Debug().Err(msg.err).Msg("manual refresh failed")
			status := m.setStatus(statusError, "Failed to load data: "+msg.err.Error())
			return m, tea.Batch(status, fetchSnapshotCmd(m.store))
		}
		return m, fetchSnapshotCmd(m.store)

	case actionResultMsg:
		return m.handleActionResult(msg)

	case historyMsg:
		m.handleHistory(msg)
		return m, nil

	case searchMsg:
		m.handleSearchResult(msg)
		return m, nil

	case analyticsMsg:
		return m.handleAnalytics(msg)

	case logsMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil

	case pingMsg:
		m.pinging = false
		m.pingErr = msg.err
		m.pingText = ""
		if msg.err == nil {
			m.pingText = connectionOK(msg.counselors)
		}
		m.updateLogViewport()
		return m, nil

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.statusText = ""
		}
		return m, nil
	}

	return m, m.updateFocusedInput(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if !m.snapshot.LoggedIn {
		return m.renderLogin()
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	switch m.modal {
	case modalCounselor:
		return m.renderCounselorPicker()
	case modalCancelReason:
		return m.renderCancelPrompt()
	}

	return m.renderMain()
}

// handleKey routes keyboard input by screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if !m.snapshot.LoggedIn {
		return m.handleLoginKey(msg)
	}

	// Handle help overlay
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch m.modal {
	case modalCounselor:
		return m.handleCounselorKey(msg)
	case modalCancelReason:
		return m.handleCancelKey(msg)
	}

	if m.showDetail {
		return m.handleDetailKey(msg)
	}

	// Typing into the search box swallows the single-letter bindings.
	if m.snapshot.Page == state.PageSearch && m.searchInput.Focused() {
		return m.handleSearchInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.updateDetailViewport()
		m.updateAnalyticsViewport()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchPage(nextPage(m.snapshot.Page))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchPage(prevPage(m.snapshot.Page))

	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.ViewQueue):
		return m.switchPage(state.PageQueue)

	case key.Matches(msg, m.keys.ViewSearch):
		return m.switchPage(state.PageSearch)

	case key.Matches(msg, m.keys.ViewAnalytics):
		return m.switchPage(state.PageAnalytics)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchPage(state.PageLogs)

	case key.Matches(msg, m.keys.Logout):
		return m.doLogout()
	}

	// Page-specific keys
	switch m.snapshot.Page {
	case state.PageQueue:
		return m.handleQueueKey(msg)
	case state.PageSearch:
		return m.handleSearchKey(msg)
	case state.PageAnalytics:
		return m.handleAnalyticsKey(msg)
	case state.PageLogs:
		return m.handleLogsKey(msg)
	}

	return m, nil
}

var pageOrder = []state.Page{state.PageQueue, state.PageSearch, state.PageAnalytics, state.PageLogs}

func nextPage(p state.Page) state.Page {
	for i, candidate := range pageOrder {
		if candidate == p {
			return pageOrder[(i+1)%len(pageOrder)]
		}
	}
	return state.PageQueue
}

func prevPage(p state.Page) state.Page {
	for i, candidate := range pageOrder {
		if candidate == p {
			return pageOrder[(i+len(pageOrder)-1)%len(pageOrder)]
		}
	}
	return state.PageQueue
}

// switchPage records the page in the store and loads its data.
func (m Model) switchPage(p state.Page) (tea.Model, tea.Cmd) {
	if m.store != nil {
		m.store.SetPage(p)
	}
	m.snapshot.Page = p

	switch p {
	case state.PageSearch:
		m.searchInput.Focus()
		return m, textinput.Blink
	case state.PageAnalytics:
		if m.analytics == nil && !m.analyticsLoading {
			m.analyticsLoading = true
			return m, m.fetchAnalyticsCmd(m.analyticsDays)
		}
	case state.PageLogs:
		return m, m.readLogsCmd()
	}
	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Fetch latest snapshot
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	if m.snapshot.LoggedIn && m.snapshot.Page == state.PageLogs {
		cmds = append(cmds, m.readLogsCmd())
	}

	// Schedule next tick
	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// applySnapshot installs a new store snapshot and keeps the selection valid.
func (m *Model) applySnapshot(snap state.Snapshot) {
	wasLoggedIn := m.snapshot.LoggedIn
	m.snapshot = snap
	if wasLoggedIn && !snap.LoggedIn {
		m.resetSession()
	}
	m.clampSelection()
}

// resetSession drops every per-user view so the next login starts clean.
func (m *Model) resetSession() {
	m.selectedRow = 0
	m.busy = false
	m.modal = modalNone
	m.showDetail = false
	m.detailHistory = nil
	m.searchResult = nil
	m.searchErr = nil
	m.searchTerm = ""
	m.searchInput.SetValue("")
	m.analytics = nil
	m.analyticsErr = nil
	m.logEntries = nil
	m.pingText = ""
	m.pingErr = nil
	m.initLoginInputs()
}

func (m Model) doLogout() (tea.Model, tea.Cmd) {
	if m.logout != nil {
		if err := m.logout(); err != nil {
			m.logger.Warn().Err(err).Msg("logout failed")
		}
	} else if m.store != nil {
		m.store.Logout()
	}
	m.snapshot = state.Snapshot{}
	m.resetSession()
	status := m.setStatus(statusInfo, "Logged out")
	return m, status
}

// setStatus shows a transient message on the status line.
func (m *Model) setStatus(kind statusKind, text string) tea.Cmd {
	m.statusID++
	m.statusText = text
	m.statusKind = kind
	id := m.statusID
	return tea.Tick(StatusMessageTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// updateFocusedInput forwards non-key messages such as cursor blinks.
func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case !m.snapshot.LoggedIn:
		m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	case m.modal == modalCancelReason:
		m.reasonInput, cmd = m.reasonInput.Update(msg)
	case m.snapshot.Page == state.PageSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return cmd
}

func (m *Model) initViewports() {
	m.detailViewport = viewport.New(0, 0)
	m.analyticsViewport = viewport.New(0, 0)
	m.logViewport = viewport.New(0, 0)
}

// contentHeight is the space left after the header, command bar and status line.
func (m Model) contentHeight() int {
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) resizeViewports() {
	w := m.width
	if w < 20 {
		w = 20
	}
	h := m.contentHeight()
	m.detailViewport.Width = w
	m.detailViewport.Height = h
	m.analyticsViewport.Width = w
	m.analyticsViewport.Height = h
	m.logViewport.Width = w
	m.logViewport.Height = h - 2
	m.searchInput.Width = min(w-12, 60)
	m.reasonInput.Width = 44
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())
	b.WriteString("\n")

	b.WriteString(m.renderStatusLine())

	return b.String()
}

// renderContent renders the main content area based on current page.
func (m Model) renderContent() string {
	if m.showDetail {
		return m.renderDetail()
	}
	switch m.snapshot.Page {
	case state.PageQueue:
		return m.renderQueue()
	case state.PageSearch:
		return m.renderSearch()
	case state.PageAnalytics:
		return m.renderAnalytics()
	case state.PageLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type loginResultMsg struct {
	identity clinic.Identity
	err      error
}

type refreshDoneMsg struct {
	err error
}

type actionResultMsg struct {
	action  workflow.Action
	outcome workflow.Outcome
	err     error
}

type historyMsg struct {
	patientID string
	history   clinic.PatientHistory
	err       error
}

type searchMsg struct {
	term   string
	result clinic.SearchResult
	err    error
}

type analyticsMsg struct {
	days      int
	analytics clinic.Analytics
	err       error
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

type pingMsg struct {
	counselors int
	err        error
}

type clearStatusMsg struct {
	id int
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) refreshCmd() tea.Cmd {
	refresh := m.refresh
	ctx := m.ctx
	if refresh == nil {
		return nil
	}
	return func() tea.Msg {
		return refreshDoneMsg{err: refresh(ctx)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		// Interrupted by signal; not a failure.
		return nil
	}
	return err
}
