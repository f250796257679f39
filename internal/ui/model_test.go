package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/config"
	"github.com/five82/walkin/internal/queue"
	"github.com/five82/walkin/internal/state"
	"github.com/five82/walkin/internal/workflow"
)

type fakeBackend struct {
	mu       sync.Mutex
	searches []string
	history  clinic.PatientHistory
	result   clinic.SearchResult
}

func (f *fakeBackend) PatientHistory(ctx context.Context, patientID string) (clinic.PatientHistory, error) {
	return f.history, nil
}

func (f *fakeBackend) SearchPatients(ctx context.Context, term string) (clinic.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, term)
	return f.result, nil
}

func (f *fakeBackend) Analytics(ctx context.Context, days int) (clinic.Analytics, error) {
	return clinic.Analytics{Days: days}, nil
}

func (f *fakeBackend) Ping(ctx context.Context) (int, error) {
	return 3, nil
}

type applyCall struct {
	action workflow.Action
	row    int
	input  workflow.Input
}

type fakeTransitioner struct {
	mu    sync.Mutex
	calls []applyCall
	err   error
}

func (f *fakeTransitioner) Apply(ctx context.Context, action workflow.Action, visit clinic.PatientVisit, in workflow.Input) (workflow.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, applyCall{action: action, row: visit.Row, input: in})
	if f.err != nil {
		return workflow.Outcome{}, f.err
	}
	plan, err := workflow.BuildPlan(action, visit, in)
	if err != nil {
		return workflow.Outcome{}, err
	}
	return workflow.Outcome{Plan: plan, Message: plan.Message}, nil
}

func (f *fakeTransitioner) Calls() []applyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]applyCall(nil), f.calls...)
}

func testVisits() []clinic.PatientVisit {
	return []clinic.PatientVisit{
		{PatientID: "P1", Row: 2, FirstName: "Ana", LastName: "Diaz", Status: clinic.StatusWaiting, WaitMinutes: 12},
		{PatientID: "P2", Row: 3, FirstName: "Ben", LastName: "Cole", Status: clinic.StatusAssigned, AssignedCounselor: "Dr. A"},
		{PatientID: "P3", Row: 4, FirstName: "Cy", LastName: "Park", Status: clinic.StatusCompleted, AssignedCounselor: "Dr. B"},
	}
}

func newTestModel(t *testing.T) (Model, *state.Store, *fakeBackend, *fakeTransitioner) {
	t.Helper()
	store := &state.Store{}
	store.Login(clinic.Identity{Name: "Front Desk", Username: "desk"})
	store.ReplaceVisits(testVisits())

	backend := &fakeBackend{}
	controller := &fakeTransitioner{}
	cfg := config.Default()
	cfg.Counselors = []string{workflow.CounselorPlaceholder, "Dr. A", "Dr. B"}
	cfg.LogDir = t.TempDir()

	m := New(Options{
		Context:    context.Background(),
		Config:     cfg,
		Client:     backend,
		Store:      store,
		Controller: controller,
		Logger:     zerolog.Nop(),
		Logout: func() error {
			store.Logout()
			return nil
		},
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return m, store, backend, controller
}

// step feeds one message and returns the new model, dropping the command.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func stepCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and any batched children, returning the messages that
// arrive quickly. Timers such as the status expiry never make it in time.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-out:
	case <-time.After(200 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestFilterKeysUpdateStore(t *testing.T) {
	m, store, _, _ := newTestModel(t)

	m = step(t, m, runes("f"))
	if got := store.Snapshot().Filter; got != queue.ByStatus(clinic.StatusWaiting) {
		t.Fatalf("filter after f = %v, want Waiting", got)
	}

	m = step(t, m, runes("3"))
	if got := store.Snapshot().Filter; got != queue.ByStatus(clinic.StatusAssigned) {
		t.Fatalf("filter after 3 = %v, want Assigned", got)
	}
	if visit, ok := m.selectedVisit(); !ok || visit.PatientID != "P2" {
		t.Fatalf("selected = %+v, want P2", visit)
	}
}

func TestQueueShowsEmptyFilterMessage(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m = step(t, m, runes("6"))

	if view := m.renderQueue(); !strings.Contains(view, "No patients with status: Cancelled") {
		t.Fatalf("queue view missing empty message:\n%s", view)
	}
}

func TestQueueShowsLoadFailure(t *testing.T) {
	store := &state.Store{}
	store.Login(clinic.Identity{Username: "desk"})
	store.RecordFailure(errors.New("Network error: connection refused"))

	m := New(Options{Store: store, Config: config.Default(), Logger: zerolog.Nop()})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})

	view := m.renderQueue()
	if !strings.Contains(view, "Failed to Load Data") || !strings.Contains(view, "connection refused") {
		t.Fatalf("queue view missing failure details:\n%s", view)
	}
}

func TestAssignRequiresCounselor(t *testing.T) {
	m, _, _, controller := newTestModel(t)

	m = step(t, m, runes("a"))
	if m.modal != modalCounselor {
		t.Fatalf("modal = %v, want counselor picker", m.modal)
	}

	// The placeholder is selected first and must be rejected locally.
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal != modalCounselor {
		t.Fatalf("picker closed on placeholder")
	}
	if m.statusText != "Please select a counselor" {
		t.Fatalf("status = %q, want counselor error", m.statusText)
	}
	if len(controller.Calls()) != 0 {
		t.Fatalf("controller called for placeholder")
	}

	m = step(t, m, runes("j"))
	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.busy || m.modal != modalNone {
		t.Fatalf("busy=%v modal=%v, want running action", m.busy, m.modal)
	}

	result, ok := findMsg[actionResultMsg](collect(cmd))
	if !ok {
		t.Fatalf("no action result")
	}
	calls := controller.Calls()
	if len(calls) != 1 || calls[0].action != workflow.ActionAssign || calls[0].row != 2 || calls[0].input.Counselor != "Dr. A" {
		t.Fatalf("calls = %+v", calls)
	}

	m = step(t, m, result)
	if m.busy {
		t.Fatalf("still busy after result")
	}
	if m.statusText != "Assigned to Dr. A" {
		t.Fatalf("status = %q, want success toast", m.statusText)
	}
}

func TestCancelPromptEscAbandons(t *testing.T) {
	m, _, _, controller := newTestModel(t)
	m = step(t, m, runes("3")) // Assigned
	m = step(t, m, runes("x"))
	if m.modal != modalCancelReason {
		t.Fatalf("modal = %v, want reason prompt", m.modal)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal != modalNone {
		t.Fatalf("prompt still open")
	}
	if len(controller.Calls()) != 0 {
		t.Fatalf("cancel ran after esc")
	}
}

func TestCancelPromptSendsReason(t *testing.T) {
	m, _, _, controller := newTestModel(t)
	m = step(t, m, runes("3")) // Assigned
	m = step(t, m, runes("x"))
	m = step(t, m, runes("left early"))
	_, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if _, ok := findMsg[actionResultMsg](collect(cmd)); !ok {
		t.Fatalf("no action result")
	}
	calls := controller.Calls()
	if len(calls) != 1 || calls[0].action != workflow.ActionCancel || calls[0].input.Reason != "left early" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestIllegalActionIsRejectedLocally(t *testing.T) {
	m, _, _, controller := newTestModel(t)

	// The first visit is Waiting; completing it is not a transition.
	m = step(t, m, runes("c"))
	if !strings.Contains(m.statusText, "cannot") {
		t.Fatalf("status = %q, want illegal transition message", m.statusText)
	}
	if len(controller.Calls()) != 0 {
		t.Fatalf("controller called for illegal action")
	}
}

func TestOneActionAtATime(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m.busy = true

	m = step(t, m, runes("a"))
	if m.modal != modalNone {
		t.Fatalf("picker opened while busy")
	}
	if m.statusText != "Another update is still running" {
		t.Fatalf("status = %q", m.statusText)
	}
}

func TestActionFailureShowsStepMessage(t *testing.T) {
	m, _, _, controller := newTestModel(t)
	controller.err = &workflow.StepError{
		Action: workflow.ActionStart,
		Row:    3,
		Step:   workflow.Step{Kind: workflow.StepUpdateStatus, FailMessage: "Failed to start session"},
		Err:    errors.New("timeout"),
	}

	m = step(t, m, runes("3")) // Assigned
	m, cmd := stepCmd(t, m, runes("s"))
	result, ok := findMsg[actionResultMsg](collect(cmd))
	if !ok {
		t.Fatalf("no action result")
	}
	m = step(t, m, result)
	if m.statusText != "Failed to start session" || m.statusKind != statusError {
		t.Fatalf("status = %q (%v), want error toast", m.statusText, m.statusKind)
	}
}

func TestSearchNeedsTwoCharacters(t *testing.T) {
	m, _, backend, _ := newTestModel(t)
	m = step(t, m, runes("/"))
	if !m.searchInput.Focused() {
		t.Fatalf("search input not focused")
	}
	m = step(t, m, runes("a"))
	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	collect(cmd)
	if m.statusText != "Please enter at least 2 characters" {
		t.Fatalf("status = %q", m.statusText)
	}
	if len(backend.searches) != 0 {
		t.Fatalf("backend searched for a short term")
	}
}

func TestSearchNoResults(t *testing.T) {
	m, _, backend, _ := newTestModel(t)
	m = step(t, m, runes("/"))
	m = step(t, m, runes("zz"))
	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	result, ok := findMsg[searchMsg](collect(cmd))
	if !ok {
		t.Fatalf("no search result")
	}
	if len(backend.searches) != 1 || backend.searches[0] != "zz" {
		t.Fatalf("searches = %v", backend.searches)
	}
	m = step(t, m, result)
	if view := m.renderSearch(); !strings.Contains(view, "No patients found matching your search") {
		t.Fatalf("search view:\n%s", view)
	}
}

func TestStaleHistoryIsIgnored(t *testing.T) {
	m, _, backend, _ := newTestModel(t)
	backend.history = clinic.PatientHistory{Patient: clinic.PatientVisit{PatientID: "P1", FirstName: "Ana"}}

	m, _ = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.showDetail || m.detailID != "P1" {
		t.Fatalf("detail not opened for P1")
	}

	m = step(t, m, historyMsg{patientID: "P9", history: clinic.PatientHistory{}})
	if !m.detailLoading {
		t.Fatalf("stale history cleared loading state")
	}

	m = step(t, m, historyMsg{patientID: "P1", history: backend.history})
	if m.detailLoading || m.detailHistory == nil {
		t.Fatalf("history not applied")
	}
	if content := m.detailContent(); !strings.Contains(content, "Visit History (0 visits)") {
		t.Fatalf("detail content:\n%s", content)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	m, store, _, _ := newTestModel(t)

	m = step(t, m, runes("O"))
	if store.Snapshot().LoggedIn {
		t.Fatalf("store still logged in")
	}
	if view := m.View(); !strings.Contains(view, "Username") {
		t.Fatalf("view after logout is not the login form:\n%s", view)
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	store := &state.Store{}
	m := New(Options{Store: store, Config: config.Default(), Logger: zerolog.Nop()})
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = step(t, m, runes("desk"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // to password
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // submit
	if m.loginErr != "Please enter username and password" {
		t.Fatalf("loginErr = %q", m.loginErr)
	}
	if m.loggingIn {
		t.Fatalf("login started with empty password")
	}
}

func TestHeaderAndStatusLineFillWidth(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	if got := lipgloss.Width(m.renderHeader()); got != 140 {
		t.Fatalf("header width = %d, want 140", got)
	}
	if got := lipgloss.Width(m.renderStatusLine()); got != 140 {
		t.Fatalf("status line width = %d, want 140", got)
	}

	m = step(t, m, runes("r"))
	if got := lipgloss.Width(m.renderStatusLine()); got != 140 {
		t.Fatalf("status line width after refresh = %d, want 140", got)
	}
}
