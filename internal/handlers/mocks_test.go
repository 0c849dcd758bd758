package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"interval_timer"
	"interval_timer/internal/models"
	"interval_timer/internal/repository"
	"interval_timer/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTimers struct {
	timers map[string]interval_timer.Timer
	err    error

	lastName   string
	lastStep   interval_timer.TimerStep
	lastImport string
	exported   []byte
}

func (m *mockTimers) List(context.Context) ([]interval_timer.Timer, error) {
	out := make([]interval_timer.Timer, 0, len(m.timers))
	for _, t := range m.timers {
		out = append(out, t)
	}
	return out, m.err
}
func (m *mockTimers) Get(_ context.Context, id string) (interval_timer.Timer, error) {
	if m.err != nil {
		return interval_timer.Timer{}, m.err
	}
	t, ok := m.timers[id]
	if !ok {
		return interval_timer.Timer{}, service.ErrTimerNotFound
	}
	return t, nil
}
func (m *mockTimers) Create(_ context.Context, name string) (interval_timer.Timer, error) {
	m.lastName = name
	return interval_timer.Timer{ID: "new", Name: name}, m.err
}
func (m *mockTimers) Rename(_ context.Context, id, name string) error {
	m.lastName = name
	if _, ok := m.timers[id]; !ok {
		return service.ErrTimerNotFound
	}
	t := m.timers[id]
	t.Name = name
	m.timers[id] = t
	return m.err
}
func (m *mockTimers) Delete(_ context.Context, id string) error {
	if _, ok := m.timers[id]; !ok {
		return service.ErrTimerNotFound
	}
	delete(m.timers, id)
	return m.err
}
func (m *mockTimers) AddStep(_ context.Context, _ string, step interval_timer.TimerStep) (interval_timer.TimerStep, error) {
	m.lastStep = step
	step.ID = "step-new"
	return step, m.err
}
func (m *mockTimers) UpdateStep(_ context.Context, _ string, step interval_timer.TimerStep) (interval_timer.TimerStep, error) {
	m.lastStep = step
	return step, m.err
}
func (m *mockTimers) DeleteStep(_ context.Context, _, stepID string) error {
	m.lastStep = interval_timer.TimerStep{ID: stepID}
	return m.err
}
func (m *mockTimers) Import(_ context.Context, r io.Reader) (interval_timer.Timer, error) {
	b, _ := io.ReadAll(r)
	m.lastImport = string(b)
	return interval_timer.Timer{ID: "imported"}, m.err
}
func (m *mockTimers) Export(_ context.Context, id string) ([]byte, error) {
	if _, ok := m.timers[id]; !ok {
		return nil, service.ErrTimerNotFound
	}
	return m.exported, m.err
}

type mockRunner struct {
	mu       sync.Mutex
	state    service.RunState
	startErr error
	stopErr  error
	started  []interval_timer.Timer
	stops    int
	subs     []func(service.RunState)
}

func (m *mockRunner) Start(_ context.Context, t interval_timer.Timer) (*service.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.started = append(m.started, t)
	m.state = service.RunState{Status: service.StatusRunning, RunID: "run-1", TimerID: t.ID}
	return &service.Run{ID: "run-1", TimerID: t.ID}, nil
}
func (m *mockRunner) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.state.Status = service.StatusIdle
	return m.stopErr
}
func (m *mockRunner) State() service.RunState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
func (m *mockRunner) Subscribe(fn func(service.RunState)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

type mockEventLog struct {
	resp  []models.RunEvent
	err   error
	calls int
	last  service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.RunEvent, error) {
	m.calls++
	m.last = f
	return m.resp, m.err
}

// memEvents is a repository.EventRepo for wiring the real EventLogService.
type memEvents struct {
	events []models.RunEvent
}

func (m *memEvents) Append(_ context.Context, e models.RunEvent) error {
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) List(context.Context, repository.EventQuery) ([]models.RunEvent, error) {
	return m.events, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Options{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// doAuthed sends an authenticated request with an optional JSON body.
func doAuthed(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
