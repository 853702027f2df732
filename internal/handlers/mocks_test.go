package handlers

import (
	"context"
	"net/http"
	"time"

	"wake_scheduler/internal/models"
	"wake_scheduler/internal/schedule"
	"wake_scheduler/internal/service"

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
	lastSignUpGrant    service.SignUpGrant
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string, grant service.SignUpGrant) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	m.lastSignUpGrant = grant
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockScheduler struct {
	info      service.ScheduleInfo
	plan      schedule.WakePlan
	requested bool
	pending   bool

	lastPreviewAt      time.Time
	lastPreviewVoltage float64
	lastOperator       string
	shutdownCalls      int
}

func (m *mockScheduler) Schedule() service.ScheduleInfo { return m.info }

func (m *mockScheduler) Preview(at time.Time, voltage float64) schedule.WakePlan {
	m.lastPreviewAt = at
	m.lastPreviewVoltage = voltage
	return m.plan
}

func (m *mockScheduler) RequestShutdown(ctx context.Context, operator string) bool {
	m.shutdownCalls++
	m.lastOperator = operator
	if m.pending {
		return false
	}
	m.pending = true
	return true
}

func (m *mockScheduler) ShutdownRequested() bool { return m.requested || m.pending }

type mockMonitoring struct {
	state models.DeviceState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.DeviceState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.ScheduleEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	calls    int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ScheduleEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
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

func authedRequest(method, target string) *http.Request {
	req, _ := http.NewRequest(method, target, nil)
	req.Header = authHeader("valid")
	return req
}
