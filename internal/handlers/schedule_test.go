package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wake_scheduler/internal/models"
	"wake_scheduler/internal/schedule"
	"wake_scheduler/internal/service"
)

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Fatalf("expected default collectors in metrics body")
	}
}

func TestScheduleHandlers_RequireToken(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Scheduler: &mockScheduler{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetSchedule(t *testing.T) {
	sched := &mockScheduler{info: service.ScheduleInfo{
		Config: schedule.Config{
			Window:      schedule.Window{Start: schedule.TimeOfDay{Hour: 6}, End: schedule.TimeOfDay{Hour: 20, Minute: 30}},
			OnDuration:  15 * time.Minute,
			OffDuration: 35 * time.Minute,
		},
		Fallback: true,
	}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Scheduler: sched})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/schedule"))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var out struct {
		Config struct {
			Window struct {
				Start string `json:"start"`
				End   string `json:"end"`
			} `json:"window"`
		} `json:"config"`
		Fallback bool `json:"fallback"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Config.Window.Start != "06:00:00" || out.Config.Window.End != "20:30:00" || !out.Fallback {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestPreviewSchedule(t *testing.T) {
	sched := &mockScheduler{plan: schedule.WakePlan{
		Tier:   schedule.TierHalf,
		WakeAt: schedule.TimeOfDay{Hour: 11, Minute: 25},
		Inside: true,
	}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Scheduler: sched})

	cases := []struct {
		name string
		url  string
		code int
	}{
		{"missing voltage", "/api/v1/schedule/preview", http.StatusBadRequest},
		{"bad voltage", "/api/v1/schedule/preview?voltage=abc", http.StatusBadRequest},
		{"negative voltage", "/api/v1/schedule/preview?voltage=-1", http.StatusBadRequest},
		{"bad at", "/api/v1/schedule/preview?voltage=3.2&at=yesterday", http.StatusBadRequest},
		{"ok", "/api/v1/schedule/preview?voltage=3.2&at=2025-05-14T12:15:00%2B02:00", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, authedRequest(http.MethodGet, tc.url))
			if w.Code != tc.code {
				t.Fatalf("status=%d want %d body=%s", w.Code, tc.code, w.Body.String())
			}
		})
	}

	wantAt := time.Date(2025, time.May, 14, 10, 15, 0, 0, time.UTC)
	if !sched.lastPreviewAt.Equal(wantAt) || sched.lastPreviewAt.Location() != time.UTC {
		t.Fatalf("preview at = %v, want %v", sched.lastPreviewAt, wantAt)
	}
	if sched.lastPreviewVoltage != 3.2 {
		t.Fatalf("preview voltage = %v", sched.lastPreviewVoltage)
	}
}

func TestPreviewSchedule_DefaultsToNow(t *testing.T) {
	sched := &mockScheduler{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Scheduler: sched})

	before := time.Now().UTC()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/schedule/preview?voltage=0"))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if sched.lastPreviewAt.Before(before) {
		t.Fatalf("preview at %v is before request time %v", sched.lastPreviewAt, before)
	}
}

func TestRequestShutdown(t *testing.T) {
	sched := &mockScheduler{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 7}, Scheduler: sched})

	for _, want := range []string{statusShutdownRequested, statusAlreadyPending} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/schedule/shutdown"))
		if w.Code != http.StatusAccepted {
			t.Fatalf("status=%d", w.Code)
		}
		var out map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		if out["status"] != want {
			t.Fatalf("status = %q, want %q", out["status"], want)
		}
	}
	if sched.lastOperator != "7" || sched.shutdownCalls != 2 {
		t.Fatalf("operator=%q calls=%d", sched.lastOperator, sched.shutdownCalls)
	}
}

func TestGetState(t *testing.T) {
	mon := &mockMonitoring{state: models.DeviceState{ID: 1, WindowStart: "06:00:00", NextWake: "11:25:00", Tier: "half"}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/state"))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var st models.DeviceState
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.NextWake != "11:25:00" || st.Tier != "half" {
		t.Fatalf("unexpected state %+v", st)
	}

	mon.err = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/state"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
