package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/daily-planner/config"
	domain "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/modules/planner"
	"github.com/example/daily-planner/modules/reminder"
	"github.com/example/daily-planner/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// mockTaskPort is a test double for task.TaskPort.
type mockTaskPort struct {
	addFn       func(ctx context.Context, req *task.AddTaskRequest) (*task.TaskResponse, error)
	listFn      func(ctx context.Context) (*task.ListTasksResponse, error)
	getFn       func(ctx context.Context, id int64) (*task.TaskResponse, error)
	completeFn  func(ctx context.Context, id int64) (*task.TaskResponse, error)
	deleteFn    func(ctx context.Context, id int64) (*task.TaskResponse, error)
	updateFn    func(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error)
	remindersFn func(ctx context.Context) (*task.ListRemindersResponse, error)
}

func (p *mockTaskPort) AddTask(ctx context.Context, req *task.AddTaskRequest) (*task.TaskResponse, error) {
	return p.addFn(ctx, req)
}

func (p *mockTaskPort) ListTasks(ctx context.Context) (*task.ListTasksResponse, error) {
	return p.listFn(ctx)
}

func (p *mockTaskPort) GetTask(ctx context.Context, id int64) (*task.TaskResponse, error) {
	return p.getFn(ctx, id)
}

func (p *mockTaskPort) CompleteTask(ctx context.Context, id int64) (*task.TaskResponse, error) {
	return p.completeFn(ctx, id)
}

func (p *mockTaskPort) DeleteTask(ctx context.Context, id int64) (*task.TaskResponse, error) {
	return p.deleteFn(ctx, id)
}

func (p *mockTaskPort) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error) {
	return p.updateFn(ctx, req)
}

func (p *mockTaskPort) ListReminders(ctx context.Context) (*task.ListRemindersResponse, error) {
	return p.remindersFn(ctx)
}

type mockPlannerPort struct {
	respondFn func(ctx context.Context, message string) (*planner.RespondResponse, error)
}

func (p *mockPlannerPort) Respond(ctx context.Context, message string) (*planner.RespondResponse, error) {
	return p.respondFn(ctx, message)
}

type mockReminderPort struct {
	listFn func(ctx context.Context, limit int) (*reminder.ListNotificationsResponse, error)
}

func (p *mockReminderPort) ListNotifications(ctx context.Context, limit int) (*reminder.ListNotificationsResponse, error) {
	return p.listFn(ctx, limit)
}

var createdAt = time.Date(2024, 3, 2, 8, 15, 30, 0, time.Local)

func exercise() *task.TaskResponse {
	return &task.TaskResponse{
		ID:        1,
		Task:      "Exercise",
		Date:      domain.DateUnspecified,
		Time:      "07:00",
		Priority:  "High",
		Status:    "overdue",
		CreatedAt: createdAt,
	}
}

func newTestModule(tp *mockTaskPort, pp *mockPlannerPort, rp *mockReminderPort) (*APIModule, *fiber.App) {
	m := NewModule(config.HTTPConfig{Port: 5000, CORSOrigins: "*"}, &mockLogger{})
	m.taskPort = tp
	m.plannerPort = pp
	m.reminderPort = rp
	return m, m.newApp()
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestAddTask(t *testing.T) {
	var got *task.AddTaskRequest
	tp := &mockTaskPort{addFn: func(_ context.Context, req *task.AddTaskRequest) (*task.TaskResponse, error) {
		got = req
		return exercise(), nil
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodPost, "/add-task",
		`{"task":"Exercise","time":"07:00","priority":"High","reminder":true}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgTaskAdded, body["message"])
	require.NotNil(t, got)
	assert.Equal(t, "Exercise", got.Task)
	assert.True(t, got.Reminder)

	created := body["task"].(map[string]any)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "2024-03-02 08:15:30", created["created_at"])
	assert.NotContains(t, created, "completed_at")
}

func TestAddTask_Errors(t *testing.T) {
	tp := &mockTaskPort{addFn: func(context.Context, *task.AddTaskRequest) (*task.TaskResponse, error) {
		return nil, domain.Invalid(task.ReasonMissingDetails)
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodPost, "/add-task", `{"task":"Exercise"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, task.ReasonMissingDetails, body["error"])

	status, body = do(t, app, http.MethodPost, "/add-task", `{"task":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrMsgInvalidBody, body["error"])
}

func TestSchedule(t *testing.T) {
	completedAt := createdAt.Add(time.Hour)
	done := exercise()
	done.ID = 2
	done.Status = "completed"
	done.CompletedAt = &completedAt

	tp := &mockTaskPort{listFn: func(context.Context) (*task.ListTasksResponse, error) {
		return &task.ListTasksResponse{Tasks: []task.TaskResponse{*exercise(), *done}, Total: 2}, nil
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodGet, "/schedule", "")
	assert.Equal(t, http.StatusOK, status)

	tasks := body["tasks"].([]any)
	require.Len(t, tasks, 2)
	assert.Equal(t, "overdue", tasks[0].(map[string]any)["status"])
	assert.Equal(t, "2024-03-02 09:15:30", tasks[1].(map[string]any)["completed_at"])
}

func TestSchedule_Empty(t *testing.T) {
	tp := &mockTaskPort{listFn: func(context.Context) (*task.ListTasksResponse, error) {
		return &task.ListTasksResponse{}, nil
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodGet, "/schedule", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["tasks"])
}

func TestSchedule_BusFailure(t *testing.T) {
	tp := &mockTaskPort{listFn: func(context.Context) (*task.ListTasksResponse, error) {
		return nil, errors.New("no responders")
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodGet, "/schedule", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal Server Error", body["error"])
}

func TestReminders(t *testing.T) {
	tp := &mockTaskPort{remindersFn: func(context.Context) (*task.ListRemindersResponse, error) {
		r := exercise()
		r.Reminder = true
		return &task.ListRemindersResponse{Reminders: []task.TaskResponse{*r}}, nil
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodGet, "/reminders", "")
	assert.Equal(t, http.StatusOK, status)
	reminders := body["reminders"].([]any)
	require.Len(t, reminders, 1)
	assert.Equal(t, true, reminders[0].(map[string]any)["reminder"])
}

func TestCompleteTask(t *testing.T) {
	tp := &mockTaskPort{completeFn: func(_ context.Context, id int64) (*task.TaskResponse, error) {
		if id != 1 {
			return nil, domain.ErrNotFound
		}
		return exercise(), nil
	}}
	_, app := newTestModule(tp, nil, nil)

	tests := []struct {
		path   string
		status int
		key    string
		want   string
	}{
		{"/complete-task/1", http.StatusOK, "message", MsgTaskCompleted},
		{"/complete-task/99", http.StatusNotFound, "error", ErrMsgTaskNotFound},
		{"/complete-task/abc", http.StatusBadRequest, "error", ErrMsgInvalidTaskID},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := do(t, app, http.MethodPost, tt.path, "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.want, body[tt.key])
		})
	}
}

func TestDeleteTask(t *testing.T) {
	tp := &mockTaskPort{deleteFn: func(_ context.Context, id int64) (*task.TaskResponse, error) {
		if id != 1 {
			return nil, domain.ErrNotFound
		}
		return exercise(), nil
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodDelete, "/delete-task/1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Task 'Exercise' deleted successfully", body["message"])

	status, body = do(t, app, http.MethodDelete, "/delete-task/2", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ErrMsgTaskNotFound, body["error"])

	status, _ = do(t, app, http.MethodDelete, "/delete-task/1.5", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateTask(t *testing.T) {
	var got *task.UpdateTaskRequest
	tp := &mockTaskPort{updateFn: func(_ context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error) {
		got = req
		if req.TaskID != 1 {
			return nil, domain.ErrNotFound
		}
		updated := exercise()
		updated.Priority = *req.Priority
		return updated, nil
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodPut, "/update-task/1", `{"priority":"Low"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MsgTaskUpdated, body["message"])
	assert.Equal(t, "Low", body["task"].(map[string]any)["priority"])

	require.NotNil(t, got)
	assert.Nil(t, got.Task)
	assert.Nil(t, got.Time)
	assert.Nil(t, got.Reminder)

	status, body = do(t, app, http.MethodPut, "/update-task/7", `{"priority":"Low"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ErrMsgTaskNotFound, body["error"])
}

func TestUpdateTask_Validation(t *testing.T) {
	tp := &mockTaskPort{updateFn: func(context.Context, *task.UpdateTaskRequest) (*task.TaskResponse, error) {
		return nil, domain.Invalid(task.ReasonInvalidTime)
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodPut, "/update-task/1", `{"time":"7 o'clock"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, task.ReasonInvalidTime, body["error"])
}

func TestDailyPlanner(t *testing.T) {
	pp := &mockPlannerPort{respondFn: func(_ context.Context, message string) (*planner.RespondResponse, error) {
		if message == "thank you" {
			return &planner.RespondResponse{Response: planner.GratitudeReply}, nil
		}
		return &planner.RespondResponse{Response: "Sounds good", Entities: "📅 Date: tomorrow\n"}, nil
	}}
	_, app := newTestModule(nil, pp, nil)

	status, body := do(t, app, http.MethodPost, "/daily-planner", `{"message":"thank you"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, planner.GratitudeReply, body["response"])
	assert.NotContains(t, body, "entities")

	_, body = do(t, app, http.MethodPost, "/daily-planner", `{"message":"lunch tomorrow"}`)
	assert.Equal(t, "📅 Date: tomorrow\n", body["entities"])
}

func TestNotifications(t *testing.T) {
	var gotLimit int
	rp := &mockReminderPort{listFn: func(_ context.Context, limit int) (*reminder.ListNotificationsResponse, error) {
		gotLimit = limit
		return &reminder.ListNotificationsResponse{
			Notifications: []reminder.Notification{{ID: "n1", TaskID: 1, Task: "Exercise", Message: "Reminder"}},
			Watching:      3,
		}, nil
	}}
	_, app := newTestModule(nil, nil, rp)

	status, body := do(t, app, http.MethodGet, "/notifications?limit=5", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, float64(3), body["watching"])
	assert.Len(t, body["notifications"], 1)

	status, _ = do(t, app, http.MethodGet, "/notifications?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealth(t *testing.T) {
	healthy := true
	tp := &mockTaskPort{listFn: func(context.Context) (*task.ListTasksResponse, error) {
		if !healthy {
			return nil, errors.New("bus down")
		}
		return &task.ListTasksResponse{Total: 4}, nil
	}}
	_, app := newTestModule(tp, nil, nil)

	status, body := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(4), body["details"].(map[string]any)["tasks"])

	healthy = false
	status, body = do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	_, app := newTestModule(nil, nil, nil)

	status, body := do(t, app, http.MethodGet, "/ws/daily-planner", "")
	assert.Equal(t, http.StatusUpgradeRequired, status)
	assert.Equal(t, "Upgrade Required", body["error"])
}

func TestChatFrame(t *testing.T) {
	pp := &mockPlannerPort{respondFn: func(_ context.Context, message string) (*planner.RespondResponse, error) {
		if message == "boom" {
			return nil, errors.New("no responders")
		}
		return &planner.RespondResponse{Response: "echo " + message}, nil
	}}
	m, _ := newTestModule(nil, pp, nil)
	ctx := context.Background()

	assert.Equal(t, ChatResponse{Response: "echo hi"}, m.chatFrame(ctx, []byte(`{"message":"hi"}`)))
	assert.Equal(t, ErrorResponse{Error: ErrMsgInvalidMessage}, m.chatFrame(ctx, []byte(`not json`)))
	assert.Equal(t, ErrorResponse{Error: "Internal Server Error"}, m.chatFrame(ctx, []byte(`{"message":"boom"}`)))
}

func TestCORS(t *testing.T) {
	tp := &mockTaskPort{listFn: func(context.Context) (*task.ListTasksResponse, error) {
		return &task.ListTasksResponse{}, nil
	}}
	_, app := newTestModule(tp, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/schedule", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
