package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	domain "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/modules/task"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// chatTimeout bounds a single chat socket reply.
const chatTimeout = time.Minute

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	app.Post("/add-task", m.addTask)
	app.Get("/schedule", m.schedule)
	app.Get("/reminders", m.reminders)
	app.Post("/complete-task/:id", m.completeTask)
	app.Delete("/delete-task/:id", m.deleteTask)
	app.Put("/update-task/:id", m.updateTask)
	app.Get("/notifications", m.notifications)

	app.Post("/daily-planner", m.dailyPlanner)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/daily-planner", websocket.New(m.chatSocket))
}

// healthHandler handles GET /health. The task module is probed through
// its port so a broken bus shows up here.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	list, err := m.taskPort.ListTasks(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: "unhealthy",
			Details: map[string]any{
				"module": "api",
				"error":  err.Error(),
			},
		})
	}
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"port":   m.cfg.Port,
			"tasks":  list.Total,
		},
	})
}

// addTask handles POST /add-task.
func (m *APIModule) addTask(c *fiber.Ctx) error {
	var req AddTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, ErrMsgInvalidBody)
	}

	t, err := m.taskPort.AddTask(c.UserContext(), &task.AddTaskRequest{
		Task:     req.Task,
		Date:     req.Date,
		Time:     req.Time,
		Priority: req.Priority,
		Reminder: req.Reminder,
	})
	if err != nil {
		return taskError(c, err)
	}

	out := toTaskJSON(t)
	return c.JSON(TaskMessageResponse{Message: MsgTaskAdded, Task: &out})
}

// schedule handles GET /schedule.
func (m *APIModule) schedule(c *fiber.Ctx) error {
	list, err := m.taskPort.ListTasks(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ScheduleResponse{Tasks: toTaskJSONs(list.Tasks)})
}

// reminders handles GET /reminders.
func (m *APIModule) reminders(c *fiber.Ctx) error {
	list, err := m.taskPort.ListReminders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(RemindersResponse{Reminders: toTaskJSONs(list.Reminders)})
}

// completeTask handles POST /complete-task/:id.
func (m *APIModule) completeTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return badRequest(c, ErrMsgInvalidTaskID)
	}

	if _, err := m.taskPort.CompleteTask(c.UserContext(), id); err != nil {
		return taskError(c, err)
	}
	return c.JSON(TaskMessageResponse{Message: MsgTaskCompleted})
}

// deleteTask handles DELETE /delete-task/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return badRequest(c, ErrMsgInvalidTaskID)
	}

	t, err := m.taskPort.DeleteTask(c.UserContext(), id)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(TaskMessageResponse{Message: fmt.Sprintf(MsgTaskDeleted, t.Task)})
}

// updateTask handles PUT /update-task/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return badRequest(c, ErrMsgInvalidTaskID)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, ErrMsgInvalidBody)
	}

	t, err := m.taskPort.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		TaskID:   id,
		Task:     req.Task,
		Date:     req.Date,
		Time:     req.Time,
		Priority: req.Priority,
		Reminder: req.Reminder,
	})
	if err != nil {
		return taskError(c, err)
	}

	out := toTaskJSON(t)
	return c.JSON(TaskMessageResponse{Message: MsgTaskUpdated, Task: &out})
}

// notifications handles GET /notifications?limit=N.
func (m *APIModule) notifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, "Invalid limit")
	}

	resp, err := m.reminderPort.ListNotifications(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(NotificationsResponse{
		Notifications: resp.Notifications,
		Watching:      resp.Watching,
	})
}

// dailyPlanner handles POST /daily-planner.
func (m *APIModule) dailyPlanner(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, ErrMsgInvalidBody)
	}

	resp, err := m.reply(c.UserContext(), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// chatSocket serves GET /ws/daily-planner. Each text frame carries a
// ChatRequest and is answered with one ChatResponse frame.
func (m *APIModule) chatSocket(c *websocket.Conn) {
	sessionID := uuid.New().String()
	m.logger.Info("Chat socket connected", "session", sessionID)
	defer m.logger.Info("Chat socket disconnected", "session", sessionID)

	for {
		msgType, raw, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("Chat socket read error", "session", sessionID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		frame := m.chatFrame(ctx, raw)
		cancel()

		if err := c.WriteJSON(frame); err != nil {
			m.logger.Warn("Chat socket write error", "session", sessionID, "error", err)
			return
		}
	}
}

// chatFrame answers one socket frame with a ChatResponse or an ErrorResponse.
func (m *APIModule) chatFrame(ctx context.Context, raw []byte) any {
	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return ErrorResponse{Error: ErrMsgInvalidMessage}
	}

	resp, err := m.reply(ctx, req.Message)
	if err != nil {
		m.logger.Error("Chat reply failed", "error", err)
		return ErrorResponse{Error: "Internal Server Error"}
	}
	return resp
}

func (m *APIModule) reply(ctx context.Context, message string) (ChatResponse, error) {
	resp, err := m.plannerPort.Respond(ctx, message)
	if err != nil {
		return ChatResponse{}, err
	}
	return ChatResponse{Response: resp.Response, Entities: resp.Entities}, nil
}

func taskID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: message})
}

// taskError maps the task error kinds onto HTTP statuses. Anything else is
// left to the error handler.
func taskError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return badRequest(c, verr.Reason)
	case errors.Is(err, domain.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: ErrMsgTaskNotFound})
	}
	return err
}
