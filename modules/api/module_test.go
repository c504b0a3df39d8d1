package api

import (
	"context"
	"testing"

	"github.com/example/daily-planner/config"
	"github.com/stretchr/testify/assert"
)

func TestModule_Metadata(t *testing.T) {
	m := NewModule(config.HTTPConfig{Port: 5000}, &mockLogger{})

	assert.Equal(t, "api", m.Name())
	assert.Equal(t, []string{"task", "planner", "reminder"}, m.Dependencies())
	assert.False(t, m.Health(context.Background()).Healthy)
	assert.NoError(t, m.Stop(context.Background()), "stop before start is a no-op")
}

func TestModule_StartRequiresPorts(t *testing.T) {
	m := NewModule(config.HTTPConfig{Port: 5000}, &mockLogger{})
	assert.ErrorContains(t, m.Start(context.Background()), "taskPort")

	m.taskPort = &mockTaskPort{}
	assert.ErrorContains(t, m.Start(context.Background()), "plannerPort")

	m.plannerPort = &mockPlannerPort{}
	assert.ErrorContains(t, m.Start(context.Background()), "reminderPort")
}
