package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd("1.2.3")
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "planner 1.2.3\n", out.String())
}

func TestConfigCmd_RedactsKey(t *testing.T) {
	t.Setenv("PLANNER_PLANNER_API_KEY", "super-secret")
	t.Setenv("PLANNER_HTTP_PORT", "8080")
	configPath = ""

	var out bytes.Buffer
	configCmd.SetOut(&out)
	require.NoError(t, runConfig(configCmd, nil))

	assert.Contains(t, out.String(), "port: 8080")
	assert.Contains(t, out.String(), "********")
	assert.NotContains(t, out.String(), "super-secret")
}

func TestConfigCmd_BadFile(t *testing.T) {
	configPath = "does-not-exist.yaml"
	t.Cleanup(func() { configPath = "" })

	assert.Error(t, runConfig(configCmd, nil))
}
