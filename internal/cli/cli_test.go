package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-ops-backend/internal/model"
)

const sampleLoads = `[
	{
		"id": "L-1",
		"originCityState": "Dallas, TX",
		"destCityState": "Memphis, TN",
		"pickupWindowStartISO": "2024-05-01T08:00:00Z",
		"pickupWindowEndISO": "2024-05-01T10:00:00Z",
		"deliveryWindowStartISO": "2024-05-02T08:00:00Z",
		"deliveryWindowEndISO": "2024-05-02T10:00:00Z",
		"carrierName": "Acme Freight",
		"carrierPhone": "555-123-4567",
		"lastGpsMinutesAgo": 10
	},
	{
		"id": "L-2",
		"originCityState": "Austin, TX",
		"destCityState": "Tulsa, OK",
		"pickupWindowStartISO": "2024-05-01T20:00:00Z",
		"pickupWindowEndISO": "2024-05-01T22:00:00Z",
		"deliveryWindowStartISO": "2024-05-02T20:00:00Z",
		"deliveryWindowEndISO": "2024-05-02T22:00:00Z",
		"carrierName": "Beta Haul",
		"carrierPhone": "555-000-1111",
		"lastGpsMinutesAgo": 5
	}
]`

func writeLoads(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loads.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleLoads), 0o644))
	return path
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "opsd", cmd.Use)

	for _, name := range []string{"serve", "evaluate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	serve, _, _ := cmd.Find([]string{"serve"})
	require.NotNil(t, serve.Flags().Lookup("config"))
}

func TestEvaluate_JSON(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"evaluate", "--loads", writeLoads(t), "--now", "2024-05-01T12:00:00Z", "--format", "json"})
	require.NoError(t, cmd.Execute())

	var result EvaluateResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "2024-05-01T12:00:00.000Z", result.GeneratedAtISO)
	require.Len(t, result.Loads, 2)
	assert.Equal(t, model.StatusRed, result.Loads[0].ComputedStatus)
	assert.Equal(t, model.StatusGreen, result.Loads[1].ComputedStatus)

	require.Len(t, result.Attention, 1)
	assert.Equal(t, "L-1", result.Attention[0].ID)

	require.Len(t, result.Actions, 1)
	assert.Equal(t, "L-1__PICKUP_LATE_CALL", result.Actions[0].ID)
	assert.Equal(t, "2024-05-01T10:00:00Z", result.Actions[0].DueAtISO)
}

func TestEvaluate_Text(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"evaluate", "-l", writeLoads(t), "--now", "2024-05-01T12:00:00Z"})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "Evaluated 2 loads at 2024-05-01T12:00:00.000Z")
	assert.Contains(t, text, "NEEDS ATTENTION (1)")
	assert.Contains(t, text, "PICKUP_LATE: Pickup window closed 2h 0m ago")
	assert.Contains(t, text, "tel:5551234567")
}

func TestEvaluate_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "missing loads flag", args: []string{"evaluate"}},
		{name: "bad format", args: []string{"evaluate", "--loads", "x.json", "--format", "yaml"}},
		{name: "bad now", args: []string{"evaluate", "--loads", "x.json", "--now", "noon"}},
		{name: "missing file", args: []string{"evaluate", "--loads", "/does/not/exist.json"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tc.args)
			assert.Error(t, cmd.Execute())
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultConfigPath, resolveConfigPath(""))

	t.Setenv("CONFIG_PATH", "/etc/opsd.yaml")
	assert.Equal(t, "/etc/opsd.yaml", resolveConfigPath(""))
	assert.Equal(t, "flag.yaml", resolveConfigPath("flag.yaml"))
}
