package evaluate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-ops-backend/internal/model"
	"freight-ops-backend/internal/parse"
	"freight-ops-backend/internal/rules"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func healthyLoad(id string) model.Load {
	return model.Load{
		ID:                     id,
		OriginCityState:        "Dallas, TX",
		DestCityState:          "Memphis, TN",
		PickupWindowStartISO:   parse.ISO(now.Add(24 * time.Hour)),
		PickupWindowEndISO:     parse.ISO(now.Add(26 * time.Hour)),
		DeliveryWindowStartISO: parse.ISO(now.Add(48 * time.Hour)),
		DeliveryWindowEndISO:   parse.ISO(now.Add(50 * time.Hour)),
		LastGpsMinutesAgo:      intPtr(5),
	}
}

func TestSortExceptions(t *testing.T) {
	exs := []model.Exception{
		{Code: "B_WATCH", Severity: model.SeverityWatch, Score: 900},
		{Code: "Z_RISK", Severity: model.SeverityRisk, Score: 100},
		{Code: "B_RISK", Severity: model.SeverityRisk, Score: 500},
		{Code: "A_RISK", Severity: model.SeverityRisk, Score: 500},
	}
	SortExceptions(exs)

	var got []model.ExceptionCode
	for _, ex := range exs {
		got = append(got, ex.Code)
	}
	assert.Equal(t, []model.ExceptionCode{"A_RISK", "B_RISK", "Z_RISK", "B_WATCH"}, got)
}

func TestAggregateStatus(t *testing.T) {
	assert.Equal(t, model.StatusGreen, AggregateStatus(nil))
	assert.Equal(t, model.StatusYellow, AggregateStatus([]model.Exception{{Status: model.StatusYellow}}))
	assert.Equal(t, model.StatusRed, AggregateStatus([]model.Exception{{Status: model.StatusYellow}, {Status: model.StatusRed}}))
}

func TestLoad_Green(t *testing.T) {
	ev := Load(healthyLoad("L-1"), now)

	assert.Equal(t, model.StatusGreen, ev.ComputedStatus)
	assert.Empty(t, ev.ComputedRiskReason)
	assert.Equal(t, DefaultNextAction, ev.ComputedNextAction)
	assert.NotNil(t, ev.Exceptions)
	assert.Empty(t, ev.Exceptions)
}

func TestLoad_NoGPSAndPickupLate(t *testing.T) {
	load := healthyLoad("L-9")
	load.PickupWindowStartISO = parse.ISO(now.Add(-4 * time.Hour))
	load.PickupWindowEndISO = parse.ISO(now.Add(-2 * time.Hour))
	load.LastGpsMinutesAgo = nil

	ev := Load(load, now)

	require.Len(t, ev.Exceptions, 2)
	assert.Equal(t, model.CodeNoGPS, ev.Exceptions[0].Code)
	assert.Equal(t, model.CodePickupLate, ev.Exceptions[1].Code)
	assert.Equal(t, model.StatusRed, ev.ComputedStatus)
	assert.Equal(t, ev.Exceptions[0].Detail, ev.ComputedRiskReason)
	assert.Equal(t, ev.Exceptions[0].NextAction, ev.ComputedNextAction)
}

func TestLoad_WatchOnlyIsYellow(t *testing.T) {
	load := healthyLoad("L-2")
	load.LastGpsMinutesAgo = intPtr(90)

	ev := Load(load, now)
	assert.Equal(t, model.StatusYellow, ev.ComputedStatus)
	assert.Equal(t, "Last GPS ping was 90 min ago", ev.ComputedRiskReason)
}

func TestAllLoads_PreservesOrderAndIsDeterministic(t *testing.T) {
	late := healthyLoad("A")
	late.DeliveryWindowEndISO = parse.ISO(now.Add(-time.Hour))
	loads := []model.Load{healthyLoad("Z"), late, healthyLoad("M")}

	first := AllLoads(loads, now)
	second := AllLoads(loads, now)

	require.Len(t, first, 3)
	assert.Equal(t, "Z", first[0].ID)
	assert.Equal(t, "A", first[1].ID)
	assert.Equal(t, "M", first[2].ID)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestAllLoads_IsolatesPanickingLoad(t *testing.T) {
	run := func(load model.Load, at time.Time) []model.Exception {
		if load.ID == "boom" {
			panic("bad record")
		}
		return rules.Evaluate(load, at)
	}
	bad := healthyLoad("boom")
	next := healthyLoad("after")
	next.LastGpsMinutesAgo = nil

	out := allLoadsWith(run, []model.Load{bad, next}, now)

	require.Len(t, out, 2)
	assert.Equal(t, model.StatusGreen, out[0].ComputedStatus)
	assert.Empty(t, out[0].Exceptions)
	assert.Equal(t, model.StatusRed, out[1].ComputedStatus)
}
