package loads

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-ops-backend/internal/model"
)

func raw(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func intPtr(i int) *int { return &i }

func TestNormalize_CanonicalShape(t *testing.T) {
	l, err := Normalize(raw(t, `{
		"id": "L-100",
		"originCityState": "Dallas, TX",
		"destCityState": "Memphis, TN",
		"pickupWindowStartISO": "2024-05-01T08:00:00Z",
		"pickupWindowEndISO": "2024-05-01T10:00:00Z",
		"deliveryWindowStartISO": "2024-05-02T08:00:00Z",
		"deliveryWindowEndISO": "2024-05-02T10:00:00Z",
		"carrierName": "Acme Freight",
		"carrierPhone": "555-123-4567",
		"lastGpsMinutesAgo": 42,
		"status": "YELLOW"
	}`))
	require.NoError(t, err)
	assert.Equal(t, model.Load{
		ID:                     "L-100",
		OriginCityState:        "Dallas, TX",
		DestCityState:          "Memphis, TN",
		PickupWindowStartISO:   "2024-05-01T08:00:00Z",
		PickupWindowEndISO:     "2024-05-01T10:00:00Z",
		DeliveryWindowStartISO: "2024-05-02T08:00:00Z",
		DeliveryWindowEndISO:   "2024-05-02T10:00:00Z",
		CarrierName:            "Acme Freight",
		CarrierPhone:           "555-123-4567",
		LastGpsMinutesAgo:      intPtr(42),
		Status:                 model.StatusYellow,
	}, l)
}

func TestNormalize_FallbackKeys(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "camel", input: `{"id":"a","carrierPhone":"1","carrier_phone":"2"}`, want: "1"},
		{name: "snake", input: `{"id":"a","carrier_phone":"2"}`, want: "2"},
		{name: "nested carrier", input: `{"id":"a","carrier":{"phone":"3"}}`, want: "3"},
		{name: "contacts block", input: `{"id":"a","contacts":{"carrierPhone":"4"}}`, want: "4"},
		{name: "blank falls through", input: `{"id":"a","carrierPhone":"  ","contacts":{"carrierPhone":"5"}}`, want: "5"},
		{name: "absent", input: `{"id":"a"}`, want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := Normalize(raw(t, tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, l.CarrierPhone)
		})
	}
}

func TestNormalize_GPSMinutes(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  *int
	}{
		{name: "number", input: `{"id":"a","lastGpsMinutesAgo":61}`, want: intPtr(61)},
		{name: "fractional number", input: `{"id":"a","lastGpsMinutesAgo":61.9}`, want: intPtr(61)},
		{name: "numeric string", input: `{"id":"a","lastGpsMinutesAgo":" 130 "}`, want: intPtr(130)},
		{name: "zero", input: `{"id":"a","lastGpsMinutesAgo":0}`, want: intPtr(0)},
		{name: "null", input: `{"id":"a","lastGpsMinutesAgo":null}`, want: nil},
		{name: "missing", input: `{"id":"a"}`, want: nil},
		{name: "garbage string", input: `{"id":"a","lastGpsMinutesAgo":"recently"}`, want: nil},
		{name: "nested fallback", input: `{"id":"a","gps":{"minutesAgo":"15"}}`, want: intPtr(15)},
		{name: "huge number", input: `{"id":"a","lastGpsMinutesAgo":1e20}`, want: intPtr(math.MaxInt)},
		{name: "huge string", input: `{"id":"a","lastGpsMinutesAgo":"1e30"}`, want: intPtr(math.MaxInt)},
		{name: "infinite string", input: `{"id":"a","lastGpsMinutesAgo":"+Inf"}`, want: intPtr(math.MaxInt)},
		{name: "negative", input: `{"id":"a","lastGpsMinutesAgo":-5}`, want: nil},
		{name: "negative falls through", input: `{"id":"a","lastGpsMinutesAgo":-5,"gps":{"minutesAgo":20}}`, want: intPtr(20)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := Normalize(raw(t, tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, l.LastGpsMinutesAgo)
		})
	}
}

func TestNormalize_ID(t *testing.T) {
	l, err := Normalize(raw(t, `{"loadNumber": 12345}`))
	require.NoError(t, err)
	assert.Equal(t, "12345", l.ID)

	_, err = Normalize(raw(t, `{"carrierName":"Acme"}`))
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = Normalize(raw(t, `{"id":"   "}`))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestNormalize_IgnoresUnknownStatus(t *testing.T) {
	l, err := Normalize(raw(t, `{"id":"a","status":"purple"}`))
	require.NoError(t, err)
	assert.Empty(t, l.Status)
}
