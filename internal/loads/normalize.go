package loads

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"freight-ops-backend/internal/model"
)

// ErrMissingID is returned by Normalize for a record with no usable id.
var ErrMissingID = errors.New("load record has no id")

// Each field is read from the first key path that holds a value. Dotted paths
// walk nested objects.
var (
	idKeys            = []string{"id", "loadId", "load_id", "loadNumber", "load_number"}
	originKeys        = []string{"originCityState", "origin_city_state", "origin.cityState", "origin"}
	destKeys          = []string{"destCityState", "dest_city_state", "destination.cityState", "destination", "dest"}
	pickupStartKeys   = []string{"pickupWindowStartISO", "pickup_window_start", "pickup.windowStart", "pickupWindow.start"}
	pickupEndKeys     = []string{"pickupWindowEndISO", "pickup_window_end", "pickup.windowEnd", "pickupWindow.end"}
	deliveryStartKeys = []string{"deliveryWindowStartISO", "delivery_window_start", "delivery.windowStart", "deliveryWindow.start"}
	deliveryEndKeys   = []string{"deliveryWindowEndISO", "delivery_window_end", "delivery.windowEnd", "deliveryWindow.end"}
	carrierNameKeys   = []string{"carrierName", "carrier_name", "carrier.name"}
	carrierPhoneKeys  = []string{"carrierPhone", "carrier_phone", "carrier.phone", "contacts.carrierPhone"}
	dispatchPhoneKeys = []string{"dispatchPhone", "dispatch_phone", "carrier.dispatchPhone", "contacts.dispatchPhone"}
	driverPhoneKeys   = []string{"driverPhone", "driver_phone", "driver.phone", "contacts.driverPhone"}
	dispatchEmailKeys = []string{"dispatchEmail", "dispatch_email", "carrier.dispatchEmail", "contacts.dispatchEmail"}
	driverEmailKeys   = []string{"driverEmail", "driver_email", "driver.email", "contacts.driverEmail"}
	gpsKeys           = []string{"lastGpsMinutesAgo", "last_gps_minutes_ago", "gps.minutesAgo", "tracking.lastPingMinutesAgo"}
	nextActionKeys    = []string{"nextAction", "next_action"}
	riskReasonKeys    = []string{"riskReason", "risk_reason"}
	statusKeys        = []string{"status"}
)

// Normalize maps one raw upstream record onto model.Load.
func Normalize(raw map[string]any) (model.Load, error) {
	id := firstString(raw, idKeys)
	if id == "" {
		return model.Load{}, ErrMissingID
	}

	l := model.Load{
		ID:                     id,
		OriginCityState:        firstString(raw, originKeys),
		DestCityState:          firstString(raw, destKeys),
		PickupWindowStartISO:   firstString(raw, pickupStartKeys),
		PickupWindowEndISO:     firstString(raw, pickupEndKeys),
		DeliveryWindowStartISO: firstString(raw, deliveryStartKeys),
		DeliveryWindowEndISO:   firstString(raw, deliveryEndKeys),
		CarrierName:            firstString(raw, carrierNameKeys),
		CarrierPhone:           firstString(raw, carrierPhoneKeys),
		DispatchPhone:          firstString(raw, dispatchPhoneKeys),
		DriverPhone:            firstString(raw, driverPhoneKeys),
		DispatchEmail:          firstString(raw, dispatchEmailKeys),
		DriverEmail:            firstString(raw, driverEmailKeys),
		LastGpsMinutesAgo:      firstMinutes(raw, gpsKeys),
		NextAction:             firstString(raw, nextActionKeys),
		RiskReason:             firstString(raw, riskReasonKeys),
	}

	switch s := model.Status(strings.ToLower(firstString(raw, statusKeys))); s {
	case model.StatusGreen, model.StatusYellow, model.StatusRed:
		l.Status = s
	}
	return l, nil
}

// lookup walks a dotted path through nested objects.
func lookup(raw map[string]any, path string) (any, bool) {
	var cur any = raw
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

func firstString(raw map[string]any, paths []string) string {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case json.Number:
			return t.String()
		}
	}
	return ""
}

// firstMinutes accepts numbers or numeric strings. It returns nil when no
// path holds a usable value, which means no GPS ping was ever received.
func firstMinutes(raw map[string]any, paths []string) *int {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		var f float64
		switch t := v.(type) {
		case float64:
			f = t
		case json.Number:
			n, err := t.Float64()
			if err != nil {
				continue
			}
			f = n
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				continue
			}
			f = n
		default:
			continue
		}
		if math.IsNaN(f) || f < 0 {
			continue
		}
		m := math.MaxInt
		if f < float64(math.MaxInt) {
			m = int(math.Floor(f))
		}
		return &m
	}
	return nil
}
