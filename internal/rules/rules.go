// Package rules maps a single load and the current time to the exceptions it raises.
package rules

import (
	"fmt"
	"time"

	"freight-ops-backend/internal/model"
	"freight-ops-backend/internal/parse"
)

// Scores order exceptions within one load. They are not comparable across loads.
const (
	ScoreNoGPS              = 1000
	ScorePickupLate         = 950
	ScoreDeliveryLate       = 900
	ScoreGPSStaleRisk       = 850
	ScoreGPSStaleWatch      = 500
	ScorePickupWindowSoon   = 450
	ScoreDeliveryWindowSoon = 400
)

const (
	gpsStaleWatchMinutes = 60
	gpsStaleRiskMinutes  = 120

	pickupSoonHours   = 2
	deliverySoonHours = 4
)

// Rule inspects one load at nowMs (epoch milliseconds).
type Rule struct {
	Code  model.ExceptionCode
	Check func(load model.Load, nowMs float64) (model.Exception, bool)
}

// All is the fixed rule set, in evaluation order.
var All = []Rule{
	{Code: model.CodeNoGPS, Check: noGPS},
	{Code: model.CodeGPSStale, Check: gpsStale},
	{Code: model.CodePickupLate, Check: pickupLate},
	{Code: model.CodeDeliveryLate, Check: deliveryLate},
	{Code: model.CodePickupWindowSoon, Check: pickupWindowSoon},
	{Code: model.CodeDeliveryWindowSoon, Check: deliveryWindowSoon},
}

// Evaluate runs every rule against the load. No rule suppresses another.
func Evaluate(load model.Load, now time.Time) []model.Exception {
	nowMs := parse.TimeMillis(now)
	var out []model.Exception
	for _, r := range All {
		if ex, ok := r.Check(load, nowMs); ok {
			out = append(out, ex)
		}
	}
	return out
}

func noGPS(load model.Load, _ float64) (model.Exception, bool) {
	if load.LastGpsMinutesAgo != nil {
		return model.Exception{}, false
	}
	return model.Exception{
		Code:       model.CodeNoGPS,
		Severity:   model.SeverityRisk,
		Status:     model.StatusRed,
		Title:      "No GPS",
		Detail:     "No GPS ping has been received for this load",
		NextAction: "Call the carrier to confirm the driver's location and get tracking enabled",
		Score:      ScoreNoGPS,
	}, true
}

func gpsStale(load model.Load, _ float64) (model.Exception, bool) {
	if load.LastGpsMinutesAgo == nil {
		return model.Exception{}, false
	}
	m := *load.LastGpsMinutesAgo
	switch {
	case m > gpsStaleRiskMinutes:
		return model.Exception{
			Code:       model.CodeGPSStale,
			Severity:   model.SeverityRisk,
			Status:     model.StatusRed,
			Title:      "GPS stale",
			Detail:     fmt.Sprintf("Last GPS ping was %d min ago", m),
			NextAction: "Call the driver for a location update",
			Score:      ScoreGPSStaleRisk,
		}, true
	case m >= gpsStaleWatchMinutes:
		return model.Exception{
			Code:       model.CodeGPSStale,
			Severity:   model.SeverityWatch,
			Status:     model.StatusYellow,
			Title:      "GPS aging",
			Detail:     fmt.Sprintf("Last GPS ping was %d min ago", m),
			NextAction: "Text the driver for a location update",
			Score:      ScoreGPSStaleWatch,
		}, true
	}
	return model.Exception{}, false
}

func isPickupLate(load model.Load, nowMs float64) bool {
	return nowMs > parse.Millis(load.PickupWindowEndISO)
}

func isDeliveryLate(load model.Load, nowMs float64) bool {
	return nowMs > parse.Millis(load.DeliveryWindowEndISO)
}

func pickupLate(load model.Load, nowMs float64) (model.Exception, bool) {
	if !isPickupLate(load, nowMs) {
		return model.Exception{}, false
	}
	end := parse.Millis(load.PickupWindowEndISO)
	return model.Exception{
		Code:       model.CodePickupLate,
		Severity:   model.SeverityRisk,
		Status:     model.StatusRed,
		Title:      "Pickup late",
		Detail:     "Pickup window closed " + durationLabel(nowMs-end) + " ago",
		NextAction: "Call the carrier to confirm pickup status and a new ETA",
		Score:      ScorePickupLate,
	}, true
}

func deliveryLate(load model.Load, nowMs float64) (model.Exception, bool) {
	if !isDeliveryLate(load, nowMs) {
		return model.Exception{}, false
	}
	end := parse.Millis(load.DeliveryWindowEndISO)
	return model.Exception{
		Code:       model.CodeDeliveryLate,
		Severity:   model.SeverityRisk,
		Status:     model.StatusRed,
		Title:      "Delivery late",
		Detail:     "Delivery window closed " + durationLabel(nowMs-end) + " ago",
		NextAction: "Call the carrier for a delivery ETA and update the receiver",
		Score:      ScoreDeliveryLate,
	}, true
}

func pickupWindowSoon(load model.Load, nowMs float64) (model.Exception, bool) {
	if isPickupLate(load, nowMs) {
		return model.Exception{}, false
	}
	start, ok := startsWithin(load.PickupWindowStartISO, nowMs, pickupSoonHours)
	if !ok {
		return model.Exception{}, false
	}
	return model.Exception{
		Code:       model.CodePickupWindowSoon,
		Severity:   model.SeverityWatch,
		Status:     model.StatusYellow,
		Title:      "Pickup soon",
		Detail:     "Pickup window opens in " + durationLabel(start-nowMs),
		NextAction: "Confirm the driver is on schedule for pickup",
		Score:      ScorePickupWindowSoon,
	}, true
}

func deliveryWindowSoon(load model.Load, nowMs float64) (model.Exception, bool) {
	if isDeliveryLate(load, nowMs) {
		return model.Exception{}, false
	}
	start, ok := startsWithin(load.DeliveryWindowStartISO, nowMs, deliverySoonHours)
	if !ok {
		return model.Exception{}, false
	}
	return model.Exception{
		Code:       model.CodeDeliveryWindowSoon,
		Severity:   model.SeverityWatch,
		Status:     model.StatusYellow,
		Title:      "Delivery soon",
		Detail:     "Delivery window opens in " + durationLabel(start-nowMs),
		NextAction: "Confirm the delivery appointment and ETA with the receiver",
		Score:      ScoreDeliveryWindowSoon,
	}, true
}

// startsWithin reports whether startISO lies in (now, now+hours], returning it in ms.
func startsWithin(startISO string, nowMs float64, hours int) (float64, bool) {
	if startISO == "" {
		return 0, false
	}
	start := parse.Millis(startISO)
	if start <= nowMs || start-nowMs > float64(hours*parse.MsPerHour) {
		return 0, false
	}
	return start, true
}

// durationLabel renders a positive millisecond span as "2h 5m" or "40m".
func durationLabel(ms float64) string {
	mins := int(ms / parse.MsPerMinute)
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}
