// Package actions turns exceptions on attention-worthy loads into a short queue
// of concrete operator actions and tracks what the operator did with them.
package actions

import (
	"net/url"
	"sort"
	"strings"

	"freight-ops-backend/internal/model"
)

// DeriveException is the slice of an exception the deriver needs.
type DeriveException struct {
	Code     model.ExceptionCode
	Status   model.Status
	DueAtISO string
}

// DeriveLoad is an attention-worthy load with its exceptions and contacts.
type DeriveLoad struct {
	LoadID          string
	OriginCityState string
	DestCityState   string
	CarrierName     string
	CarrierPhone    string
	DriverPhone     string
	Exceptions      []DeriveException
}

func (l DeriveLoad) lane() string {
	return model.Lane(l.OriginCityState, l.DestCityState)
}

// contactPhone falls back from the carrier's phone to the driver's.
func (l DeriveLoad) contactPhone() string {
	if p := strings.TrimSpace(l.CarrierPhone); p != "" {
		return p
	}
	return strings.TrimSpace(l.DriverPhone)
}

// Rule ids. Action ids are loadId + "__" + ruleId.
const (
	RuleNoGPSCall        = "NO_GPS_CALL"
	RuleGPSStaleText     = "GPS_STALE_RED_TEXT"
	RulePickupLateCall   = "PICKUP_LATE_CALL"
	RuleDeliveryLateCall = "DELIVERY_LATE_CALL"
	RulePickupSoonText   = "PICKUP_WINDOW_SOON_TEXT"
	RuleDeliverySoonMap  = "DELIVERY_WINDOW_SOON_MAP"
)

const (
	actionIDSeparator = "__"
	mapsSearchURL     = "https://www.google.com/maps/search/?api=1&query="
)

type actionRule struct {
	id       string
	code     model.ExceptionCode
	status   model.Status // empty matches any status
	priority int
	kind     model.ActionType
	title    func(l DeriveLoad) string
	detail   func(l DeriveLoad) string
	href     func(l DeriveLoad) string
}

func (r actionRule) match(l DeriveLoad) (DeriveException, bool) {
	for _, ex := range l.Exceptions {
		if ex.Code == r.code && (r.status == "" || ex.Status == r.status) {
			return ex, true
		}
	}
	return DeriveException{}, false
}

// precedence is walked in order; the first matching rule wins for a load.
// Yellow GPS_STALE has no entry.
var precedence = []actionRule{
	{
		id: RuleNoGPSCall, code: model.CodeNoGPS, priority: 1, kind: model.ActionCall,
		title:  func(l DeriveLoad) string { return "Call carrier for location: " + l.lane() },
		detail: func(l DeriveLoad) string { return carrierLabel(l) + " has not sent any GPS for this load." },
		href:   telHref,
	},
	{
		id: RuleGPSStaleText, code: model.CodeGPSStale, status: model.StatusRed, priority: 1, kind: model.ActionText,
		title:  func(l DeriveLoad) string { return "Text driver for location update: " + l.lane() },
		detail: func(l DeriveLoad) string { return "GPS has gone stale on " + l.lane() + "." },
		href: func(l DeriveLoad) string {
			return smsHref(l, "Hi, this is dispatch checking on load "+l.LoadID+". Can you send your current location and ETA?")
		},
	},
	{
		id: RulePickupLateCall, code: model.CodePickupLate, priority: 1, kind: model.ActionCall,
		title:  func(l DeriveLoad) string { return "Call carrier about late pickup: " + l.lane() },
		detail: func(l DeriveLoad) string { return "Pickup window has closed. Confirm with " + carrierLabel(l) + " whether the load is picked up." },
		href:   telHref,
	},
	{
		id: RuleDeliveryLateCall, code: model.CodeDeliveryLate, priority: 1, kind: model.ActionCall,
		title:  func(l DeriveLoad) string { return "Call carrier about late delivery: " + l.lane() },
		detail: func(l DeriveLoad) string { return "Delivery window has closed. Get a new ETA and update the receiver." },
		href:   telHref,
	},
	{
		id: RulePickupSoonText, code: model.CodePickupWindowSoon, priority: 2, kind: model.ActionText,
		title:  func(l DeriveLoad) string { return "Confirm pickup ETA: " + l.lane() },
		detail: func(l DeriveLoad) string { return "Pickup window opens soon in " + l.OriginCityState + "." },
		href: func(l DeriveLoad) string {
			return smsHref(l, "Hi, confirming you are on schedule for pickup on load "+l.LoadID+" in "+l.OriginCityState+".")
		},
	},
	{
		id: RuleDeliverySoonMap, code: model.CodeDeliveryWindowSoon, priority: 2, kind: model.ActionMap,
		title:  func(l DeriveLoad) string { return "Check route to delivery: " + l.lane() },
		detail: func(l DeriveLoad) string { return "Delivery window opens soon in " + l.DestCityState + "." },
		href: func(l DeriveLoad) string {
			if strings.TrimSpace(l.DestCityState) == "" {
				return ""
			}
			return mapsSearchURL + encodeComponent(l.DestCityState)
		},
	},
}

// ActionID builds the stable id for a load/rule pair.
func ActionID(loadID, ruleID string) string {
	return loadID + actionIDSeparator + ruleID
}

// Derive picks at most one action per load by precedence and orders the result
// by priority, due time, then creation time. Loads matching no rule contribute nothing.
func Derive(loads []DeriveLoad, nowISO string) []model.BrokerAction {
	out := []model.BrokerAction{}
	for _, l := range loads {
		for _, r := range precedence {
			ex, ok := r.match(l)
			if !ok {
				continue
			}
			out = append(out, model.BrokerAction{
				ID:           ActionID(l.LoadID, r.id),
				LoadID:       l.LoadID,
				Title:        r.title(l),
				Detail:       r.detail(l),
				ActionType:   r.kind,
				Href:         r.href(l),
				Priority:     r.priority,
				DueAtISO:     ex.DueAtISO,
				CreatedAtISO: nowISO,
				Status:       model.ActionOpen,
				RuleID:       r.id,
			})
			break
		}
	}
	SortActions(out)
	return out
}

// SortActions orders by priority, then DueAtISO and CreatedAtISO as strings.
// An empty DueAtISO sorts before any timestamp.
func SortActions(as []model.BrokerAction) {
	sort.SliceStable(as, func(i, j int) bool {
		a, b := as[i], as[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.DueAtISO != b.DueAtISO {
			return a.DueAtISO < b.DueAtISO
		}
		return a.CreatedAtISO < b.CreatedAtISO
	})
}

// DeriveInput builds deriver input from evaluated loads, attaching the due time
// each exception is about.
func DeriveInput(loads []model.EvaluatedLoad) []DeriveLoad {
	out := make([]DeriveLoad, 0, len(loads))
	for _, l := range loads {
		dl := DeriveLoad{
			LoadID:          l.ID,
			OriginCityState: l.OriginCityState,
			DestCityState:   l.DestCityState,
			CarrierName:     l.CarrierName,
			CarrierPhone:    l.CarrierPhone,
			DriverPhone:     l.DriverPhone,
		}
		for _, ex := range l.Exceptions {
			dl.Exceptions = append(dl.Exceptions, DeriveException{
				Code:     ex.Code,
				Status:   ex.Status,
				DueAtISO: dueAt(l.Load, ex.Code),
			})
		}
		out = append(out, dl)
	}
	return out
}

func dueAt(l model.Load, code model.ExceptionCode) string {
	switch code {
	case model.CodePickupLate:
		return l.PickupWindowEndISO
	case model.CodePickupWindowSoon:
		return l.PickupWindowStartISO
	case model.CodeDeliveryLate:
		return l.DeliveryWindowEndISO
	case model.CodeDeliveryWindowSoon:
		return l.DeliveryWindowStartISO
	}
	return ""
}

func carrierLabel(l DeriveLoad) string {
	if l.CarrierName != "" {
		return l.CarrierName
	}
	return "The carrier"
}

// telHref returns "" when there is no phone; the affordance renders disabled.
func telHref(l DeriveLoad) string {
	phone := dialable(l.contactPhone())
	if phone == "" {
		return ""
	}
	return "tel:" + phone
}

func smsHref(l DeriveLoad, body string) string {
	phone := dialable(l.contactPhone())
	if phone == "" {
		return ""
	}
	return "sms:" + phone + "?body=" + encodeComponent(body)
}

// dialable keeps digits and a leading plus.
func dialable(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encodeComponent percent-encodes like a URI component (spaces as %20).
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
