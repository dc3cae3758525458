package model

// Load is a single freight shipment tracked by the dashboard.
type Load struct {
	ID              string `json:"id"`
	OriginCityState string `json:"originCityState"`
	DestCityState   string `json:"destCityState"`

	PickupWindowStartISO   string `json:"pickupWindowStartISO"`
	PickupWindowEndISO     string `json:"pickupWindowEndISO"`
	DeliveryWindowStartISO string `json:"deliveryWindowStartISO"`
	DeliveryWindowEndISO   string `json:"deliveryWindowEndISO"`

	CarrierName   string `json:"carrierName"`
	CarrierPhone  string `json:"carrierPhone"`
	DispatchPhone string `json:"dispatchPhone,omitempty"`
	DriverPhone   string `json:"driverPhone,omitempty"`
	DispatchEmail string `json:"dispatchEmail,omitempty"`
	DriverEmail   string `json:"driverEmail,omitempty"`

	// LastGpsMinutesAgo is nil when no GPS ping has ever been received.
	LastGpsMinutesAgo *int `json:"lastGpsMinutesAgo"`

	// Human-authored fallbacks, used only when evaluation is bypassed.
	NextAction string `json:"nextAction,omitempty"`
	RiskReason string `json:"riskReason,omitempty"`
	Status     Status `json:"status,omitempty"`
}

// Lane returns the "origin → destination" label used in action text.
func Lane(origin, dest string) string {
	return origin + " → " + dest
}

func (l Load) Lane() string {
	return Lane(l.OriginCityState, l.DestCityState)
}

// EvaluatedLoad is a Load plus the result of running the exception rules on it.
type EvaluatedLoad struct {
	Load
	ComputedStatus     Status      `json:"computedStatus"`
	ComputedRiskReason string      `json:"computedRiskReason,omitempty"`
	ComputedNextAction string      `json:"computedNextAction"`
	Exceptions         []Exception `json:"exceptions"`
}

// Primary returns the highest ranked exception, if any.
func (e EvaluatedLoad) Primary() (Exception, bool) {
	if len(e.Exceptions) == 0 {
		return Exception{}, false
	}
	return e.Exceptions[0], true
}

// NeedsAttention reports whether the load is red or yellow.
func (e EvaluatedLoad) NeedsAttention() bool {
	return e.ComputedStatus == StatusRed || e.ComputedStatus == StatusYellow
}
