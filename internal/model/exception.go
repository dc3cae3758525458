package model

// Status is the red/yellow/green traffic-light classification.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// Severity is the watch/risk classification carried alongside Status.
type Severity string

const (
	SeverityWatch Severity = "watch"
	SeverityRisk  Severity = "risk"
)

// ExceptionCode identifies the rule that produced an exception.
type ExceptionCode string

const (
	CodeNoGPS              ExceptionCode = "NO_GPS"
	CodeGPSStale           ExceptionCode = "GPS_STALE"
	CodePickupLate         ExceptionCode = "PICKUP_LATE"
	CodeDeliveryLate       ExceptionCode = "DELIVERY_LATE"
	CodePickupWindowSoon   ExceptionCode = "PICKUP_WINDOW_SOON"
	CodeDeliveryWindowSoon ExceptionCode = "DELIVERY_WINDOW_SOON"
)

// Exception is a single rule-detected problem on a load.
type Exception struct {
	Code       ExceptionCode `json:"code"`
	Severity   Severity      `json:"severity"`
	Status     Status        `json:"status"`
	Title      string        `json:"title"`
	Detail     string        `json:"detail"`
	NextAction string        `json:"nextAction"`
	Score      int           `json:"score"`
}

// LoadSnapshot is the per-load fingerprint used to detect transitions between ticks.
type LoadSnapshot struct {
	Status         Status          `json:"status"`
	ExceptionCodes []ExceptionCode `json:"exceptionCodes"`
}

// SnapshotMap maps load id to its last observed snapshot.
type SnapshotMap map[string]LoadSnapshot
