package model

// Notification is raised when a load escalates between ticks.
type Notification struct {
	ID            string        `json:"id"`
	LoadID        string        `json:"loadId"`
	CreatedAtISO  string        `json:"createdAtISO"`
	Severity      Severity      `json:"severity"`
	Status        Status        `json:"status"`
	Message       string        `json:"message"`
	ExceptionCode ExceptionCode `json:"exceptionCode"`
	Acked         bool          `json:"acked"`
}
