package model

// ActionType is the kind of affordance an action renders as.
type ActionType string

const (
	ActionCall ActionType = "CALL"
	ActionText ActionType = "TEXT"
	ActionMap  ActionType = "MAP"
	ActionNote ActionType = "NOTE"
)

// ActionStatus is the lifecycle state of a BrokerAction.
type ActionStatus string

const (
	ActionOpen    ActionStatus = "OPEN"
	ActionDone    ActionStatus = "DONE"
	ActionSnoozed ActionStatus = "SNOOZED"
)

// BrokerAction is one recommended operator action for a load.
type BrokerAction struct {
	ID           string       `json:"id"`
	LoadID       string       `json:"loadId"`
	Title        string       `json:"title"`
	Detail       string       `json:"detail,omitempty"`
	ActionType   ActionType   `json:"actionType"`
	Href         string       `json:"href,omitempty"`
	Priority     int          `json:"priority"`
	DueAtISO     string       `json:"dueAtISO,omitempty"`
	CreatedAtISO string       `json:"createdAtISO"`
	Status       ActionStatus `json:"status"`
	RuleID       string       `json:"ruleId"`
}

// ActionStateEntry is the persisted lifecycle state of one action.
type ActionStateEntry struct {
	Status         ActionStatus `json:"status"`
	SnoozeUntilISO string       `json:"snoozeUntilISO,omitempty"`
	UpdatedAtISO   string       `json:"updatedAtISO"`
}

// ActionStateMap is keyed by action id.
type ActionStateMap map[string]ActionStateEntry

// ContactMethod is how an operator reached out about a load.
type ContactMethod string

const (
	ContactCall  ContactMethod = "CALL"
	ContactText  ContactMethod = "TEXT"
	ContactMap   ContactMethod = "MAP"
	ContactEmail ContactMethod = "EMAIL"
)

// ContactLogEntry records a single outreach event.
type ContactLogEntry struct {
	ID       string        `json:"id"`
	ActionID string        `json:"actionId"`
	LoadID   string        `json:"loadId"`
	Method   ContactMethod `json:"method"`
	AtISO    string        `json:"atISO"`
}
