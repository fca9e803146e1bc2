package types

import "time"

type RawAssignment struct {
	Subject      string `json:"subject" yaml:"subject"`
	Title        string `json:"title" yaml:"title"`
	DeadlineText string `json:"deadline" yaml:"deadline"`
}

type ParsedDeadline struct {
	Time     time.Time
	Raw      string
	Fallback bool
	Failure  error
}

type Reminder struct {
	Method  string
	Minutes int64
}

type CalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	ColorID     string
	Reminders   []Reminder
	Key         string
	NeedsReview bool
}

type RegistrationState string

const (
	StatePending   RegistrationState = "pending"
	StateSubmitted RegistrationState = "submitted"
	StateConfirmed RegistrationState = "confirmed"
	StateFailed    RegistrationState = "failed"
	StateSkipped   RegistrationState = "skipped"
)

type RegistrationResult struct {
	Event   CalendarEvent
	State   RegistrationState
	EventID string
	Link    string
	Err     error
}

type Summary struct {
	Attempted int `json:"attempted"`
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Review    int `json:"review"`
}

type BaseResponse[t any] struct {
	Data    t      `json:"data"`
	Message string `json:"message"`
}

type AssignmentsRequest struct {
	Assignments []RawAssignment `json:"assignments"`
}

type EventResponse struct {
	Key         string    `json:"key"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	NeedsReview bool      `json:"needsReview"`
	State       string    `json:"state,omitempty"`
	EventID     string    `json:"eventId,omitempty"`
	Link        string    `json:"link,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type FeedRequest struct {
	URL string `json:"url"`
}

type RunResponse struct {
	Summary Summary         `json:"summary"`
	Events  []EventResponse `json:"events"`
}

// UpcomingEvent is what the reminder side needs from an event already in
// the calendar.
type UpcomingEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	Deadline string `json:"deadline"`
	AllDay   bool   `json:"allDay"`
	Link     string `json:"link,omitempty"`
}
