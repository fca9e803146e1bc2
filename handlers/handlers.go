package handlers

import (
	"sync"

	c "github.com/quesurifn/portal-deadline-sync/calendar"
	"github.com/quesurifn/portal-deadline-sync/portal"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
)

type Handlers struct {
	Logger *zap.Logger
	// Pipeline.Registrar is nil when the server runs without calendar access.
	Pipeline *c.Pipeline
	Feed     *portal.Feed
	// nil when the server runs without calendar access.
	Upcoming *c.Upcoming

	// one registration batch at a time
	mu sync.Mutex
}

func eventResponse(e t.CalendarEvent) t.EventResponse {
	return t.EventResponse{
		Key:         e.Key,
		Summary:     e.Summary,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		NeedsReview: e.NeedsReview,
	}
}

func resultResponse(r t.RegistrationResult) t.EventResponse {
	resp := eventResponse(r.Event)
	resp.State = string(r.State)
	resp.EventID = r.EventID
	resp.Link = r.Link
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}
