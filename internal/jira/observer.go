package jira

import "time"

// RequestEvent describes one completed GET against the tracker.
// StatusCode is zero when the request never got a response.
type RequestEvent struct {
	URL        string
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Observer receives an event for every request the Client performs.
type Observer interface {
	OnRequest(event RequestEvent)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnRequest(RequestEvent) {}
