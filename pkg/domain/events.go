package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionOpen  EventType = "session_open"
	EventSessionClose EventType = "session_close"
	EventStepEnter    EventType = "step_enter"
	EventAnswer       EventType = "answer"
	EventComplete     EventType = "complete"
	EventFallback     EventType = "fallback"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// SessionEvent reports a lifecycle change.
type SessionEvent struct {
	EventBase
	Problem Problem `json:"problem,omitempty"`
}

// StepEvent reports that a step was revealed or an answer was accepted on it.
type StepEvent struct {
	EventBase
	Step    Step       `json:"step"`
	Branch  Branch     `json:"branch"`
	Answer  AnswerKind `json:"answer,omitempty"`
	Problem Problem    `json:"problem,omitempty"`
}

// FallbackEvent reports a recoverable failure absorbed by the session
// (location, route metrics, address resolution).
type FallbackEvent struct {
	EventBase
	Step   Step   `json:"step"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for session observability.
type LifecycleHooks struct {
	OnOpen     func(context.Context, *SessionEvent)
	OnClose    func(context.Context, *SessionEvent)
	OnComplete func(context.Context, *SessionEvent)
	OnStep     func(context.Context, *StepEvent)
	OnAnswer   func(context.Context, *StepEvent)
	OnFallback func(context.Context, *FallbackEvent)
}
