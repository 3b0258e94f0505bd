package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventExtract       EventType = "extract"
	EventMarkerCreated EventType = "marker_created"
	EventMarkerSkipped EventType = "marker_skipped"
)

// ExtractOutcome classifies how an extraction ended.
type ExtractOutcome string

const (
	OutcomeData        ExtractOutcome = "data"
	OutcomeMissing     ExtractOutcome = "missing"
	OutcomeUnsupported ExtractOutcome = "unsupported"
	OutcomeError       ExtractOutcome = "error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ExtractEvent is emitted once per Extract call.
type ExtractEvent struct {
	EventBase
	Node     string         `json:"node"`
	Port     string         `json:"port"`
	PlugType string         `json:"plug_type,omitempty"`
	Outcome  ExtractOutcome `json:"outcome"`
	Values   int            `json:"values"`
	Duration time.Duration  `json:"duration"`
}

// MarkerEvent is emitted for each marker created or skipped.
type MarkerEvent struct {
	EventBase
	PlugType string `json:"plug_type"`
	Marker   string `json:"marker,omitempty"`
	Value    string `json:"value"`
	Reason   string `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for inspector observability.
type LifecycleHooks struct {
	OnExtract func(context.Context, *ExtractEvent)
	OnMarker  func(context.Context, *MarkerEvent)
}
