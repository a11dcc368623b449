// Package sse implements Server-Sent Events for alignment run progress.
package sse

import (
	"time"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventAlignmentStarted is sent when a run begins.
	EventAlignmentStarted EventType = "alignment.started"
	// EventAlignmentProgress is sent after each entry has been aligned.
	EventAlignmentProgress EventType = "alignment.progress"
	// EventAlignmentCompleted is sent once all results are stored.
	EventAlignmentCompleted EventType = "alignment.completed"
	// EventAlignmentFailed is sent when a run is rejected or cancelled.
	EventAlignmentFailed EventType = "alignment.failed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// SessionID limits delivery to clients watching that session.
	// Empty means every client.
	SessionID string `json:"-"`
}

// AlignmentStartedEventData is the data payload for run start events.
type AlignmentStartedEventData struct {
	SessionID string `json:"session_id"`
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
}

// AlignmentProgressEventData is the data payload for per-entry progress.
// Index is 1-based.
type AlignmentProgressEventData struct {
	SessionID  string `json:"session_id"`
	RunID      string `json:"run_id"`
	EntryID    string `json:"entry_id"`
	Identifier string `json:"identifier"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
}

// AlignmentCompletedEventData is the data payload for run completion.
type AlignmentCompletedEventData struct {
	SessionID string  `json:"session_id"`
	RunID     string  `json:"run_id"`
	Results   int     `json:"results"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// AlignmentFailedEventData is the data payload for failed runs.
type AlignmentFailedEventData struct {
	SessionID string `json:"session_id"`
	RunID     string `json:"run_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewAlignmentStartedEvent creates a run start event.
func NewAlignmentStartedEvent(sessionID, runID string, total int) Event {
	return Event{
		Type:      EventAlignmentStarted,
		SessionID: sessionID,
		Data: AlignmentStartedEventData{
			SessionID: sessionID,
			RunID:     runID,
			Total:     total,
		},
		Timestamp: time.Now(),
	}
}

// NewAlignmentProgressEvent creates a progress event for the index-th entry.
func NewAlignmentProgressEvent(sessionID, runID, entryID, identifier string, index, total int) Event {
	return Event{
		Type:      EventAlignmentProgress,
		SessionID: sessionID,
		Data: AlignmentProgressEventData{
			SessionID:  sessionID,
			RunID:      runID,
			EntryID:    entryID,
			Identifier: identifier,
			Index:      index,
			Total:      total,
		},
		Timestamp: time.Now(),
	}
}

// NewAlignmentCompletedEvent creates a run completion event.
func NewAlignmentCompletedEvent(sessionID, runID string, results int, elapsed time.Duration) Event {
	return Event{
		Type:      EventAlignmentCompleted,
		SessionID: sessionID,
		Data: AlignmentCompletedEventData{
			SessionID: sessionID,
			RunID:     runID,
			Results:   results,
			ElapsedMS: float64(elapsed.Microseconds()) / 1000,
		},
		Timestamp: time.Now(),
	}
}

// NewAlignmentFailedEvent creates a failed run event.
func NewAlignmentFailedEvent(sessionID, runID, code, message string) Event {
	return Event{
		Type:      EventAlignmentFailed,
		SessionID: sessionID,
		Data: AlignmentFailedEventData{
			SessionID: sessionID,
			RunID:     runID,
			Code:      code,
			Message:   message,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
