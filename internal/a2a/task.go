// Package a2a defines the canonical task lifecycle and its two wire
// encodings: the A2A task object and the flat legacy status record.
package a2a

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskState represents the lifecycle state of a task.
type TaskState string

const (
	StateSubmitted TaskState = "submitted"
	StateWorking   TaskState = "working"
	StateCompleted TaskState = "completed"
	StateFailed    TaskState = "failed"
	StateCancelled TaskState = "cancelled"
)

// Terminal returns true if no further transition is allowed out of s.
func (s TaskState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
// Transitions only run forward: submitted → working → {completed|failed|cancelled}.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case StateSubmitted:
		return next == StateWorking || next.Terminal()
	case StateWorking:
		return next.Terminal()
	}
	return false
}

// Part is one element of a message or artifact body. It is a tagged
// variant: kind "text" carries Text, kind "data" carries Data.
type Part struct {
	Kind string         `json:"kind"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// Part kinds.
const (
	PartKindText = "text"
	PartKindData = "data"
)

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Kind: PartKindText, Text: text}
}

// DataPart builds a data part.
func DataPart(data map[string]any) Part {
	return Part{Kind: PartKindData, Data: data}
}

// Message is the A2A conversational unit exchanged with the agent.
type Message struct {
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	MessageID string `json:"messageId,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// Message roles.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// TextContent returns the first text part of the message.
func (m Message) TextContent() (string, bool) {
	for _, p := range m.Parts {
		if p.Kind == PartKindText {
			return p.Text, true
		}
	}
	return "", false
}

// TargetLanguage extracts the "target_language" value from the message's
// data parts, falling back to the given default.
func (m Message) TargetLanguage(fallback string) string {
	for _, p := range m.Parts {
		if p.Kind != PartKindData {
			continue
		}
		if v, ok := p.Data["target_language"].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

// Artifact holds output produced by a completed task.
type Artifact struct {
	ArtifactID string         `json:"artifactId"`
	Name       string         `json:"name,omitempty"`
	Parts      []Part         `json:"parts"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// TaskStatus is the state portion of a task, with an optional agent message.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Task is the A2A wire representation of a unit of translation work.
type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	History   []Message  `json:"history,omitempty"`
	Kind      string     `json:"kind"`
}

// NewTask constructs a task in the given state with a fresh context id.
// The optional message is attached to the status.
func NewTask(id string, state TaskState, msg *Message) *Task {
	return &Task{
		ID:        id,
		ContextID: uuid.New().String(),
		Status: TaskStatus{
			State:     state,
			Message:   msg,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
		Kind: "task",
	}
}

// Advance moves the task to the next state, refusing transitions the
// lifecycle does not permit.
func (t *Task) Advance(next TaskState) error {
	if !t.Status.State.CanTransitionTo(next) {
		return &TransitionError{From: t.Status.State, To: next}
	}
	t.Status.State = next
	t.Status.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return nil
}

// TransitionError reports a lifecycle transition the state machine forbids.
type TransitionError struct {
	From TaskState
	To   TaskState
}

func (e *TransitionError) Error() string {
	return "invalid task transition from " + string(e.From) + " to " + string(e.To)
}

// GenerateTaskID creates a unique task identifier.
func GenerateTaskID() string {
	u := uuid.New().String()
	return "task_" + strings.ReplaceAll(u, "-", "")[:12]
}
