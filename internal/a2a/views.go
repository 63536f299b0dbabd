package a2a

import "github.com/google/uuid"

// LegacyStatus is the flat record shape used by the legacy REST protocol
// and persisted in the result store.
type LegacyStatus struct {
	TaskID          string  `json:"task_id"`
	Status          string  `json:"status"`
	ArtifactContent string  `json:"artifact_content,omitempty"`
	ProcessedAt     float64 `json:"processed_at,omitempty"`
	Message         string  `json:"message,omitempty"`
}

// Legacy wire statuses. The legacy protocol has no distinct value for
// failed or cancelled: anything that is not completed reads as pending.
const (
	LegacyPending   = "pending"
	LegacyCompleted = "completed"
)

// LegacyView projects a task outcome into the flat legacy shape.
// Only a completed outcome carries the artifact content and timestamp.
func LegacyView(taskID string, state TaskState, artifactContent string, processedAt float64) LegacyStatus {
	if state == StateCompleted {
		return LegacyStatus{
			TaskID:          taskID,
			Status:          LegacyCompleted,
			ArtifactContent: artifactContent,
			ProcessedAt:     processedAt,
		}
	}
	return LegacyStatus{TaskID: taskID, Status: LegacyPending}
}

// WorkingTask synthesizes the in-progress view for a task id with no
// stored outcome yet. Absence of a result is not an error.
func WorkingTask(taskID string) *Task {
	return NewTask(taskID, StateWorking, nil)
}

// TerminalTask builds the terminal A2A view of a stored outcome. A
// completed task carries the translated text as a single text artifact.
func TerminalTask(taskID string, state TaskState, artifactContent string) *Task {
	t := NewTask(taskID, state, nil)
	if state == StateCompleted {
		t.Artifacts = []Artifact{{
			ArtifactID: uuid.New().String(),
			Name:       "translation",
			Parts:      []Part{TextPart(artifactContent)},
		}}
	}
	return t
}
