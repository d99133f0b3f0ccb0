// Package identity maintains the stable example-to-uid mapping for each
// annotation task. Every distinct example text submitted under a task is
// assigned exactly one uid, and that assignment survives restarts and
// repeated submissions.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// Example is one persisted text-to-uid mapping row for a task.
type Example struct {
	TaskID    string    `json:"task_id"`
	UID       uuid.UUID `json:"uid"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
