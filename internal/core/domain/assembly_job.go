package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssemblyJobStatus represents the status of a background assembly job
type AssemblyJobStatus string

const (
	AssemblyJobStatusQueued  AssemblyJobStatus = "queued"
	AssemblyJobStatusRunning AssemblyJobStatus = "running"
	AssemblyJobStatusDone    AssemblyJobStatus = "done"
	AssemblyJobStatusFailed  AssemblyJobStatus = "failed"
	// AssemblyJobStatusSkipped means the consolidated size exceeded the hard
	// cap and the streaming locator stays as the permanent serving path.
	AssemblyJobStatusSkipped AssemblyJobStatus = "skipped"
)

// AssemblyJob is the durable record for one fire-and-forget assembly run,
// so a crash mid-assembly is discoverable by the startup recovery sweep.
type AssemblyJob struct {
	Token     uuid.UUID
	Status    AssemblyJobStatus
	Attempts  int
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
	StartedAt *time.Time
}
