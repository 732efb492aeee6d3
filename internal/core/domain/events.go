package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle event subjects published on the event broker
const (
	SubjectUploadFinalized = "media.upload.finalized"
	SubjectAssemblyRequest = "media.assembly.request"
	SubjectAssemblyDone    = "media.assembly.done"
	SubjectAssemblySkipped = "media.assembly.skipped"
)

// LifecycleEvent is the payload published for upload lifecycle transitions
type LifecycleEvent struct {
	Token      uuid.UUID     `json:"token"`
	Owner      string        `json:"owner"`
	Category   MediaCategory `json:"category"`
	FinalKey   string        `json:"final_key,omitempty"`
	FinalURL   string        `json:"final_url,omitempty"`
	SizeBytes  int64         `json:"size_bytes,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// AssemblyRequest is the payload dispatched to a standalone assembler worker
type AssemblyRequest struct {
	Token uuid.UUID `json:"token"`
}
