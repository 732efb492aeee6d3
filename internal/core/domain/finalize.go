package domain

// FinalizeResult is the outcome of a finalize call. Completed and Finalizing
// are mutually exclusive; a finalize call never returns anything else.
type FinalizeResult struct {
	Completed  bool
	Finalizing bool
	FinalKey   string
	FinalURL   string
}

// FinalizeState is one of the three unambiguous states the poll endpoint
// reports, so clients can implement a correct polling loop.
type FinalizeState string

const (
	FinalizeStateCompleted  FinalizeState = "completed"
	FinalizeStateFinalizing FinalizeState = "finalizing"
	// FinalizeStateFailed means the session was reset to active and the
	// caller should retry finalize.
	FinalizeStateFailed FinalizeState = "failed"
)

// FinalizeStatus is the poll-for-status view of a finalize attempt
type FinalizeStatus struct {
	State    FinalizeState
	FinalKey string
	FinalURL string
	Message  string
}
