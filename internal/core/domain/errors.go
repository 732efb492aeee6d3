package domain

import "errors"

// ErrSessionNotFound is an error thrown when a session is unknown or not owned by the caller
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is an error thrown when a session has lapsed from inactivity
var ErrSessionExpired = errors.New("session expired")

// ErrStateConflict is an error thrown when an operation is invalid for the current status
var ErrStateConflict = errors.New("invalid session state for operation")

// ErrChunkNotFound is an error thrown when a chunk index is out of range
var ErrChunkNotFound = errors.New("chunk not found")

// ErrMismatchChecksum is an error thrown when the supplied checksum does not match the payload
var ErrMismatchChecksum = errors.New("mismatched checksum")

// ErrChunksPending is an error thrown when finalize is attempted before all chunks are uploaded
var ErrChunksPending = errors.New("chunks still pending")

// ErrInvalidSize is an error thrown when the declared total size is not positive
var ErrInvalidSize = errors.New("invalid file size")

// ErrInvalidMediaType is an error thrown when the MIME type is not allowed
var ErrInvalidMediaType = errors.New("invalid media type")

// ErrStorageUnavailable is an error thrown when storage calls keep failing after retries
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrRecordNotFound is an error thrown when a media record is not found
var ErrRecordNotFound = errors.New("media record not found")

// ErrJobNotFound is an error thrown when an assembly job is not found
var ErrJobNotFound = errors.New("assembly job not found")

// ErrStreamNotReady is an error thrown when a session has not been finalized yet
var ErrStreamNotReady = errors.New("stream not ready")
