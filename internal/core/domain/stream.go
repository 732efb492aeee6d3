package domain

import "io"

// StreamSource tells the streaming gateway how to serve a session. Exactly
// one of RedirectURL or Body is set: a durable object is served by redirect
// (it supports byte-range requests), a not-yet-assembled file by replaying
// chunks in index order.
type StreamSource struct {
	RedirectURL string
	Body        io.ReadCloser
	MimeType    string
	TotalSize   int64
	Filename    string
}
