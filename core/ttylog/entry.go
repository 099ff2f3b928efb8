// Package ttylog records shell sessions and plays them back.
package ttylog

// FD identifies the stream an I/O event happened on.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// TTYLogEntry is a single recorded terminal event.
type TTYLogEntry struct {
	TimestampMicros int64
	FD              FD
	Data            []byte
	// Close marks the end of the stream on FD, Data is empty.
	Close bool
}
