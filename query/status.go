package query

import "fmt"

// Type is the query kind, fixed at construction.
type Type uint8

const (
	// Read retrieves cells into caller buffers.
	Read Type = iota
	// Write persists caller buffers as a new immutable fragment.
	Write
)

func (t Type) String() string {
	switch t {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Status is the lifecycle state of a query.
//
// Transitions:
//
//	Uninitialized --Init--> InProgress
//	InProgress --Process (request satisfied)--> Completed
//	InProgress --Process (read, more pending)--> Incomplete
//	Incomplete --Process--> InProgress --> {Completed, Incomplete}
//	any --Process engine error / Cancel--> Failed
//	any --SetSubarray--> Uninitialized
//
// Completed and Failed are terminal for Process.
type Status uint8

const (
	// Uninitialized is the state of a freshly constructed query.
	Uninitialized Status = iota
	// InProgress is set by Init and while Process runs.
	InProgress
	// Incomplete means a read exhausted the caller buffers before producing
	// the full result; drain the buffers and call Process again.
	Incomplete
	// Completed means the request was fully satisfied.
	Completed
	// Failed means an engine error occurred or the query was canceled.
	Failed
)

var statusNames = map[Status]string{
	Uninitialized: "uninitialized",
	InProgress:    "in-progress",
	Incomplete:    "incomplete",
	Completed:     "completed",
	Failed:        "failed",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Terminal reports whether Process may no longer be called in this status.
func (s Status) Terminal() bool {
	return s == Completed || s == Failed
}
