// Package pipeline carries progress events from the formatting driver to
// whoever renders them (the progress UI, tests).
package pipeline

import "time"

// Stage describes a per-file phase.
type Stage string

const (
	// StageRead is loading the file from disk.
	StageRead Stage = "read"
	// StageFormat is the parse/measure/render pass.
	StageFormat Stage = "format"
	// StageWrite is replacing the file with formatted content.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the file finished without changes.
	StatusDone Status = "done"
	// StatusChanged indicates the file finished and needed reformatting.
	StatusChanged Status = "changed"
	// StatusCached indicates the cache proved the file already formatted.
	StatusCached Status = "cached"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Finished reports whether no further events follow for the file.
func (s Status) Finished() bool {
	switch s {
	case StatusDone, StatusChanged, StatusCached, StatusError:
		return true
	default:
		return false
	}
}

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use; the driver emits from its worker goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Emit sends ev to sink when sink is set.
func Emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}

// EmitQueued marks every file as queued.
func EmitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageRead, Status: StatusQueued})
	}
}
