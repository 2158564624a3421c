package driver

import "time"

// Stage describes what the driver is doing with a file.
type Stage string

const (
	// StageLoad reads the file from disk.
	StageLoad Stage = "load"
	// StageFormat parses, formats and verifies the file.
	StageFormat Stage = "format"
	// StageWrite writes the formatted file back.
	StageWrite Stage = "write"
	// StageParse parses the file only (check and parse commands).
	StageParse Stage = "parse"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Changed bool
	Cached  bool
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: files are formatted in parallel.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
