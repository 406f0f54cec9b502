package driver

import "time"

// Stage is the step of a file's analysis an Event reports on.
type Stage string

const (
	StageLoad  Stage = "load"
	StageParse Stage = "parse"
	StageCheck Stage = "check"
	StageCache Stage = "cache" // результат взят из дискового кеша
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event is one progress step of File. Found and Elapsed are set on the final
// event of a file; Err on StatusError.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Found   int
	Elapsed time.Duration
	Err     error
}

// ProgressSink receives events from all analysis goroutines at once and must
// be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink sends each event to Ch; a nil channel drops them. The reader
// must keep draining Ch until the run returns.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}
