package server

import "time"

// Recorder receives metrics about server activity. Any type exposing
// these three methods (such as the admin package's Prometheus
// collectors) satisfies this without server importing admin — the
// same structural-interface trick as the package's Logger.
type Recorder interface {
	IncCommand(verb string)
	IncError(code string)
	ObserveTick(d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) IncCommand(string)         {}
func (noopRecorder) IncError(string)           {}
func (noopRecorder) ObserveTick(time.Duration) {}
