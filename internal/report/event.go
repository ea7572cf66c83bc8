package report

import (
	"github.com/gookit/event"
)

// StepCompleted is fired after every bootstrap step.
const StepCompleted = "step-completed"

// StepCompletedEvent carries the outcome of a single bootstrap step.
type StepCompletedEvent struct {
	event.BasicEvent

	Step    string
	Detail  string
	Changed bool
}

// NewStepCompletedEvent creates a new StepCompletedEvent instance
func NewStepCompletedEvent(step string, detail string, changed bool) *StepCompletedEvent {
	evt := &StepCompletedEvent{
		Step:    step,
		Detail:  detail,
		Changed: changed,
	}
	evt.SetName(StepCompleted)
	return evt
}
