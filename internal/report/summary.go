package report

import (
	"github.com/gookit/event"
	"go.uber.org/zap"
)

// Outcome is one rendered line of the run summary.
type Outcome struct {
	Step    string
	Detail  string
	Changed bool
}

// Summary listens for step results and renders the final run report.
type Summary struct {
	BasicReport
	logger *zap.Logger

	outcomes []Outcome
}

func NewSummary(logger *zap.Logger) *Summary {
	return &Summary{
		logger: logger,
	}
}

// SubscribedEvents returns the events this reporter listens to
func (s *Summary) SubscribedEvents() map[string]interface{} {
	return map[string]interface{}{
		StepCompleted: event.ListenerItem{
			Priority: event.Min,
			Listener: event.ListenerFunc(s.stepCompletedHandler),
		},
	}
}

func (s *Summary) stepCompletedHandler(e event.Event) error {
	evt := e.(*StepCompletedEvent)

	s.logger.Debug("recording step outcome", zap.String("step", evt.Step), zap.Bool("changed", evt.Changed))
	s.outcomes = append(s.outcomes, Outcome{
		Step:    evt.Step,
		Detail:  evt.Detail,
		Changed: evt.Changed,
	})

	return nil
}

func (s *Summary) RenderTemplate() (string, error) {
	return s.Render("summary.go.tmpl", struct {
		Outcomes []Outcome
	}{
		Outcomes: s.outcomes,
	})
}
