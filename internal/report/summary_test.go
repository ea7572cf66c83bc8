package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestSummary(t *testing.T) {
	t.Run("records step outcomes", func(t *testing.T) {
		summary := NewSummary(zaptest.NewLogger(t))

		assert.NoError(t, summary.stepCompletedHandler(NewStepCompletedEvent("system upgrade", "42 packages upgraded", true)))
		assert.NoError(t, summary.stepCompletedHandler(NewStepCompletedEvent("utilities", "all utilities already installed", false)))

		rendered, err := summary.RenderTemplate()
		assert.NoError(t, err)
		assert.Contains(t, rendered, "Bootstrap summary")
		assert.Contains(t, rendered, "[changed] system upgrade: 42 packages upgraded")
		assert.Contains(t, rendered, "[   ok  ] utilities: all utilities already installed")
	})

	t.Run("renders without outcomes", func(t *testing.T) {
		summary := NewSummary(zaptest.NewLogger(t))

		rendered, err := summary.RenderTemplate()
		assert.NoError(t, err)
		assert.Contains(t, rendered, "Bootstrap summary")
	})

	t.Run("subscribes to step completion", func(t *testing.T) {
		summary := NewSummary(zaptest.NewLogger(t))

		assert.Contains(t, summary.SubscribedEvents(), StepCompleted)
	})
}
