package report

import "go.uber.org/fx"

var Module = fx.Provide(
	fx.Annotate(
		NewSummary,
		fx.As(new(Reporter)),
		fx.ResultTags(`group:"reporters"`),
	),
)
