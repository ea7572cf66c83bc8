package keysource

import "go.uber.org/fx"

var Module = fx.Provide(
	fx.Annotate(
		NewDefaultSourceFactory,
		fx.As(new(Factory)),
	),
)
