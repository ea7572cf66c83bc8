package services

import "go.uber.org/fx"

var Module = fx.Provide(
	fx.Annotate(
		NewDefaultUpgradeService,
		fx.As(new(UpgradeService)),
	),
	fx.Annotate(
		NewDefaultSSHService,
		fx.As(new(SSHService)),
	),
	fx.Annotate(
		NewDefaultDotfilesService,
		fx.As(new(DotfilesService)),
	),
	fx.Annotate(
		NewDefaultAccountService,
		fx.As(new(AccountService)),
	),
	fx.Annotate(
		NewWorkflowBaseService,
		fx.As(new(WorkflowService)),
		fx.ParamTags(`group:"reporters"`),
	),
)
