package pkg

import (
	"github.com/hostinit/hostinit/pkg/apt"
	"github.com/hostinit/hostinit/pkg/dotfiles"
	"github.com/hostinit/hostinit/pkg/sshd"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		apt.NewCLI,
		fx.As(new(apt.Runner)),
	),
	fx.Annotate(
		sshd.NewCLI,
		fx.As(new(sshd.Daemon)),
	),
	fx.Annotate(
		dotfiles.NewGitInstaller,
		fx.As(new(dotfiles.Installer)),
	),
)
