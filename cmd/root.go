package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/hostinit/hostinit/internal"
	"github.com/hostinit/hostinit/internal/keysource"
	"github.com/hostinit/hostinit/internal/report"
	"github.com/hostinit/hostinit/internal/services"
	"github.com/hostinit/hostinit/internal/utils"
	"github.com/hostinit/hostinit/pkg"
	"github.com/maypok86/otter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set via -ldflags at build time.
var version = "dev"

var config internal.Config

var rootCmd = &cobra.Command{
	Use:   "hostinit",
	Short: "Debian server bootstrap",
	Long:  `hostinit applies a host profile to a freshly installed headless Debian server.`,
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the host profile to this machine",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true

		runApp(config)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("hostinit %s %s/%s\n", version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	applyCmd.Flags().StringVarP(&config.ProfilePath, "profile", "p", "/etc/hostinit/profile.yaml", "Path to the host profile")
	applyCmd.Flags().BoolVarP(&config.Yes, "yes", "y", false, "Assume yes for all confirmations")
	applyCmd.Flags().BoolVar(&config.DryRun, "dry-run", false, "Log external commands without executing them")
	rootCmd.PersistentFlags().BoolVar(&config.Verbose, "verbose", false, "Verbose")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewLogger(config internal.Config) *zap.Logger {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	if !config.Verbose {
		loggerConfig.Level.SetLevel(zapcore.InfoLevel)
		loggerConfig.DisableCaller = true
		loggerConfig.DisableStacktrace = true
	}
	log, _ := loggerConfig.Build()
	return log
}

func NewCache() (otter.Cache[string, string], error) {
	return otter.MustBuilder[string, string](100).Build()
}

type Action struct {
	sh       fx.Shutdowner
	logger   *zap.Logger
	workflow services.WorkflowService
}

func newAction(lc fx.Lifecycle, sh fx.Shutdowner, logger *zap.Logger, workflow services.WorkflowService) *Action {
	act := &Action{
		sh:       sh,
		logger:   logger,
		workflow: workflow,
	}

	lc.Append(fx.Hook{
		OnStart: act.start,
		OnStop:  act.stop,
	})

	return act
}

func (act *Action) start(_ context.Context) error {
	go act.run()
	return nil
}

func (act *Action) stop(_ context.Context) error {
	return nil
}

func (act *Action) run() {
	exitCode := 0
	if err := act.workflow.StartBootstrap(context.Background()); err != nil {
		act.logger.Error("bootstrap failed", zap.Error(err))
		exitCode = 1
	} else {
		act.logger.Info("bootstrap finished")
	}

	if err := act.sh.Shutdown(fx.ExitCode(exitCode)); err != nil {
		act.logger.Error("failed to shutdown", zap.Error(err))
	}
}

func runApp(config internal.Config) {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Provide(
			func() internal.Config {
				return config
			},
			NewLogger,
			NewCache,
			func(config internal.Config) (internal.Profile, error) {
				return internal.LoadProfile(afero.NewOsFs(), config.ProfilePath)
			},
			newAction,
		),
		fx.Options(services.Module, utils.Module, keysource.Module, report.Module, pkg.Module),
		fx.Invoke(func(*Action) {}),
	)

	app.Run()
}
