package utils

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hostinit/hostinit/internal"
	"github.com/maypok86/otter"
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// System executes host commands. Run respects dry-run and is used for
// anything that mutates the machine; Output always executes and is reserved
// for read-only queries.
type System interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	RunIn(ctx context.Context, dir string, name string, args ...string) (string, error)
	Output(ctx context.Context, name string, args ...string) (string, error)
	OSRelease(ctx context.Context) (map[string]string, error)
	ServiceRestart(ctx context.Context, unit string) error
}

type DefaultSystem struct {
	logger *zap.Logger
	cache  otter.Cache[string, string]
	config internal.Config
	fs     afero.Fs
}

func NewSystem(logger *zap.Logger, cache otter.Cache[string, string], config internal.Config) System {
	return DefaultSystem{
		logger: logger,
		cache:  cache,
		config: config,
		fs:     afero.NewOsFs(),
	}
}

var execCommand = exec.CommandContext

func (s DefaultSystem) Run(ctx context.Context, name string, args ...string) (string, error) {
	return s.RunIn(ctx, "", name, args...)
}

func (s DefaultSystem) RunIn(ctx context.Context, dir string, name string, args ...string) (string, error) {
	if s.config.DryRun {
		s.logger.Info("dry run, skipping command", zap.String("command", name), zap.Strings("args", args))
		return "", nil
	}

	command := execCommand(ctx, name, args...)
	command.Dir = dir
	command.Env = os.Environ()

	out, err := command.CombinedOutput()
	output := strings.TrimSuffix(string(out), "\n")

	s.logger.Debug("executing command", zap.String("command", name), zap.Strings("args", args), zap.String("output", output))

	return output, err
}

func (s DefaultSystem) Output(ctx context.Context, name string, args ...string) (string, error) {
	command := execCommand(ctx, name, args...)
	command.Env = os.Environ()

	out, err := command.CombinedOutput()
	output := strings.TrimSuffix(string(out), "\n")

	s.logger.Debug("querying command", zap.String("command", name), zap.Strings("args", args), zap.String("output", output))

	return output, err
}

func (s DefaultSystem) OSRelease(_ context.Context) (map[string]string, error) {
	const cacheKey = "os-release"

	raw, ok := s.cache.Get(cacheKey)
	if !ok {
		content, err := afero.ReadFile(s.fs, "/etc/os-release")
		if err != nil {
			return nil, fmt.Errorf("failed to read os-release: %w", err)
		}
		raw = string(content)
		s.cache.Set(cacheKey, raw)
	}

	release := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		release[key] = strings.Trim(value, `"`)
	}

	return release, nil
}

func (s DefaultSystem) ServiceRestart(ctx context.Context, unit string) error {
	out, err := s.Run(ctx, "systemctl", "restart", unit)
	if err != nil {
		return fmt.Errorf("failed to restart %s: %w, output: %s", unit, err, out)
	}
	return nil
}

var Module = fx.Provide(
	NewSystem,
	fx.Annotate(
		NewPrompter,
		fx.As(new(Prompter)),
	),
)
