package apt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/maypok86/otter"
	"go.uber.org/zap"
)

var execCommand = exec.CommandContext

// DefaultPackages is the fixed utility set applied to every host unless the
// profile overrides it.
var DefaultPackages = []string{
	"curl",
	"git",
	"htop",
	"rsync",
	"tmux",
	"tree",
	"unzip",
	"vim",
	"wget",
}

type Runner interface {
	Update(ctx context.Context) error
	DistUpgrade(ctx context.Context, dryRun bool) error
	Install(ctx context.Context, dryRun bool, packages ...string) error
	IsInstalled(ctx context.Context, name string) (bool, error)
}

type CLI struct {
	logger *zap.Logger
	cache  otter.Cache[string, string]
}

func NewCLI(logger *zap.Logger, cache otter.Cache[string, string]) *CLI {
	return &CLI{
		logger: logger,
		cache:  cache,
	}
}

func (c *CLI) execAptGet(ctx context.Context, args ...string) (string, error) {
	command := execCommand(ctx, "apt-get", args...)
	command.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")

	out, err := command.CombinedOutput()
	output := strings.TrimSuffix(string(out), "\n")
	c.logger.Sugar().Debugf("%s\n%s", command.String(), output)

	return output, err
}

func (c *CLI) Update(ctx context.Context) error {
	out, err := c.execAptGet(ctx, "update")
	if err != nil {
		return fmt.Errorf("failed to update package index: %w, output: %s", err, out)
	}
	return nil
}

func (c *CLI) DistUpgrade(ctx context.Context, dryRun bool) error {
	args := []string{"dist-upgrade", "--yes"}
	if dryRun {
		args = append(args, "--simulate")
	}

	out, err := c.execAptGet(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to upgrade packages: %w, output: %s", err, out)
	}
	return nil
}

func (c *CLI) Install(ctx context.Context, dryRun bool, packages ...string) error {
	args := append([]string{"install", "--yes", "--no-install-recommends"}, packages...)
	if dryRun {
		args = append(args, "--simulate")
	}

	out, err := c.execAptGet(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to install %s: %w, output: %s", strings.Join(packages, " "), err, out)
	}

	for _, name := range packages {
		c.cache.Delete("dpkg-status_" + name)
	}
	return nil
}

func (c *CLI) IsInstalled(ctx context.Context, name string) (bool, error) {
	cacheKey := "dpkg-status_" + name
	if status, ok := c.cache.Get(cacheKey); ok {
		return status == "installed", nil
	}

	command := execCommand(ctx, "dpkg-query", "--show", "--showformat=${db:Status-Status}", name)
	out, err := command.CombinedOutput()
	status := strings.TrimSpace(string(out))

	c.logger.Debug("querying package state", zap.String("package", name), zap.String("status", status))

	if err != nil {
		// dpkg-query exits non-zero for unknown packages, with a distinct
		// message. Anything else is a real dpkg failure.
		if strings.Contains(status, "no packages found matching") {
			return false, nil
		}
		return false, fmt.Errorf("failed to query package %s: %w, output: %s", name, err, status)
	}

	c.cache.Set(cacheKey, status)
	return status == "installed", nil
}
