package sshd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hostinit/hostinit/internal/utils"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DropInPath is where the managed sshd configuration fragment lives. A
// drop-in keeps /etc/ssh/sshd_config untouched and wins over its defaults.
const DropInPath = "/etc/ssh/sshd_config.d/60-hostinit.conf"

type Daemon interface {
	ConfiguredPort() (int, error)
	SetPort(port int) error
	Validate(ctx context.Context) error
	Restart(ctx context.Context) error
}

type CLI struct {
	logger *zap.Logger
	system utils.System
	fs     afero.Fs
}

func NewCLI(logger *zap.Logger, system utils.System) *CLI {
	return &CLI{
		logger: logger,
		system: system,
		fs:     afero.NewOsFs(),
	}
}

// ConfiguredPort returns the port set in the managed drop-in, or 0 when the
// drop-in does not exist or carries no Port directive.
func (c *CLI) ConfiguredPort() (int, error) {
	content, err := afero.ReadFile(c.fs, DropInPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", DropInPath, err)
	}

	for _, line := range strings.Split(string(content), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Port") {
			continue
		}
		port, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("invalid Port directive in %s: %w", DropInPath, err)
		}
		return port, nil
	}
	return 0, nil
}

func (c *CLI) SetPort(port int) error {
	if err := c.fs.MkdirAll(filepath.Dir(DropInPath), 0755); err != nil {
		return fmt.Errorf("failed to create drop-in directory: %w", err)
	}

	content := fmt.Sprintf("# Managed by hostinit, do not edit.\nPort %d\n", port)
	if err := afero.WriteFile(c.fs, DropInPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", DropInPath, err)
	}

	c.logger.Debug("wrote sshd drop-in", zap.String("path", DropInPath), zap.Int("port", port))
	return nil
}

// Validate runs `sshd -t` so a broken drop-in never locks the host out. The
// check is read-only and runs even under dry-run.
func (c *CLI) Validate(ctx context.Context) error {
	out, err := c.system.Output(ctx, "sshd", "-t")
	if err != nil {
		return fmt.Errorf("sshd configuration is invalid: %w, output: %s", err, out)
	}
	return nil
}

func (c *CLI) Restart(ctx context.Context) error {
	return c.system.ServiceRestart(ctx, "ssh")
}
