package services

import (
	"context"
	"fmt"

	"github.com/hostinit/hostinit/internal"
	"github.com/hostinit/hostinit/internal/utils"
	"github.com/hostinit/hostinit/pkg/sshd"
	"go.uber.org/zap"
)

type SSHService interface {
	ConfigurePort(ctx context.Context, port int) error
}

type DefaultSSHService struct {
	logger *zap.Logger
	config internal.Config
	daemon sshd.Daemon
	prompt utils.Prompter
}

func NewDefaultSSHService(logger *zap.Logger, config internal.Config, daemon sshd.Daemon, prompt utils.Prompter) *DefaultSSHService {
	return &DefaultSSHService{
		logger: logger,
		config: config,
		daemon: daemon,
		prompt: prompt,
	}
}

func (ss *DefaultSSHService) ConfigurePort(ctx context.Context, port int) error {
	current, err := ss.daemon.ConfiguredPort()
	if err != nil {
		return err
	}
	if current == port {
		ss.logger.Info("sshd port already configured", zap.Int("port", port))
		return fireStepCompleted("ssh daemon", fmt.Sprintf("port %d already configured", port), false)
	}

	if ss.config.DryRun {
		ss.logger.Info("dry run, skipping sshd configuration", zap.Int("port", port))
		return fireStepCompleted("ssh daemon", fmt.Sprintf("would set port %d", port), false)
	}

	if err := ss.daemon.SetPort(port); err != nil {
		return err
	}
	if err := ss.daemon.Validate(ctx); err != nil {
		return err
	}

	if !ss.prompt.Confirm(fmt.Sprintf("Restart sshd to listen on port %d? Existing sessions stay open", port), true) {
		ss.logger.Warn("sshd not restarted, port change applies after the next restart", zap.Int("port", port))
		return fireStepCompleted("ssh daemon", fmt.Sprintf("port %d configured, restart pending", port), true)
	}

	if err := ss.daemon.Restart(ctx); err != nil {
		return err
	}

	ss.logger.Info("sshd restarted", zap.Int("port", port))
	return fireStepCompleted("ssh daemon", fmt.Sprintf("listening on port %d", port), true)
}
