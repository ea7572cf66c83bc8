package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gookit/event"
	"github.com/hostinit/hostinit/internal"
	"github.com/hostinit/hostinit/internal/report"
	"github.com/hostinit/hostinit/internal/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type WorkflowService interface {
	StartBootstrap(ctx context.Context) error
}

type WorkflowBaseService struct {
	logger   *zap.Logger
	config   internal.Config
	profile  internal.Profile
	prompt   utils.Prompter
	system   utils.System
	upgrade  UpgradeService
	ssh      SSHService
	dotfiles DotfilesService
	account  AccountService

	reporters []report.Reporter
	out       io.Writer
}

func NewWorkflowBaseService(reporters []report.Reporter, logger *zap.Logger, config internal.Config, profile internal.Profile, prompt utils.Prompter, system utils.System, upgrade UpgradeService, ssh SSHService, dotfiles DotfilesService, account AccountService) *WorkflowBaseService {
	for _, reporter := range reporters {
		event.AddSubscriber(reporter)
	}

	return &WorkflowBaseService{
		logger:    logger,
		config:    config,
		profile:   profile,
		prompt:    prompt,
		system:    system,
		upgrade:   upgrade,
		ssh:       ssh,
		dotfiles:  dotfiles,
		account:   account,
		reporters: reporters,
		out:       os.Stdout,
	}
}

// StartBootstrap runs the fixed ordered step list. Optional steps are gated
// by the presence of their profile fields; the first failing step aborts
// the run.
func (ws *WorkflowBaseService) StartBootstrap(ctx context.Context) error {
	if !ws.confirmProfile() {
		return errors.New("bootstrap aborted by operator")
	}

	if err := ws.checkRelease(ctx); err != nil {
		return err
	}

	if err := ws.upgrade.UpgradeSystem(ctx); err != nil {
		return err
	}
	if err := ws.upgrade.InstallUtilities(ctx); err != nil {
		return err
	}

	if ws.profile.WantsSSHPort() {
		if err := ws.ssh.ConfigurePort(ctx, ws.profile.SSHPort); err != nil {
			return err
		}
	}

	// The non-admin account has to exist before its dotfiles installer can
	// run as that user.
	if ws.profile.WantsUser() {
		if err := ws.account.EnsureUser(ctx); err != nil {
			return err
		}
	}

	if ws.profile.WantsDotfiles() {
		if err := ws.dotfiles.InstallAll(ctx); err != nil {
			return err
		}
	}

	if ws.profile.WantsUser() {
		if err := ws.account.ProvisionKeys(ctx); err != nil {
			return err
		}
	}

	return ws.printReport()
}

func (ws *WorkflowBaseService) confirmProfile() bool {
	raw, err := yaml.Marshal(ws.profile)
	if err != nil {
		ws.logger.Error("failed to render profile", zap.Error(err))
		return false
	}

	fmt.Fprintf(ws.out, "Resolved profile:\n\n%s\n", raw)
	return ws.prompt.Confirm("Apply this profile to the host?", true)
}

func (ws *WorkflowBaseService) checkRelease(ctx context.Context) error {
	want := ws.profile.Release

	release, err := ws.system.OSRelease(ctx)
	if err != nil {
		ws.logger.Warn("failed to read os-release", zap.Error(err))
		release = map[string]string{}
	}

	if release["ID"] == "debian" && release["VERSION_ID"] == want {
		return fireStepCompleted("release gate", "debian "+want, false)
	}

	got := release["PRETTY_NAME"]
	if got == "" {
		got = "unknown"
	}
	ws.logger.Warn("unexpected OS release", zap.String("want", "debian "+want), zap.String("got", got))

	if !ws.prompt.Confirm(fmt.Sprintf("This host reports %q, not Debian %s. Continue anyway?", got, want), false) {
		return fmt.Errorf("bootstrap aborted: host is not debian %s", want)
	}

	return fireStepCompleted("release gate", "continuing on "+got, false)
}

func (ws *WorkflowBaseService) printReport() error {
	for _, reporter := range ws.reporters {
		section, err := reporter.RenderTemplate()
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprint(ws.out, section)
	}
	return nil
}

func fireStepCompleted(step string, detail string, changed bool) error {
	if err := event.FireEvent(report.NewStepCompletedEvent(step, detail, changed)); err != nil {
		return fmt.Errorf("failed to fire step event: %w", err)
	}
	return nil
}
