package services

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/hostinit/hostinit/internal"
	"github.com/hostinit/hostinit/pkg/dotfiles"
	"go.uber.org/zap"
)

type DotfilesService interface {
	InstallAll(ctx context.Context) error
}

type DefaultDotfilesService struct {
	logger    *zap.Logger
	config    internal.Config
	profile   internal.Profile
	installer dotfiles.Installer
}

func NewDefaultDotfilesService(logger *zap.Logger, config internal.Config, profile internal.Profile, installer dotfiles.Installer) *DefaultDotfilesService {
	return &DefaultDotfilesService{
		logger:    logger,
		config:    config,
		profile:   profile,
		installer: installer,
	}
}

func (ds *DefaultDotfilesService) InstallAll(ctx context.Context) error {
	users, err := ds.targetUsers()
	if err != nil {
		return err
	}

	for _, username := range users {
		if ds.config.DryRun {
			ds.logger.Info("dry run, skipping dotfiles installer", zap.String("user", username))
			continue
		}
		if err := ds.installer.Apply(ctx, ds.profile.DotfilesRepo, ds.profile.DotfilesInstaller, username); err != nil {
			return err
		}
	}

	detail := fmt.Sprintf("applied %s for %s", ds.profile.DotfilesRepo, strings.Join(users, ", "))
	if ds.config.DryRun {
		detail = "would apply " + ds.profile.DotfilesRepo
	}
	return fireStepCompleted("dotfiles", detail, !ds.config.DryRun)
}

// targetUsers resolves the admin user (profile, then $SUDO_USER, then the
// current user) and appends the non-admin user when one is configured.
func (ds *DefaultDotfilesService) targetUsers() ([]string, error) {
	admin := ds.profile.AdminUser
	if admin == "" {
		admin = os.Getenv("SUDO_USER")
	}
	if admin == "" {
		current, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve admin user: %w", err)
		}
		admin = current.Username
	}

	users := []string{admin}
	if ds.profile.User != "" && ds.profile.User != admin {
		users = append(users, ds.profile.User)
	}
	return users, nil
}
