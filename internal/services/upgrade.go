package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostinit/hostinit/internal"
	"github.com/hostinit/hostinit/pkg/apt"
	"go.uber.org/zap"
)

type UpgradeService interface {
	UpgradeSystem(ctx context.Context) error
	InstallUtilities(ctx context.Context) error
}

type DefaultUpgradeService struct {
	logger  *zap.Logger
	config  internal.Config
	profile internal.Profile
	apt     apt.Runner
}

func NewDefaultUpgradeService(logger *zap.Logger, config internal.Config, profile internal.Profile, apt apt.Runner) *DefaultUpgradeService {
	return &DefaultUpgradeService{
		logger:  logger,
		config:  config,
		profile: profile,
		apt:     apt,
	}
}

func (us *DefaultUpgradeService) UpgradeSystem(ctx context.Context) error {
	if us.config.DryRun {
		us.logger.Info("dry run, skipping package index refresh")
	} else {
		us.logger.Info("refreshing package index")
		if err := us.apt.Update(ctx); err != nil {
			return err
		}
	}

	us.logger.Info("upgrading installed packages")
	if err := us.apt.DistUpgrade(ctx, us.config.DryRun); err != nil {
		return err
	}

	return fireStepCompleted("system upgrade", "package index refreshed, packages upgraded", true)
}

func (us *DefaultUpgradeService) InstallUtilities(ctx context.Context) error {
	packages := us.profile.Packages
	if len(packages) == 0 {
		packages = apt.DefaultPackages
	}

	var missing []string
	for _, name := range packages {
		installed, err := us.apt.IsInstalled(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check package %s: %w", name, err)
		}
		if !installed {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		us.logger.Info("all utilities already installed")
		return fireStepCompleted("utilities", "all utilities already installed", false)
	}

	us.logger.Info("installing utilities", zap.Strings("packages", missing))
	if err := us.apt.Install(ctx, us.config.DryRun, missing...); err != nil {
		return err
	}

	return fireStepCompleted("utilities", "installed "+strings.Join(missing, ", "), true)
}
