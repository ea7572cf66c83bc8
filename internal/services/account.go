package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/hostinit/hostinit/internal"
	"github.com/hostinit/hostinit/internal/keysource"
	"github.com/hostinit/hostinit/internal/utils"
	"github.com/hostinit/hostinit/pkg/sshkey"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type AccountService interface {
	EnsureUser(ctx context.Context) error
	ProvisionKeys(ctx context.Context) error
}

type DefaultAccountService struct {
	logger  *zap.Logger
	config  internal.Config
	profile internal.Profile
	system  utils.System
	prompt  utils.Prompter
	keys    keysource.Factory
	fs      afero.Fs
}

func NewDefaultAccountService(logger *zap.Logger, config internal.Config, profile internal.Profile, system utils.System, prompt utils.Prompter, keys keysource.Factory) *DefaultAccountService {
	return &DefaultAccountService{
		logger:  logger,
		config:  config,
		profile: profile,
		system:  system,
		prompt:  prompt,
		keys:    keys,
		fs:      afero.NewOsFs(),
	}
}

var lookupUser = user.Lookup

func (as *DefaultAccountService) EnsureUser(ctx context.Context) error {
	username := as.profile.User

	if _, err := lookupUser(username); err == nil {
		as.logger.Info("user already exists", zap.String("user", username))
		return fireStepCompleted("user account", username+" already present", false)
	} else {
		var unknown user.UnknownUserError
		if !errors.As(err, &unknown) {
			return fmt.Errorf("failed to look up user %s: %w", username, err)
		}
	}

	if as.config.DryRun {
		as.logger.Info("dry run, skipping user creation", zap.String("user", username))
		return fireStepCompleted("user account", "would create "+username, false)
	}

	as.logger.Info("creating user", zap.String("user", username))
	if out, err := as.system.Run(ctx, "useradd", "--create-home", "--shell", "/bin/bash", username); err != nil {
		return fmt.Errorf("failed to create user %s: %w, output: %s", username, err, out)
	}

	return fireStepCompleted("user account", "created "+username, true)
}

func (as *DefaultAccountService) ProvisionKeys(ctx context.Context) error {
	username := as.profile.User

	if as.config.DryRun {
		as.logger.Info("dry run, skipping key provisioning", zap.String("user", username))
		return fireStepCompleted("ssh keys", "would provision keys for "+username, false)
	}

	usr, err := lookupUser(username)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", username, err)
	}
	sshDir := filepath.Join(usr.HomeDir, ".ssh")

	if err := as.fs.MkdirAll(sshDir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", sshDir, err)
	}

	generated, err := as.ensureKeyPair(sshDir, username)
	if err != nil {
		return err
	}

	installed, err := as.installAuthorizedKeys(ctx, sshDir)
	if err != nil {
		return err
	}

	if out, err := as.system.Run(ctx, "chown", "--recursive", username+":", sshDir); err != nil {
		return fmt.Errorf("failed to chown %s: %w, output: %s", sshDir, err, out)
	}

	var details []string
	if generated {
		details = append(details, "generated ed25519 key pair")
	}
	if installed > 0 {
		details = append(details, fmt.Sprintf("installed %d authorized key(s)", installed))
	}
	if len(details) == 0 {
		details = append(details, "nothing to do")
	}
	return fireStepCompleted("ssh keys", strings.Join(details, ", "), generated || installed > 0)
}

func (as *DefaultAccountService) ensureKeyPair(sshDir string, username string) (bool, error) {
	privatePath := filepath.Join(sshDir, "id_ed25519")

	if _, err := as.fs.Stat(privatePath); err == nil {
		if !as.prompt.Confirm(fmt.Sprintf("Key %s already exists, overwrite?", privatePath), false) {
			as.logger.Info("keeping existing key", zap.String("path", privatePath))
			return false, nil
		}
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", privatePath, err)
	}

	hostname, _ := os.Hostname()
	pair, err := sshkey.Generate(username + "@" + hostname)
	if err != nil {
		return false, err
	}

	if err := afero.WriteFile(as.fs, privatePath, pair.Private, 0600); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", privatePath, err)
	}
	if err := afero.WriteFile(as.fs, privatePath+".pub", pair.Public, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", privatePath+".pub", err)
	}

	fingerprint, err := sshkey.Fingerprint(string(pair.Public))
	if err != nil {
		return false, err
	}
	as.logger.Info("generated key pair", zap.String("path", privatePath), zap.String("fingerprint", fingerprint))
	return true, nil
}

// installAuthorizedKeys appends the configured keys to authorized_keys and
// returns how many were added. Keys already present are left alone.
func (as *DefaultAccountService) installAuthorizedKeys(ctx context.Context, sshDir string) (int, error) {
	lines, err := as.authorizedKeyLines(ctx)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}

	path := filepath.Join(sshDir, "authorized_keys")
	existing := ""
	if content, err := afero.ReadFile(as.fs, path); err == nil {
		existing = string(content)
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Dedupe on the key material itself so the same key under an options
	// prefix or another comment still counts as present.
	existingKeys := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		data, err := sshkey.KeyData(line)
		if err != nil {
			continue
		}
		existingKeys[data] = true
	}

	installed := 0
	content := existing
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	for _, line := range lines {
		data, err := sshkey.KeyData(line)
		if err != nil {
			return 0, err
		}
		if existingKeys[data] {
			continue
		}
		content += line + "\n"
		installed++
	}

	if installed == 0 {
		as.logger.Info("authorized keys already present", zap.String("path", path))
		return 0, nil
	}

	if err := afero.WriteFile(as.fs, path, []byte(content), 0600); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	as.logger.Info("installed authorized keys", zap.String("path", path), zap.Int("count", installed))
	return installed, nil
}

func (as *DefaultAccountService) authorizedKeyLines(ctx context.Context) ([]string, error) {
	if as.profile.UserAuthorizedKey != "" {
		normalized, err := sshkey.ParseAuthorizedKey(as.profile.UserAuthorizedKey)
		if err != nil {
			return nil, err
		}
		return []string{normalized}, nil
	}

	if as.profile.UserKeySource == "" {
		return nil, nil
	}

	source, username, err := as.keys.Create(as.profile.UserKeySource)
	if err != nil {
		return nil, err
	}

	as.logger.Info("fetching published keys", zap.String("source", as.profile.UserKeySource))
	keys, err := source.FetchKeys(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no published keys found for %s", as.profile.UserKeySource)
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		normalized, err := sshkey.ParseAuthorizedKey(key)
		if err != nil {
			return nil, err
		}
		lines = append(lines, normalized)
	}
	return lines, nil
}
