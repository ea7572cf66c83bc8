package internal

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultRelease is the Debian VERSION_ID the bootstrap is written for.
const DefaultRelease = "13"

// Profile is the host profile applied by the bootstrap. Every optional
// feature is gated by the presence of its field: an empty value disables
// the dependent step.
type Profile struct {
	Release           string   `yaml:"release"`
	SSHPort           int      `yaml:"ssh_port"`
	DotfilesRepo      string   `yaml:"dotfiles_repo"`
	DotfilesInstaller string   `yaml:"dotfiles_installer"`
	AdminUser         string   `yaml:"admin_user"`
	User              string   `yaml:"user"`
	UserAuthorizedKey string   `yaml:"user_authorized_key"`
	UserKeySource     string   `yaml:"user_key_source"`
	Packages          []string `yaml:"packages"`
}

// LoadProfile reads and validates the YAML host profile. Unknown keys are
// rejected so that a typo does not silently disable a step.
func LoadProfile(fs afero.Fs, path string) (Profile, error) {
	var profile Profile

	file, err := fs.Open(path)
	if err != nil {
		return profile, fmt.Errorf("failed to open profile: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		return profile, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	if profile.Release == "" {
		profile.Release = DefaultRelease
	}
	if profile.DotfilesInstaller == "" {
		profile.DotfilesInstaller = "install.sh"
	}

	if err := profile.Validate(); err != nil {
		return profile, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	return profile, nil
}

func (p Profile) Validate() error {
	if p.SSHPort < 0 || p.SSHPort > 65535 {
		return fmt.Errorf("ssh_port %d is out of range", p.SSHPort)
	}
	if p.UserAuthorizedKey != "" && p.UserKeySource != "" {
		return errors.New("user_authorized_key and user_key_source are mutually exclusive")
	}
	if (p.UserAuthorizedKey != "" || p.UserKeySource != "") && p.User == "" {
		return errors.New("user_authorized_key and user_key_source require user")
	}
	if p.UserKeySource != "" && !strings.Contains(p.UserKeySource, ":") {
		return fmt.Errorf("user_key_source %q must have the form platform:username", p.UserKeySource)
	}
	if filepath.IsAbs(p.DotfilesInstaller) {
		return fmt.Errorf("dotfiles_installer %q must be relative to the repository root", p.DotfilesInstaller)
	}
	for _, name := range p.Packages {
		if strings.TrimSpace(name) == "" {
			return errors.New("packages must not contain empty names")
		}
	}
	return nil
}

// WantsSSHPort reports whether the profile asks for an sshd port change.
func (p Profile) WantsSSHPort() bool {
	return p.SSHPort != 0
}

// WantsDotfiles reports whether a dotfiles repository should be applied.
func (p Profile) WantsDotfiles() bool {
	return p.DotfilesRepo != ""
}

// WantsUser reports whether a non-admin user should be provisioned.
func (p Profile) WantsUser() bool {
	return p.User != ""
}
