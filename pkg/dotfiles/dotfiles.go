package dotfiles

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var execCommand = exec.CommandContext

// Installer clones a dotfiles repository and runs its installer script as
// the target user.
type Installer interface {
	Apply(ctx context.Context, repositoryURL string, script string, username string) error
}

type GitInstaller struct {
	logger *zap.Logger
	fs     afero.Fs
}

func NewGitInstaller(logger *zap.Logger) *GitInstaller {
	return &GitInstaller{
		logger: logger,
		fs:     afero.NewOsFs(),
	}
}

func (gi *GitInstaller) Apply(ctx context.Context, repositoryURL string, script string, username string) error {
	path, err := gi.clone(repositoryURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := gi.fs.RemoveAll(path); err != nil {
			gi.logger.Warn("failed to remove dotfiles checkout", zap.String("path", path), zap.Error(err))
		}
	}()

	// The checkout is created by root, hand it to the target user before
	// running the installer.
	if out, err := gi.run(ctx, "", "chown", "--recursive", username+":", path); err != nil {
		return fmt.Errorf("failed to chown dotfiles checkout: %w, output: %s", err, out)
	}

	gi.logger.Info("running dotfiles installer", zap.String("script", script), zap.String("user", username))
	if out, err := gi.run(ctx, path, "runuser", "-u", username, "--", "/bin/sh", script); err != nil {
		return fmt.Errorf("dotfiles installer failed for %s: %w, output: %s", username, err, out)
	}

	return nil
}

func (gi *GitInstaller) clone(repositoryURL string) (string, error) {
	hash := fmt.Sprintf("%x", md5.Sum([]byte(repositoryURL)))
	projectDir := filepath.Join(os.TempDir(), hash)
	if err := gi.fs.MkdirAll(projectDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}
	tmpDirName, err := afero.TempDir(gi.fs, projectDir, "dotfiles")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	gi.logger.Info("cloning dotfiles repository", zap.String("repositoryURL", repositoryURL))
	if _, err := git.PlainClone(tmpDirName, false, &git.CloneOptions{
		URL:   repositoryURL,
		Depth: 1,
		Tags:  git.NoTags,
	}); err != nil {
		return "", fmt.Errorf("git clone: %w", err)
	}

	return tmpDirName, nil
}

func (gi *GitInstaller) run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	command := execCommand(ctx, name, args...)
	command.Dir = dir
	command.Env = os.Environ()

	out, err := command.CombinedOutput()
	output := strings.TrimSuffix(string(out), "\n")
	gi.logger.Sugar().Debugf("%s\n%s", command.String(), output)

	return output, err
}
