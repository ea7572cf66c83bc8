package apt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/maypok86/otter"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	cache, _ := otter.MustBuilder[string, string](100).Build()
	return NewCLI(zaptest.NewLogger(t), cache)
}

func useHelperProcess(t *testing.T, fail bool) {
	t.Helper()
	execCommand = func(_ context.Context, name string, arg ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, arg...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "GOCOVERDIR=/tmp"}
		if fail {
			cmd.Env = append(cmd.Env, "GO_HELPER_PROCESS_ERROR=1")
		}
		return cmd
	}
	t.Cleanup(func() { execCommand = exec.CommandContext })
}

func TestUpdate(t *testing.T) {
	t.Run("successful execution", func(t *testing.T) {
		useHelperProcess(t, false)

		err := newTestCLI(t).Update(t.Context())
		assert.NoError(t, err)
	})

	t.Run("execution failure", func(t *testing.T) {
		useHelperProcess(t, true)

		err := newTestCLI(t).Update(t.Context())
		assert.ErrorContains(t, err, "failed to update package index")
	})
}

func TestDistUpgrade(t *testing.T) {
	t.Run("passes simulate on dry run", func(t *testing.T) {
		var captured []string
		execCommand = func(_ context.Context, name string, arg ...string) *exec.Cmd {
			captured = append([]string{name}, arg...)
			cs := []string{"-test.run=TestHelperProcess", "--", name}
			cs = append(cs, arg...)
			cmd := exec.Command(os.Args[0], cs...)
			cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "GOCOVERDIR=/tmp"}
			return cmd
		}
		defer func() { execCommand = exec.CommandContext }()

		err := newTestCLI(t).DistUpgrade(t.Context(), true)
		assert.NoError(t, err)
		assert.Equal(t, []string{"apt-get", "dist-upgrade", "--yes", "--simulate"}, captured)
	})
}

func TestInstall(t *testing.T) {
	t.Run("installs the requested packages", func(t *testing.T) {
		var captured []string
		execCommand = func(_ context.Context, name string, arg ...string) *exec.Cmd {
			captured = append([]string{name}, arg...)
			cs := []string{"-test.run=TestHelperProcess", "--", name}
			cs = append(cs, arg...)
			cmd := exec.Command(os.Args[0], cs...)
			cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "GOCOVERDIR=/tmp"}
			return cmd
		}
		defer func() { execCommand = exec.CommandContext }()

		err := newTestCLI(t).Install(t.Context(), false, "vim", "tmux")
		assert.NoError(t, err)
		assert.Equal(t, []string{"apt-get", "install", "--yes", "--no-install-recommends", "vim", "tmux"}, captured)
	})

	t.Run("execution failure", func(t *testing.T) {
		useHelperProcess(t, true)

		err := newTestCLI(t).Install(t.Context(), false, "vim")
		assert.ErrorContains(t, err, "failed to install vim")
	})
}

func TestIsInstalled(t *testing.T) {
	t.Run("installed package is cached", func(t *testing.T) {
		calls := 0
		execCommand = func(_ context.Context, name string, arg ...string) *exec.Cmd {
			calls++
			cs := []string{"-test.run=TestHelperProcessStatus", "--", name}
			cs = append(cs, arg...)
			cmd := exec.Command(os.Args[0], cs...)
			cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "GOCOVERDIR=/tmp"}
			return cmd
		}
		defer func() { execCommand = exec.CommandContext }()

		cli := newTestCLI(t)

		installed, err := cli.IsInstalled(t.Context(), "vim")
		assert.NoError(t, err)
		assert.True(t, installed)

		installed, err = cli.IsInstalled(t.Context(), "vim")
		assert.NoError(t, err)
		assert.True(t, installed)
		assert.Equal(t, 1, calls)
	})

	t.Run("unknown package is not installed", func(t *testing.T) {
		execCommand = func(_ context.Context, name string, arg ...string) *exec.Cmd {
			cs := []string{"-test.run=TestHelperProcessUnknownPackage", "--", name}
			cs = append(cs, arg...)
			cmd := exec.Command(os.Args[0], cs...)
			cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "GOCOVERDIR=/tmp"}
			return cmd
		}
		defer func() { execCommand = exec.CommandContext }()

		installed, err := newTestCLI(t).IsInstalled(t.Context(), "no-such-package")
		assert.NoError(t, err)
		assert.False(t, installed)
	})

	t.Run("dpkg failure is reported", func(t *testing.T) {
		useHelperProcess(t, true)

		_, err := newTestCLI(t).IsInstalled(t.Context(), "vim")
		assert.ErrorContains(t, err, "failed to query package vim")
	})
}

func TestHelperProcess(*testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if os.Getenv("GO_HELPER_PROCESS_ERROR") == "1" {
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "%v\n", os.Args[3:])
	os.Exit(0)
}

func TestHelperProcessStatus(*testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, "installed")
	os.Exit(0)
}

func TestHelperProcessUnknownPackage(*testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stderr, "dpkg-query: no packages found matching no-such-package")
	os.Exit(1)
}
