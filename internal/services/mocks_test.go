package services

import (
	"context"

	"github.com/hostinit/hostinit/internal/keysource"
	"github.com/stretchr/testify/mock"
)

type MockAptRunner struct {
	mock.Mock
}

func (m *MockAptRunner) Update(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAptRunner) DistUpgrade(ctx context.Context, dryRun bool) error {
	args := m.Called(ctx, dryRun)
	return args.Error(0)
}

func (m *MockAptRunner) Install(ctx context.Context, dryRun bool, packages ...string) error {
	callArgs := []interface{}{ctx, dryRun}
	for _, name := range packages {
		callArgs = append(callArgs, name)
	}
	args := m.Called(callArgs...)
	return args.Error(0)
}

func (m *MockAptRunner) IsInstalled(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockDaemon struct {
	mock.Mock
}

func (m *MockDaemon) ConfiguredPort() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockDaemon) SetPort(port int) error {
	args := m.Called(port)
	return args.Error(0)
}

func (m *MockDaemon) Validate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDaemon) Restart(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Confirm(question string, defaultYes bool) bool {
	args := m.Called(question, defaultYes)
	return args.Bool(0)
}

type MockInstaller struct {
	mock.Mock
}

func (m *MockInstaller) Apply(ctx context.Context, repositoryURL string, script string, username string) error {
	args := m.Called(ctx, repositoryURL, script, username)
	return args.Error(0)
}

type MockSystem struct {
	mock.Mock
}

func (m *MockSystem) Run(ctx context.Context, name string, args ...string) (string, error) {
	callArgs := []interface{}{ctx, name}
	for _, arg := range args {
		callArgs = append(callArgs, arg)
	}
	called := m.Called(callArgs...)
	return called.String(0), called.Error(1)
}

func (m *MockSystem) RunIn(ctx context.Context, dir string, name string, args ...string) (string, error) {
	callArgs := []interface{}{ctx, dir, name}
	for _, arg := range args {
		callArgs = append(callArgs, arg)
	}
	called := m.Called(callArgs...)
	return called.String(0), called.Error(1)
}

func (m *MockSystem) Output(ctx context.Context, name string, args ...string) (string, error) {
	callArgs := []interface{}{ctx, name}
	for _, arg := range args {
		callArgs = append(callArgs, arg)
	}
	called := m.Called(callArgs...)
	return called.String(0), called.Error(1)
}

func (m *MockSystem) OSRelease(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockSystem) ServiceRestart(ctx context.Context, unit string) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

type MockKeyFactory struct {
	mock.Mock
}

func (m *MockKeyFactory) Create(spec string) (keysource.Source, string, error) {
	args := m.Called(spec)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(keysource.Source), args.String(1), args.Error(2)
}

type MockKeySource struct {
	mock.Mock
}

func (m *MockKeySource) FetchKeys(ctx context.Context, username string) ([]string, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockUpgradeService struct {
	mock.Mock
}

func (m *MockUpgradeService) UpgradeSystem(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUpgradeService) InstallUtilities(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockSSHService struct {
	mock.Mock
}

func (m *MockSSHService) ConfigurePort(ctx context.Context, port int) error {
	args := m.Called(ctx, port)
	return args.Error(0)
}

type MockDotfilesService struct {
	mock.Mock
}

func (m *MockDotfilesService) InstallAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) EnsureUser(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAccountService) ProvisionKeys(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
