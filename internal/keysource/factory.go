package keysource

import (
	"context"
	"fmt"
	"strings"
)

// Source fetches the public SSH keys a user has published on a code
// hosting platform.
type Source interface {
	FetchKeys(ctx context.Context, username string) ([]string, error)
}

// Factory resolves a `platform:username` spec into a Source and the
// username to query.
type Factory interface {
	Create(spec string) (Source, string, error)
}

// DefaultSourceFactory creates the appropriate Source implementation
// based on the key source spec.
type DefaultSourceFactory struct{}

// NewDefaultSourceFactory creates a new factory for key sources.
func NewDefaultSourceFactory() *DefaultSourceFactory {
	return &DefaultSourceFactory{}
}

// Create returns a Source for the given spec, e.g. "github:octocat".
func (sf *DefaultSourceFactory) Create(spec string) (Source, string, error) {
	platform, username, found := strings.Cut(spec, ":")
	if !found || username == "" {
		return nil, "", fmt.Errorf("invalid key source %q, want platform:username", spec)
	}

	switch platform {
	case "github":
		return newGithub(), username, nil
	case "gitlab":
		source, err := newGitlab()
		if err != nil {
			return nil, "", err
		}
		return source, username, nil
	}
	return nil, "", fmt.Errorf("unsupported key source platform %q", platform)
}
