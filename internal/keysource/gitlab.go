package keysource

import (
	"context"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

type Gitlab struct {
	client *gitlab.Client
}

func newGitlab() (*Gitlab, error) {
	// Public keys only, no token needed.
	client, err := gitlab.NewClient("")
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	return &Gitlab{
		client: client,
	}, nil
}

func (g *Gitlab) FetchKeys(ctx context.Context, username string) ([]string, error) {
	keys, _, err := g.client.Users.ListSSHKeysForUser(username, &gitlab.ListSSHKeysForUserOptions{PerPage: 100}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list gitlab keys for %s: %w", username, err)
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key.Key)
	}
	return lines, nil
}
