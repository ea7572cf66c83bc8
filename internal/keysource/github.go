package keysource

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"
)

type Github struct {
	client *github.Client
}

func newGithub() *Github {
	return &Github{
		client: github.NewClient(nil),
	}
}

func (g *Github) FetchKeys(ctx context.Context, username string) ([]string, error) {
	keys, _, err := g.client.Users.ListKeys(ctx, username, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list github keys for %s: %w", username, err)
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key.GetKey())
	}
	return lines, nil
}
