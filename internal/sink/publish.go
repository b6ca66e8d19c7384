package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jestfail/internal/host"
	"jestfail/internal/logging"
)

// ErrNoPlatform is returned when publishing is requested without a review
// platform to publish to.
var ErrNoPlatform = errors.New("no review platform detected")

// Publisher posts recorded notices as one pull request comment.
type Publisher interface {
	Publish(ctx context.Context, notices []Notice) (*Comment, error)
}

// NewPublisher picks a platform client for hc using creds. opts are passed
// to the client.
func NewPublisher(hc host.Context, creds host.Credentials, opts ...Option) (Publisher, error) {
	logger := logging.Discard()
	probe := &clientConfig{}
	for _, opt := range opts {
		if err := opt(probe); err != nil {
			return nil, err
		}
	}
	if probe.logger != nil {
		logger = probe.logger
	}

	switch c := hc.(type) {
	case *host.GitHub:
		if creds.GitHubToken == "" {
			return nil, fmt.Errorf("publish to github: token is not set")
		}
		apiURL := creds.GitHubAPIURL
		if apiURL == "" {
			apiURL = host.DefaultGitHubAPIURL
		}
		client, err := NewGitHubClient(apiURL, creds.GitHubToken, opts...)
		if err != nil {
			return nil, err
		}
		repo := c.PR.Base.Repo.FullName
		if repo == "" {
			repo = c.PR.Head.Repo.FullName
		}
		return &githubPublisher{client: client, repo: repo, number: c.PR.Number, logger: logger}, nil

	case *host.BitbucketServer:
		if creds.BitbucketToken == "" || creds.BitbucketAPIURL == "" {
			return nil, fmt.Errorf("publish to bitbucket server: host and token must both be set")
		}
		client, err := NewBitbucketClient(creds.BitbucketAPIURL, creds.BitbucketToken, opts...)
		if err != nil {
			return nil, err
		}
		target := c.PR.ToRef.Repository
		if target.Slug == "" {
			target = c.PR.FromRef.Repository
		}
		return &bitbucketPublisher{
			client:  client,
			project: target.Project.Key,
			slug:    target.Slug,
			id:      c.PR.ID,
			logger:  logger,
		}, nil
	}
	return nil, ErrNoPlatform
}

type githubPublisher struct {
	client *GitHubClient
	repo   string
	number int
	logger *slog.Logger
}

func (p *githubPublisher) Publish(ctx context.Context, notices []Notice) (*Comment, error) {
	body := Compose(host.PlatformGitHub, notices)
	if body == "" {
		p.logger.InfoContext(ctx, "nothing to publish", "repo", p.repo, "pr", p.number)
		return nil, nil
	}
	c, err := p.client.CreateComment(ctx, p.repo, p.number, body)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "comment published", "repo", p.repo, "pr", p.number, "comment_id", c.ID)
	return c, nil
}

type bitbucketPublisher struct {
	client  *BitbucketClient
	project string
	slug    string
	id      int
	logger  *slog.Logger
}

func (p *bitbucketPublisher) Publish(ctx context.Context, notices []Notice) (*Comment, error) {
	text := Compose(host.PlatformBitbucketServer, notices)
	if text == "" {
		p.logger.InfoContext(ctx, "nothing to publish", "project", p.project, "repo", p.slug, "pr", p.id)
		return nil, nil
	}
	c, err := p.client.CreateComment(ctx, p.project, p.slug, p.id, text)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "comment published", "project", p.project, "repo", p.slug, "pr", p.id, "comment_id", c.ID)
	return c, nil
}
