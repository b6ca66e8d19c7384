package sink

import (
	"context"
	"fmt"
	"net/url"
)

// Comment is the part of a created pull request comment callers care about.
type Comment struct {
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url,omitempty"`
	Body    string `json:"body,omitempty"`
	Text    string `json:"text,omitempty"`
	Version int    `json:"version,omitempty"`
}

// GitHubClient posts pull request comments through the GitHub REST API.
type GitHubClient struct {
	api *api
}

// NewGitHubClient returns a client for apiURL (https://api.github.com for
// github.com) authenticated with token.
func NewGitHubClient(apiURL, token string, opts ...Option) (*GitHubClient, error) {
	a, err := newAPI(apiURL, token, "application/vnd.github+json", opts)
	if err != nil {
		return nil, err
	}
	return &GitHubClient{api: a}, nil
}

// CreateComment adds an issue comment to pull request number of repo
// ("owner/name").
func (c *GitHubClient) CreateComment(ctx context.Context, repo string, number int, body string) (*Comment, error) {
	if repo == "" || number <= 0 {
		return nil, fmt.Errorf("create github comment: repository and pull request number are required")
	}
	u := fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.api.baseURL, repo, number)
	var out Comment
	if err := c.api.doJSON(ctx, "POST", u, "create github comment", map[string]string{"body": body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BitbucketClient posts pull request comments through the Bitbucket Server
// REST API 1.0.
type BitbucketClient struct {
	api *api
}

// NewBitbucketClient returns a client for the server at baseURL
// authenticated with an HTTP access token.
func NewBitbucketClient(baseURL, token string, opts ...Option) (*BitbucketClient, error) {
	a, err := newAPI(baseURL, token, "application/json", opts)
	if err != nil {
		return nil, err
	}
	return &BitbucketClient{api: a}, nil
}

// CreateComment adds a general comment to pull request id of project/repo.
func (c *BitbucketClient) CreateComment(ctx context.Context, projectKey, repoSlug string, id int, text string) (*Comment, error) {
	if projectKey == "" || repoSlug == "" || id <= 0 {
		return nil, fmt.Errorf("create bitbucket comment: project, repository and pull request id are required")
	}
	u := fmt.Sprintf("%s/rest/api/1.0/projects/%s/repos/%s/pull-requests/%d/comments",
		c.api.baseURL, url.PathEscape(projectKey), url.PathEscape(repoSlug), id)
	var out Comment
	if err := c.api.doJSON(ctx, "POST", u, "create bitbucket comment", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
