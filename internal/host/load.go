package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jestfail/internal/logging"
)

// File is the on-disk shape of a context file. It mirrors the parts of a
// Danger DSL dump we need: at most one of the two keys should be set.
type File struct {
	GitHub          *GitHub          `json:"github,omitempty" yaml:"github,omitempty"`
	BitbucketServer *BitbucketServer `json:"bitbucket_server,omitempty" yaml:"bitbucket_server,omitempty"`
}

// Context picks the populated variant. GitHub wins when both are populated.
func (f *File) Context(logger *slog.Logger) Context {
	if logger == nil {
		logger = logging.Discard()
	}
	gh, bb := f.GitHub.populated(), f.BitbucketServer.populated()
	switch {
	case gh && bb:
		logger.Warn("context populates both github and bitbucket_server; using github")
		return f.GitHub
	case gh:
		return f.GitHub
	case bb:
		return f.BitbucketServer
	}
	return None{}
}

// LoadFromPath reads a context file (YAML or JSON).
func LoadFromPath(path string, logger *slog.Logger) (Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}
	return Load(data, filepath.Ext(path), logger)
}

// Load parses context bytes. ext is a format hint (".json", ".yaml", ".yml");
// with no hint the format is detected from the first non-space byte.
func Load(data []byte, ext string, logger *slog.Logger) (Context, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse context yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse context json: %w", err)
		}
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("parse context json: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse context yaml: %w", err)
		}
	}
	return f.Context(logger), nil
}

type githubEvent struct {
	PullRequest *GitHubPR `json:"pull_request"`
}

// FromGitHubEvent reads a GitHub Actions event payload. Events without a
// pull_request object yield None.
func FromGitHubEvent(path string) (Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read github event: %w", err)
	}
	var ev githubEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parse github event: %w", err)
	}
	if ev.PullRequest == nil {
		return None{}, nil
	}
	gh := &GitHub{PR: *ev.PullRequest}
	if !gh.populated() {
		return None{}, nil
	}
	return gh, nil
}

// DetectOptions lists where Detect looks for a context.
type DetectOptions struct {
	// ContextPath is an explicit context file. It takes precedence.
	ContextPath string
	// Getenv reads the environment; os.Getenv when nil.
	Getenv func(string) string
	Logger *slog.Logger
}

// Detect resolves the Context for this run: an explicit context file, then a
// GitHub Actions pull_request event, then None.
func Detect(opts DetectOptions) (Context, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if opts.ContextPath != "" {
		ctx, err := LoadFromPath(opts.ContextPath, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("host context from file", "path", opts.ContextPath, "platform", ctx.Platform())
		return ctx, nil
	}

	if eventPath := getenv("GITHUB_EVENT_PATH"); eventPath != "" && strings.HasPrefix(getenv("GITHUB_EVENT_NAME"), "pull_request") {
		ctx, err := FromGitHubEvent(eventPath)
		if err != nil {
			return nil, err
		}
		logger.Debug("host context from github event", "path", eventPath, "platform", ctx.Platform())
		return ctx, nil
	}

	logger.Debug("no host context detected")
	return None{}, nil
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat env file: %w", err)
		}
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// Credentials are the tokens and endpoints used to publish comments.
type Credentials struct {
	GitHubToken     string
	GitHubAPIURL    string
	BitbucketToken  string
	BitbucketAPIURL string
}

// DefaultGitHubAPIURL is used when GITHUB_API_URL is unset.
const DefaultGitHubAPIURL = "https://api.github.com"

// CredentialsFromEnv reads publishing credentials. getenv is os.Getenv when nil.
func CredentialsFromEnv(getenv func(string) string) Credentials {
	if getenv == nil {
		getenv = os.Getenv
	}
	c := Credentials{
		GitHubToken:     firstNonEmpty(getenv("JESTFAIL_GITHUB_TOKEN"), getenv("GITHUB_TOKEN")),
		GitHubAPIURL:    firstNonEmpty(getenv("GITHUB_API_URL"), DefaultGitHubAPIURL),
		BitbucketToken:  getenv("BITBUCKET_SERVER_TOKEN"),
		BitbucketAPIURL: getenv("BITBUCKET_SERVER_HOST"),
	}
	return c
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
