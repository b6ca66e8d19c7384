package host

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testdataPath(name string) string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "testdata", name)
}

func TestLoadFromPath_GitHubYAML(t *testing.T) {
	ctx, err := LoadFromPath(testdataPath("github.yaml"), nil)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	gh, ok := ctx.(*GitHub)
	if !ok {
		t.Fatalf("want *GitHub, got %T", ctx)
	}
	want := GitHubRef{
		Ref: "fix-math",
		Repo: GitHubRepo{
			HTMLURL:  "https://github.com/orta/danger-plugin-jest",
			FullName: "orta/danger-plugin-jest",
			Owner:    GitHubOwner{Login: "orta"},
		},
	}
	if diff := cmp.Diff(want, gh.PR.Head); diff != "" {
		t.Errorf("head mismatch (-want +got):\n%s", diff)
	}
	if gh.PR.Number != 42 || gh.PR.Base.Repo.FullName != "danger/danger-plugin-jest" {
		t.Errorf("unexpected PR: %+v", gh.PR)
	}
}

func TestLoadFromPath_BitbucketJSON(t *testing.T) {
	ctx, err := LoadFromPath(testdataPath("bitbucket.json"), nil)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	bb, ok := ctx.(*BitbucketServer)
	if !ok {
		t.Fatalf("want *BitbucketServer, got %T", ctx)
	}
	if bb.RepoRoot() != "http://bitbucket.example.com/projects/MDM/repos/madam2/browse" {
		t.Errorf("RepoRoot() = %q", bb.RepoRoot())
	}
	if bb.PR.FromRef.ID != "refs/heads/feature/danger_integration" || bb.PR.ToRef.Repository.Project.Key != "MDM" {
		t.Errorf("unexpected PR: %+v", bb.PR)
	}
}

func TestLoad_BothPopulatedPrefersGitHub(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, err := LoadFromPath(testdataPath("both.yaml"), logger)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if ctx.Platform() != PlatformGitHub {
		t.Errorf("Platform() = %v, want github", ctx.Platform())
	}
	if !strings.Contains(buf.String(), "using github") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestLoad_EmptyIsNone(t *testing.T) {
	for _, in := range []string{"{}", "", "github:\n  pr:\n    number: 3\n"} {
		ctx, err := Load([]byte(in), "", nil)
		if err != nil {
			t.Fatalf("Load(%q): %v", in, err)
		}
		if _, ok := ctx.(None); !ok {
			t.Errorf("Load(%q) = %T, want None", in, ctx)
		}
	}
}

func TestLoad_Malformed(t *testing.T) {
	if _, err := Load([]byte("{not json"), ".json", nil); err == nil {
		t.Error("expected json error")
	}
	if _, err := Load([]byte("github: [unclosed"), ".yml", nil); err == nil {
		t.Error("expected yaml error")
	}
}

func TestFromGitHubEvent(t *testing.T) {
	ctx, err := FromGitHubEvent(testdataPath("event_pull_request.json"))
	if err != nil {
		t.Fatalf("FromGitHubEvent: %v", err)
	}
	gh, ok := ctx.(*GitHub)
	if !ok {
		t.Fatalf("want *GitHub, got %T", ctx)
	}
	if gh.PR.Head.SHA != "abc123" || gh.PR.Head.Repo.Owner.Login != "orta" {
		t.Errorf("unexpected head: %+v", gh.PR.Head)
	}

	ctx, err = FromGitHubEvent(testdataPath("event_push.json"))
	if err != nil {
		t.Fatalf("FromGitHubEvent(push): %v", err)
	}
	if ctx.Platform() != PlatformNone {
		t.Errorf("push event Platform() = %v, want none", ctx.Platform())
	}
}

func TestDetect(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}
	tests := []struct {
		name string
		opts DetectOptions
		want Platform
	}{
		{
			name: "explicit file wins over event",
			opts: DetectOptions{
				ContextPath: testdataPath("bitbucket.json"),
				Getenv: env(map[string]string{
					"GITHUB_EVENT_PATH": testdataPath("event_pull_request.json"),
					"GITHUB_EVENT_NAME": "pull_request",
				}),
			},
			want: PlatformBitbucketServer,
		},
		{
			name: "github actions pull_request_target",
			opts: DetectOptions{Getenv: env(map[string]string{
				"GITHUB_EVENT_PATH": testdataPath("event_pull_request.json"),
				"GITHUB_EVENT_NAME": "pull_request_target",
			})},
			want: PlatformGitHub,
		},
		{
			name: "github actions push is ignored",
			opts: DetectOptions{Getenv: env(map[string]string{
				"GITHUB_EVENT_PATH": testdataPath("event_push.json"),
				"GITHUB_EVENT_NAME": "push",
			})},
			want: PlatformNone,
		},
		{
			name: "nothing",
			opts: DetectOptions{Getenv: env(nil)},
			want: PlatformNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := Detect(tt.opts)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if ctx.Platform() != tt.want {
				t.Errorf("Platform() = %v, want %v", ctx.Platform(), tt.want)
			}
		})
	}
}

func TestDetect_MissingFile(t *testing.T) {
	if _, err := Detect(DetectOptions{ContextPath: testdataPath("missing.yaml")}); err == nil {
		t.Error("expected error for missing context file")
	}
}

func TestFileLinks(t *testing.T) {
	gh := &GitHub{PR: GitHubPR{Head: GitHubRef{
		Ref:  "fix",
		Repo: GitHubRepo{HTMLURL: "https://github.com/o/r"},
	}}}

	if got, want := gh.FileLinks("src/a.test.ts"), "<a href='https://github.com/o/r/blob/fix/src/a.test.ts'>a.test.ts</a>"; got != want {
		t.Errorf("FileLinks(one) = %q, want %q", got, want)
	}
	got := gh.FileLinks("a.js", "b/c.js", "d.js")
	want := "<a href='https://github.com/o/r/blob/fix/a.js'>a.js</a>, <a href='https://github.com/o/r/blob/fix/b/c.js'>c.js</a> and <a href='https://github.com/o/r/blob/fix/d.js'>d.js</a>"
	if got != want {
		t.Errorf("FileLinks(three) = %q, want %q", got, want)
	}
	if gh.FileLinks() != "" {
		t.Error("FileLinks() with no paths should be empty")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("JESTFAIL_TEST_PRESET", "from-process")
	t.Setenv("JESTFAIL_TEST_TOKEN", "")
	os.Unsetenv("JESTFAIL_TEST_TOKEN")

	if err := LoadEnv(testdataPath("missing.env"), testdataPath("test.env")); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("JESTFAIL_TEST_TOKEN"); got != "from-dotenv" {
		t.Errorf("JESTFAIL_TEST_TOKEN = %q, want from-dotenv", got)
	}
	if got := os.Getenv("JESTFAIL_TEST_PRESET"); got != "from-process" {
		t.Errorf("existing variable overridden: %q", got)
	}
	os.Unsetenv("JESTFAIL_TEST_TOKEN")
}

func TestCredentialsFromEnv(t *testing.T) {
	env := map[string]string{
		"GITHUB_TOKEN":           "gh",
		"JESTFAIL_GITHUB_TOKEN":  "override",
		"BITBUCKET_SERVER_TOKEN": "bb",
		"BITBUCKET_SERVER_HOST":  "https://bb.example.com",
	}
	got := CredentialsFromEnv(func(k string) string { return env[k] })
	want := Credentials{
		GitHubToken:     "override",
		GitHubAPIURL:    DefaultGitHubAPIURL,
		BitbucketToken:  "bb",
		BitbucketAPIURL: "https://bb.example.com",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CredentialsFromEnv mismatch (-want +got):\n%s", diff)
	}
}
