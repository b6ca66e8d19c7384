// Package host describes the code-review platform a report is rendered for.
//
// A Context is exactly one of GitHub, BitbucketServer or None. It is built
// once per run (from a context file or a CI event payload) and passed
// explicitly to the link builder and renderer.
package host

import (
	"path"
	"strings"
)

// Platform identifies the Context variant.
type Platform int

const (
	PlatformNone Platform = iota
	PlatformGitHub
	PlatformBitbucketServer
)

func (p Platform) String() string {
	switch p {
	case PlatformGitHub:
		return "github"
	case PlatformBitbucketServer:
		return "bitbucket_server"
	}
	return "none"
}

// Context is a closed sum type: *GitHub, *BitbucketServer or None.
type Context interface {
	Platform() Platform
	sealed()
}

// None is the Context used when no review platform could be detected.
type None struct{}

func (None) Platform() Platform { return PlatformNone }
func (None) sealed()            {}

// --- GitHub ---

// GitHubOwner is the account owning a repository.
type GitHubOwner struct {
	Login string `json:"login" yaml:"login"`
}

// GitHubRepo is the subset of a GitHub repository object we read.
type GitHubRepo struct {
	HTMLURL  string      `json:"html_url" yaml:"html_url"`
	FullName string      `json:"full_name" yaml:"full_name"`
	Owner    GitHubOwner `json:"owner" yaml:"owner"`
}

// GitHubRef is one side (head or base) of a pull request.
type GitHubRef struct {
	Ref  string     `json:"ref" yaml:"ref"`
	SHA  string     `json:"sha,omitempty" yaml:"sha,omitempty"`
	Repo GitHubRepo `json:"repo" yaml:"repo"`
}

// GitHubPR is the subset of a GitHub pull request object we read. Field names
// follow the GitHub REST payload so event files decode directly.
type GitHubPR struct {
	Number int       `json:"number" yaml:"number"`
	Head   GitHubRef `json:"head" yaml:"head"`
	Base   GitHubRef `json:"base" yaml:"base"`
}

// GitHub is the Context of a GitHub pull request.
type GitHub struct {
	PR GitHubPR `json:"pr" yaml:"pr"`
}

func (*GitHub) Platform() Platform { return PlatformGitHub }
func (*GitHub) sealed()            {}

func (g *GitHub) populated() bool {
	return g != nil && g.PR.Head.Repo.HTMLURL != ""
}

// FileLinks renders anchors to paths on the pull request head, labelled with
// their base names and joined as an English list.
func (g *GitHub) FileLinks(paths ...string) string {
	links := make([]string, 0, len(paths))
	for _, p := range paths {
		href := strings.TrimSuffix(g.PR.Head.Repo.HTMLURL, "/") + "/blob/" + g.PR.Head.Ref + "/" + p
		links = append(links, "<a href='"+href+"'>"+path.Base(filepathToSlash(p))+"</a>")
	}
	return sentence(links)
}

// --- Bitbucket Server ---

// BitbucketLink is one entry of a Bitbucket Server links map.
type BitbucketLink struct {
	Href string `json:"href" yaml:"href"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// BitbucketProject is the project a repository lives in.
type BitbucketProject struct {
	Key string `json:"key" yaml:"key"`
}

// BitbucketRepo is the subset of a Bitbucket Server repository we read.
type BitbucketRepo struct {
	Slug    string                     `json:"slug" yaml:"slug"`
	Project BitbucketProject           `json:"project" yaml:"project"`
	Links   map[string][]BitbucketLink `json:"links" yaml:"links"`
}

// BitbucketRef is one side (fromRef or toRef) of a pull request.
type BitbucketRef struct {
	ID           string        `json:"id" yaml:"id"`
	DisplayID    string        `json:"displayId,omitempty" yaml:"displayId,omitempty"`
	LatestCommit string        `json:"latestCommit,omitempty" yaml:"latestCommit,omitempty"`
	Repository   BitbucketRepo `json:"repository" yaml:"repository"`
}

// BitbucketPR is the subset of a Bitbucket Server pull request we read.
type BitbucketPR struct {
	ID      int          `json:"id" yaml:"id"`
	FromRef BitbucketRef `json:"fromRef" yaml:"fromRef"`
	ToRef   BitbucketRef `json:"toRef" yaml:"toRef"`
}

// BitbucketServer is the Context of a Bitbucket Server pull request.
type BitbucketServer struct {
	PR BitbucketPR `json:"pr" yaml:"pr"`
}

func (*BitbucketServer) Platform() Platform { return PlatformBitbucketServer }
func (*BitbucketServer) sealed()            {}

// RepoRoot is the source repository's self link, or "" when absent.
func (b *BitbucketServer) RepoRoot() string {
	self := b.PR.FromRef.Repository.Links["self"]
	if len(self) == 0 {
		return ""
	}
	return self[0].Href
}

func (b *BitbucketServer) populated() bool {
	return b != nil && b.RepoRoot() != ""
}

func sentence(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
