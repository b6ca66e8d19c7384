// Package link builds hyperlinks from failing assertions to the test file in
// the reviewed revision.
package link

import (
	"path"
	"strconv"
	"strings"

	"jestfail/internal/host"
)

// Unlinked is appended to the title when no review platform is known.
const Unlinked = "(could not link to the specific test file)"

// LineOfError finds the line number of file in a failure message: the text
// following the first occurrence of the file's base name, split on ":", with
// the leading digits of the second token parsed. Lines below 1 count as none.
func LineOfError(msg, file string) (int, bool) {
	name := path.Base(strings.ReplaceAll(file, "\\", "/"))
	if msg == "" || name == "" || name == "." || name == "/" {
		return 0, false
	}
	_, rest, found := strings.Cut(msg, name)
	if !found || rest == "" {
		return 0, false
	}
	parts := strings.Split(rest, ":")
	if len(parts) < 2 {
		return 0, false
	}
	n, ok := leadingInt(parts[1])
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

// leadingInt parses an optionally signed run of digits after leading
// whitespace, ignoring anything that follows.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ToTest links title to file (at the line found in msg, when there is one)
// on the platform described by hc.
func ToTest(hc host.Context, file, msg, title string) string {
	line, hasLine := LineOfError(msg, file)

	switch c := hc.(type) {
	case *host.GitHub:
		u := GitHubBlobURL(c, file)
		if hasLine {
			u += "#L" + strconv.Itoa(line)
		}
		return "<a href='" + u + "'>" + title + "</a>"
	case *host.BitbucketServer:
		u := BitbucketFileURL(c, file)
		if hasLine {
			u += "#" + strconv.Itoa(line)
		}
		return "[" + title + "](" + u + ")"
	}
	return title + " " + Unlinked
}

// GitHubBlobURL is the head-revision URL of file. The web root is the head
// repository URL up to its owner login.
func GitHubBlobURL(gh *host.GitHub, file string) string {
	repo := gh.PR.Head.Repo
	root := repo.HTMLURL
	if repo.Owner.Login != "" {
		root, _, _ = strings.Cut(repo.HTMLURL, repo.Owner.Login)
	}
	return root + repo.FullName + "/blob/" + gh.PR.Head.Ref + "/" + file
}

// BitbucketFileURL is the source-branch URL of file, without a line anchor.
func BitbucketFileURL(bb *host.BitbucketServer, file string) string {
	return bb.RepoRoot() + "/" + strings.ReplaceAll(file, "\\", "/") + "?at=" + encodeURI(bb.PR.FromRef.ID)
}

// encodeURI escapes a ref the way a browser's encodeURI does: letters,
// digits and the reserved and mark characters stay as they are, every other
// byte of the UTF-8 encoding becomes %XX.
func encodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func uriUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) >= 0
}
