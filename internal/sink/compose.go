package sink

import (
	"fmt"
	"strings"

	"jestfail/internal/host"
)

// Marker opens every composed comment so reruns can be recognised.
const Marker = "<!-- jestfail -->"

// Compose lays notices out as a single pull request comment. GitHub gets an
// HTML table per kind; every other platform gets Markdown sections.
// Returns "" when there is nothing to say.
func Compose(platform host.Platform, notices []Notice) string {
	if len(notices) == 0 {
		return ""
	}
	fails, messages := split(notices)

	var b strings.Builder
	if platform == host.PlatformGitHub {
		b.WriteString(Marker + "\n")
		writeHTMLTable(&b, fails, "Fails", ":no_entry_sign:")
		writeHTMLTable(&b, messages, "Messages", ":book:")
		return b.String()
	}

	writeMarkdownSection(&b, fails, "Fails", ":no_entry_sign:")
	writeMarkdownSection(&b, messages, "Messages", ":book:")
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func split(notices []Notice) (fails, messages []string) {
	for _, n := range notices {
		if n.Kind == KindFail {
			fails = append(fails, n.Text)
		} else {
			messages = append(messages, n.Text)
		}
	}
	return fails, messages
}

func heading(n int, noun string) string {
	if n == 1 {
		return "1 " + strings.TrimSuffix(noun, "s")
	}
	return fmt.Sprintf("%d %s", n, noun)
}

func writeHTMLTable(b *strings.Builder, texts []string, noun, emoji string) {
	if len(texts) == 0 {
		return
	}
	b.WriteString("\n<table>\n  <thead>\n    <tr>\n")
	b.WriteString("      <th width=\"50\"></th>\n")
	fmt.Fprintf(b, "      <th width=\"100%%\" data-kind=%q>%s</th>\n", strings.ToLower(noun), heading(len(texts), noun))
	b.WriteString("    </tr>\n  </thead>\n  <tbody>\n")
	for _, t := range texts {
		b.WriteString("    <tr>\n")
		fmt.Fprintf(b, "      <td>%s</td>\n", emoji)
		fmt.Fprintf(b, "      <td>%s</td>\n", strings.TrimSpace(t))
		b.WriteString("    </tr>\n")
	}
	b.WriteString("  </tbody>\n</table>\n")
}

func writeMarkdownSection(b *strings.Builder, texts []string, noun, emoji string) {
	if len(texts) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("---\n\n")
	}
	fmt.Fprintf(b, "**%s**\n\n", heading(len(texts), noun))
	for _, t := range texts {
		fmt.Fprintf(b, "%s %s\n\n", emoji, strings.TrimSpace(t))
	}
}
