// Package sink receives the notices a report run produces and delivers them
// to a terminal or to a pull request comment.
package sink

import (
	"fmt"
	"io"
	"strings"
)

// Sink is the host's reporting channel. Fail records a build-failing
// annotation, Message an informational one. Both are fire-and-forget.
type Sink interface {
	Fail(text string)
	Message(text string)
}

// Discard is a Sink that drops every notice.
type Discard struct{}

func (Discard) Fail(string)    {}
func (Discard) Message(string) {}

// Kind distinguishes failing from informational notices.
type Kind int

const (
	KindFail Kind = iota
	KindMessage
)

func (k Kind) String() string {
	if k == KindFail {
		return "fail"
	}
	return "message"
}

// Notice is one recorded annotation.
type Notice struct {
	Kind Kind
	Text string
}

// Recorder keeps notices in submission order.
type Recorder struct {
	notices []Notice
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Fail(text string)    { r.notices = append(r.notices, Notice{Kind: KindFail, Text: text}) }
func (r *Recorder) Message(text string) { r.notices = append(r.notices, Notice{Kind: KindMessage, Text: text}) }

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Fails returns the texts of failing notices in order.
func (r *Recorder) Fails() []string { return r.texts(KindFail) }

// Messages returns the texts of informational notices in order.
func (r *Recorder) Messages() []string { return r.texts(KindMessage) }

func (r *Recorder) texts(k Kind) []string {
	var out []string
	for _, n := range r.notices {
		if n.Kind == k {
			out = append(out, n.Text)
		}
	}
	return out
}

// WriteTo prints notices for a human reading a CI log.
func WriteTo(w io.Writer, notices []Notice) error {
	for i, n := range notices {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		label := "FAIL"
		if n.Kind == KindMessage {
			label = "MESSAGE"
		}
		if _, err := fmt.Fprintf(w, "== %s ==\n%s\n", label, strings.TrimSpace(n.Text)); err != nil {
			return err
		}
	}
	return nil
}
