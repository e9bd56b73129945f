/*
Package autovisit attends today's remote lessons on behalf of users who gave
the bot their portal credentials.
*/
package autovisit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

// Portal is the part of the portal client the visitor needs
type Portal interface {
	VisitLesson(ctx context.Context, token, hash string) error
}

// Sessions provides valid portal sessions of users
type Sessions interface {
	EnsureValid(ctx context.Context, id int64) (string, session.Status, error)
}

// Result represents the outcome of visiting one lesson
type Result struct {
	Hash string
	OK   bool
}

// Report represents the outcome of visiting all of today's lessons
type Report []Result

// Visited counts the lessons visited successfully
func (r Report) Visited() (n int) {
	for _, res := range r {
		if res.OK {
			n++
		}
	}
	return
}

// Visitor visits remote lessons with the users' own sessions
type Visitor struct {
	portal   Portal
	sessions Sessions
	baseURL  string
}

// New creates a visitor, baseURL is used in the links of the reports
func New(p Portal, sessions Sessions, baseURL string) *Visitor {
	return &Visitor{portal: p, sessions: sessions, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Hashes lists the hashes of all remote lessons in order
func Hashes(provisions []portal.Provision) []string {
	var hashes []string
	for _, p := range provisions {
		for _, l := range p.Lessons {
			hashes = append(hashes, l.Hash)
		}
	}
	return hashes
}

// Visit opens every lesson with the user's session.
// The error is only returned when no session could be obtained.
func (v *Visitor) Visit(ctx context.Context, chatID int64, hashes []string) (Report, error) {
	logger := log.WithField("UID", chatID)

	token, _, err := v.sessions.EnsureValid(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("autovisit: error getting session: %w", err)
	}

	report := make(Report, 0, len(hashes))
	for _, hash := range hashes {
		err = v.portal.VisitLesson(ctx, token, hash)
		if err != nil && !errors.Is(err, portal.ErrVisitRejected) {
			logger.Warnf("failed to visit lesson %s: %v", hash, err)
		}
		report = append(report, Result{Hash: hash, OK: err == nil})
	}
	logger.Infof("visited %d of %d remote lessons", report.Visited(), len(report))
	return report, nil
}

// Render builds the MarkdownV2 report sent to the user
func (v *Visitor) Render(r Report) notify.Message {
	l := locale.Get()
	visited := r.Visited()

	colon := ""
	if visited != len(r) {
		colon = ":"
	}

	var b strings.Builder
	fmt.Fprintf(&b, l.AutovisitReportHeader, locale.PluralString(len(r), l.LessonForms))
	fmt.Fprintf(&b, l.AutovisitReportOK, locale.PluralString(visited, l.LessonForms))
	fmt.Fprintf(&b, l.AutovisitReportFailed, locale.PluralString(len(r)-visited, l.LessonForms), colon)

	n := 0
	for _, res := range r {
		if res.OK {
			continue
		}
		n++
		fmt.Fprintf(&b, l.AutovisitReportLesson, n, v.baseURL, res.Hash)
		b.WriteString("\n")
	}
	b.WriteString(l.AutovisitReportFooter)
	return notify.Message{Text: b.String(), Markdown: true, NoPreview: true}
}

// FailureMessage is sent when the user's session could not be obtained
func FailureMessage() notify.Message {
	return notify.Message{Text: locale.Get().AutovisitFailedMessage}
}
