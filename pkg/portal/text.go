package portal

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/coolspring8/go-lolhtml"
	"github.com/pkg/errors"
)

// innerText strips all the tags of an HTML fragment and unescapes its entities
func innerText(fragment string) (string, error) {
	if fragment == "" {
		return "", nil
	}
	result, err := lolhtml.RewriteString(
		fragment,
		&lolhtml.Handlers{
			ElementContentHandler: []lolhtml.ElementContentHandler{
				{
					Selector: "br",
					ElementHandler: func(e *lolhtml.Element) lolhtml.RewriterDirective {
						if err := e.ReplaceAsText("\n"); err != nil {
							return lolhtml.Stop
						}
						return lolhtml.Continue
					},
				},
				{
					Selector: "*",
					ElementHandler: func(e *lolhtml.Element) lolhtml.RewriterDirective {
						e.RemoveAndKeepContent()
						return lolhtml.Continue
					},
				},
			},
		},
	)
	if err != nil {
		return "", errors.Wrapf(ErrParse, "error rewriting HTML: %v", err)
	}
	result = html.UnescapeString(result)
	return strings.TrimSpace(strings.ReplaceAll(result, "\u00a0", " ")), nil
}

// FormatName shortens a full name to the last name and initials: "Иванов Иван Иванович" becomes "Иванов И. И."
func FormatName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) < 2 {
		return strings.TrimSpace(fullName)
	}
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		r := []rune(p)
		fmt.Fprintf(&sb, " %c.", r[0])
	}
	return sb.String()
}

var (
	remoteNote        = regexp.MustCompile(`(?i)дистанцион`)
	selfStudyNote     = regexp.MustCompile(`(?i)самостоятельн`)
	movedNote         = regexp.MustCompile(`переносится|перенесено`)
	replacementNote   = regexp.MustCompile(`(?i)преподаватель`)
	noteAuditory      = regexp.MustCompile(`(?i)([\d/б]+)\s?$`)
	noteTeacherBefore = regexp.MustCompile(`(?i)([а-яё]+\s(?:[а-яё]+\.\s?){1,2})\s`)
	noteTeacherAtEnd  = regexp.MustCompile(`(?i)([а-яё]+\s(?:[а-яё]+\.\s?){1,2})$`)
)

// parseNote shortens the note attached to a schedule entry
func parseNote(raw string) (string, error) {
	text, err := innerText(raw)
	if err != nil || text == "" {
		return "", err
	}

	auditory := submatch(noteAuditory, text)
	switch {
	case remoteNote.MatchString(text):
		return "Дистант", nil
	case selfStudyNote.MatchString(text):
		return "Самостоятельное обучение", nil
	case movedNote.MatchString(text):
		if auditory == "" {
			return "Перенос", nil
		}
		return "Перенос в ауд. " + auditory, nil
	case replacementNote.MatchString(text) && strings.Contains(text, "в аудитории"):
		return fmt.Sprintf("Заменяет %s в ауд. %s", strings.TrimSpace(submatch(noteTeacherBefore, text)), auditory), nil
	case replacementNote.MatchString(text):
		return "Заменяет " + strings.TrimSpace(submatch(noteTeacherAtEnd, text)), nil
	}
	return "", nil
}

// submatch returns the first capture group of re in s, or an empty string
func submatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
