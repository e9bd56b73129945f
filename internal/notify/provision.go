package notify

import (
	"fmt"
	"strings"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

// ProvisionText builds the MarkdownV2 list of remote lessons under an already escaped header
func ProvisionText(header string, provisions []portal.Provision, baseURL string) string {
	l := locale.Get()
	baseURL = strings.TrimSuffix(baseURL, "/")

	rows := make([]string, 0, len(provisions))
	for _, p := range provisions {
		lines := make([]string, 0, len(p.Lessons)+1)
		lines = append(lines, fmt.Sprintf("*%s*", EscapeReserved(p.Subject)))
		for _, lesson := range p.Lessons {
			lines = append(lines, fmt.Sprintf(l.RemoteLessonLine, EscapeReserved(lesson.Theme), baseURL, lesson.Hash))
		}
		rows = append(rows, strings.Join(lines, "\n"))
	}
	return header + strings.Join(rows, "\n\n")
}
