package notify

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
)

// DigestHeader opens every grade digest
const DigestHeader = "*✏ Новости из журнала!*\n"

var markEmojis = map[int]string{
	1: "❤️",
	2: "🧡",
	3: "💛",
	4: "💚",
	5: "💙",
}

const (
	absenceEmoji = "🌚"
	unknownEmoji = "🖤"
)

// MarkEmoji returns the emoji of a mark value
func MarkEmoji(v journal.Value) string {
	if v.Absent {
		return absenceEmoji
	}
	if e, ok := markEmojis[int(math.Floor(v.Score))]; ok {
		return e
	}
	return unknownEmoji
}

var workNames = map[journal.LessonType]string{
	journal.Audit:    "занятие",
	journal.Lecture:  "лекцию",
	journal.Practice: "практику",
	journal.Unknown:  "[неизвестно]",
	journal.Attest:   "аттестацию",
	journal.Exam:     "экзамен",
}

// WorkName returns what a mark of the lesson type was given for, in the accusative
func WorkName(t journal.LessonType) string {
	if name, ok := workNames[t]; ok {
		return name
	}
	return workNames[journal.Unknown]
}

// Line represents a single change in a digest
type Line struct {
	Text    string
	Absence bool // the line reports a missed lesson
}

// AddedLine formats a new mark
func AddedLine(m journal.Mark) Line {
	return Line{
		Text:    fmt.Sprintf("%s %s за %s от %s", MarkEmoji(m.Value), m.Value, WorkName(m.Type), m.Date),
		Absence: m.Value.Absent,
	}
}

// EditedLine formats a changed mark
func EditedLine(e journal.Edit) Line {
	return Line{
		Text:    fmt.Sprintf("%s %s → %s за %s от %s", MarkEmoji(e.After), e.Before, e.After, WorkName(e.Type), e.Date),
		Absence: e.After.Absent,
	}
}

// RemovedLine formats a removed mark
func RemovedLine(m journal.Mark) Line {
	return Line{Text: fmt.Sprintf("❌ %s убрана за %s от %s", m.Value, WorkName(m.Type), m.Date)}
}

// Digest aggregates grade changes per student and subject over one refresh cycle.
// It is safe for concurrent use.
type Digest struct {
	mu       sync.Mutex
	students map[int64]map[string][]Line // portal student ID -> subject -> lines
}

// NewDigest creates an empty digest
func NewDigest() *Digest {
	return &Digest{students: make(map[int64]map[string][]Line)}
}

// Add records the changes of a subject's journal
func (d *Digest) Add(subject string, c journal.Comparison) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, m := range c.Added {
		d.add(m.StudentID, subject, AddedLine(m))
	}
	for _, e := range c.Edited {
		d.add(e.StudentID, subject, EditedLine(e))
	}
	for _, m := range c.Removed {
		d.add(m.StudentID, subject, RemovedLine(m))
	}
}

func (d *Digest) add(studentID int64, subject string, line Line) {
	subjects, ok := d.students[studentID]
	if !ok {
		subjects = make(map[string][]Line)
		d.students[studentID] = subjects
	}
	subjects[subject] = append(subjects[subject], line)
}

// Empty reports whether no change was recorded
func (d *Digest) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.students) == 0
}

// Render builds the MarkdownV2 digest of a student, leaving out absences unless asked for.
// It returns false if nothing is left to tell.
func (d *Digest) Render(studentID int64, withAbsences bool) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subjects := d.students[studentID]
	names := make([]string, 0, len(subjects))
	for name := range subjects {
		names = append(names, name)
	}
	collate.New(language.Russian).SortStrings(names)

	var blocks []string
	for _, name := range names {
		var lines []string
		for _, l := range subjects[name] {
			if l.Absence && !withAbsences {
				continue
			}
			lines = append(lines, l.Text)
		}
		if len(lines) == 0 {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("*%s:*\n%s", name, strings.Join(lines, "\n")))
	}
	if len(blocks) == 0 {
		return "", false
	}
	return EscapeNotFormatting(DigestHeader + strings.Join(blocks, "\n\n")), true
}
