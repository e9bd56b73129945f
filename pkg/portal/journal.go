package portal

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
)

var (
	teacherID    = regexp.MustCompile(`\d+$`)
	studentID    = regexp.MustCompile(`\((\d+),`)
	lessonType   = regexp.MustCompile(`journal_ltype_(\d)`)
	lessonHeader = regexp.MustCompile(`\d{2}\.\d{2}`)
)

// trailingColumns is the number of summary columns at the end of every journal row
const trailingColumns = 5

// Grades gets the journal of a subject for the given group and semester
func (c *Client) Grades(ctx context.Context, token, group string, subjectID int64, semester int) (journal.Subject, error) {
	doc, err := c.document(ctx, http.MethodGet, journalPath, token, map[string]string{
		"group": group,
		"subj":  strconv.FormatInt(subjectID, 10),
		"sem":   strconv.Itoa(semester),
	}, nil)
	if err != nil {
		return journal.Subject{}, err
	}

	table := doc.Find(".journal_scores_wrp > .fl_left").First()
	title := doc.Find(".journal_title").First()
	if table.Length() == 0 || title.Length() == 0 {
		return journal.Subject{}, errors.Wrapf(ErrParse, "journal %s/%d/%d: no table", group, subjectID, semester)
	}
	header := table.Find("thead th")
	teacher := title.Find("a").First()

	subject := journal.Subject{
		ID:       subjectID,
		Name:     strings.TrimSpace(title.Find("strong").Eq(1).Text()),
		Teacher:  strings.TrimSpace(teacher.Text()),
		Semester: semester,
		Group:    group,
		Marks:    []journal.Mark{},
	}
	if href, ok := teacher.Attr("href"); ok {
		subject.TeacherID, _ = strconv.ParseInt(teacherID.FindString(href), 10, 64)
	}

	header.Each(func(i int, th *goquery.Selection) {
		if i == 0 || i >= header.Length()-trailingColumns {
			return
		}
		if lessonHeader.MatchString(th.Find("a").Text()) {
			subject.LessonCount++
		}
	})

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		stud := c.selfID
		if href, ok := row.Find("td:first-child a").Attr("href"); ok {
			if id, err := strconv.ParseInt(submatch(studentID, href), 10, 64); err == nil {
				stud = id
			}
		}

		cells := row.Find("td")
		cells.Each(func(n int, cell *goquery.Selection) {
			if n == 0 || n >= cells.Length()-trailingColumns {
				return
			}
			text := strings.TrimSpace(cell.Text())
			if text == "" {
				return
			}
			value, err := journal.ParseValue(text)
			if err != nil {
				log.WithField("subject", subjectID).Debugf("skipping cell: %v", err)
				return
			}
			typ := journal.Unknown
			if i, err := strconv.Atoi(submatch(lessonType, cell.AttrOr("class", ""))); err == nil {
				typ = journal.LessonTypeByIndex(i)
			}
			subject.Marks = append(subject.Marks, journal.Mark{
				Date:      strings.TrimSpace(header.Eq(n).Find("a").Text()),
				StudentID: stud,
				Type:      typ,
				Value:     value,
			})
		})
	})
	return subject, nil
}
