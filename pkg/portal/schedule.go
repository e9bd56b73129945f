package portal

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// scheduleSwitchHour is the hour from which the schedule of the next day is shown
const scheduleSwitchHour = 15

var (
	lessonDescription = regexp.MustCompile(`(?i)^([а-яё\s]+)\. ([а-яё\s]+)`)
	materialsMarker   = regexp.MustCompile(`(?i)материалы занятия\s`)
	secondTeacher     = regexp.MustCompile(`(?i)занятия\s([а-яё\s]+)\.`)
)

// ScheduleDay returns the day whose schedule is relevant at the given moment:
// today until 15:00, tomorrow after
func ScheduleDay(now time.Time) time.Time {
	if now.Hour() < scheduleSwitchHour {
		return now
	}
	return now.AddDate(0, 0, 1)
}

// Schedule gets the lessons of the day relevant at the given moment, see ScheduleDay
func (c *Client) Schedule(ctx context.Context, token string, now time.Time) (Schedule, error) {
	target := ScheduleDay(now)

	var query map[string]string
	// the portal shows the current week by default, on Monday the target may be in the next one
	if target.Weekday() == time.Monday {
		query = map[string]string{"d": target.Format(portalDateLayout)}
	}
	var entries []scheduleEntry
	if err := c.postJSON(ctx, schedulePath, token, query, map[string]string{"load": "1"}, &entries); err != nil {
		return Schedule{}, err
	}

	schedule := Schedule{Date: target}
	for _, e := range entries {
		if int(e.DayNum) != int(target.Weekday()) {
			continue
		}
		if e.DataType == "holiday" {
			if len(schedule.Lessons) == 0 {
				name, err := innerText(e.Note)
				if err != nil {
					return Schedule{}, err
				}
				schedule.Holiday = name
			}
			continue
		}

		lesson, err := parseLesson(e)
		if err != nil {
			return Schedule{}, err
		}
		schedule.Lessons = append(schedule.Lessons, lesson)
	}
	return schedule, nil
}

// parseLesson parses a lesson entry of the schedule
func parseLesson(e scheduleEntry) (Lesson, error) {
	description, err := innerText(e.LParam)
	if err != nil {
		return Lesson{}, err
	}
	note, err := parseNote(e.Note)
	if err != nil {
		return Lesson{}, err
	}
	lesson := Lesson{
		Number:  int(e.TimeNum),
		Time:    e.Time,
		Subject: description,
		Note:    note,
	}

	if m := lessonDescription.FindStringSubmatch(description); m != nil {
		lesson.Subject = strings.TrimSpace(m[2])
		teachers := []string{FormatName(m[1])}
		if materialsMarker.MatchString(description) {
			if t := submatch(secondTeacher, description); t != "" {
				teachers = append(teachers, FormatName(t))
			}
		}
		lesson.Teacher = strings.Join(teachers, ", ")
	}

	if e.LParam != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(e.LParam))
		if err != nil {
			return Lesson{}, errors.Wrapf(ErrParse, "lesson %d: %v", e.TimeNum, err)
		}
		lesson.Auditory = strings.TrimSpace(doc.Find("a").First().Text())
	}
	return lesson, nil
}
