package bot

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

const birthdayLayout = "2006-01-02"

// birthday represents an upcoming birthday of a linked user
type birthday struct {
	Name     string
	Date     time.Time
	DaysLeft int
}

// nearestBirthdays returns at most n birthdays from today on, the nearest first.
// January birthdays count as next year's once January is over.
func nearestBirthdays(accounts []db.Account, now time.Time, n int) []birthday {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var result []birthday
	for _, a := range accounts {
		date, err := time.Parse(birthdayLayout, a.Birthday)
		if err != nil {
			continue
		}
		year := now.Year()
		if date.Month() == time.January && now.Month() > time.January {
			year++
		}
		next := time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		days := int(next.Sub(today).Hours() / 24)
		if days < 0 {
			continue
		}
		result = append(result, birthday{Name: locale.ShortName(a.FirstName, a.LastName), Date: date, DaysLeft: days})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].DaysLeft < result[j].DaysLeft })
	if len(result) > n {
		result = result[:n]
	}
	return result
}

// birthdaysText builds the MarkdownV2 list of the nearest birthdays
func birthdaysText(bdays []birthday, footer string) string {
	l := locale.Get()
	lines := make([]string, 0, len(bdays)+1)
	lines = append(lines, l.NearestBirthdaysHeader)
	for _, bd := range bdays {
		left := l.BirthdayToday
		if bd.DaysLeft > 0 {
			verb := locale.Plural(bd.DaysLeft, [3]string{"ся", "ось", "ось"})
			left = fmt.Sprintf(l.BirthdayDaysLeft, verb, locale.PluralString(bd.DaysLeft, [3]string{"день", "дня", "дней"}))
		}
		lines = append(lines, fmt.Sprintf("🔹 *%s* — %s (%s)", locale.DayMonth(bd.Date), bd.Name, left))
	}
	return notify.EscapeNotFormatting(strings.Join(lines, "\n") + footer)
}

// seasonText builds the MarkdownV2 list of the birthdays in a season, in calendar order
func seasonText(accounts []db.Account, season locale.Season) string {
	type entry struct {
		name string
		date time.Time
	}
	var entries []entry
	for _, a := range accounts {
		date, err := time.Parse(birthdayLayout, a.Birthday)
		if err != nil || !slices.Contains(season.Months, int(date.Month())) {
			continue
		}
		entries = append(entries, entry{locale.ShortName(a.FirstName, a.LastName), date})
	}
	if len(entries) == 0 {
		return notify.EscapeNotFormatting(locale.Get().NoSeasonBirthdaysMessage)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].date.Format("01-02") < entries[j].date.Format("01-02")
	})
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s *%s* — %s", locale.Zodiac(e.date), locale.DayMonthYear(e.date), e.name)
	}
	return notify.EscapeNotFormatting(strings.Join(lines, "\n"))
}

// profileText builds the MarkdownV2 summary of a linked account
func profileText(format string, a db.Account) string {
	bday := "—"
	if date, err := time.Parse(birthdayLayout, a.Birthday); err == nil {
		bday = locale.DayMonth(date)
	}
	return notify.EscapeNotFormatting(fmt.Sprintf(format,
		locale.Initial(a.FirstName), a.LastName, a.Group, bday, locale.Number(a.Rating)))
}

// attendanceMark returns the colour of an attendance level
func attendanceMark(a journal.Absences) string {
	if a.Lessons == 0 {
		return "⚫"
	}
	switch p := a.Attendance(); {
	case p >= 100:
		return "🔵"
	case p >= 80:
		return "🟢"
	case p >= 65:
		return "🟡"
	case p >= 50:
		return "🟠"
	default:
		return "🔴"
	}
}

// averagesText builds the MarkdownV2 list of a student's averages
func averagesText(semester int, averages []journal.Average) string {
	l := locale.Get()
	lines := make([]string, 0, len(averages)+1)
	lines = append(lines, fmt.Sprintf(l.AveragesHeader, semester))
	for _, a := range averages {
		value := "—"
		if a.Count > 0 {
			value = fmt.Sprintf("%.2f", a.Value)
		}
		lines = append(lines, fmt.Sprintf(l.AverageLine, a.Subject, value))
	}
	return notify.EscapeNotFormatting(strings.Join(lines, "\n"))
}

// absencesText builds the MarkdownV2 absence report of a student
func absencesText(semester int, absences []journal.Absences, standing journal.Standing) string {
	l := locale.Get()
	lines := make([]string, 0, len(absences)+1)
	lines = append(lines, fmt.Sprintf(l.AbsencesHeader, semester))
	for _, a := range absences {
		lines = append(lines, fmt.Sprintf(l.AbsenceLine, attendanceMark(a), a.Subject, a.Misses, a.Lessons))
	}
	text := strings.Join(lines, "\n") +
		fmt.Sprintf(l.AbsencesTotal, standing.Misses, standing.Lessons, standing.Attendance, standing.Place)
	return notify.EscapeNotFormatting(text)
}

// scheduleText builds the MarkdownV2 schedule of a day
func scheduleText(s portal.Schedule, now time.Time) string {
	l := locale.Get()
	day := l.Tomorrow
	if y, m, d := now.Date(); s.Date.Year() == y && s.Date.Month() == m && s.Date.Day() == d {
		day = l.Today
	}

	var text string
	switch {
	case s.Holiday != "":
		text = fmt.Sprintf(l.ScheduleHoliday, day, s.Holiday)
	case len(s.Lessons) > 0:
		lines := make([]string, len(s.Lessons))
		for i, lesson := range s.Lessons {
			lines[i] = fmt.Sprintf(l.ScheduleLesson, lesson.Number, lesson.Subject, lesson.Auditory)
			if lesson.Note != "" {
				lines[i] += fmt.Sprintf(l.ScheduleNote, lesson.Note)
			}
		}
		text = fmt.Sprintf(l.ScheduleHeader, strings.ToLower(day), locale.Date(s.Date)) + strings.Join(lines, "\n")
	default:
		text = fmt.Sprintf(l.ScheduleEmpty, day)
	}
	return notify.EscapeNotFormatting(text)
}

// newsText builds the MarkdownV2 list of posts
func newsText(posts []portal.Post, baseURL string) string {
	l := locale.Get()
	items := make([]string, len(posts))
	for i, p := range posts {
		title := l.UntitledPost
		if p.Title != "" {
			title = notify.EscapeNotFormatting(p.Title)
		}
		items[i] = fmt.Sprintf(l.NewsPost,
			notify.EscapeReserved(p.Author), baseURL, p.AuthorID,
			title, baseURL, p.ID,
			notify.EscapeReserved(p.Date), p.Views, p.Likes, p.Comments)
	}
	return strings.Join(items, "\n\n")
}

// studentIDs lists every student with a mark in the subjects, and the given one
func studentIDs(subjects []journal.Subject, self int64) []int64 {
	seen := map[int64]bool{self: true}
	ids := []int64{self}
	for _, s := range subjects {
		for _, m := range s.Marks {
			if !seen[m.StudentID] {
				seen[m.StudentID] = true
				ids = append(ids, m.StudentID)
			}
		}
	}
	return ids
}
