package journal

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// MaxSemester is the last semester of the programme
const MaxSemester = 7

var (
	ErrUnknownGroup = errors.New("journal: unknown group format")

	groupRegexp = regexp.MustCompile(`[\p{L}\d]+-(\d{2})`)
)

// Semester returns the current semester of a group named like "П1-20",
// where the suffix is the year the group started
func Semester(group string, now time.Time) (int, error) {
	m := groupRegexp.FindStringSubmatch(group)
	if m == nil {
		return 0, ErrUnknownGroup
	}
	yy, _ := strconv.Atoi(m[1])

	sem := (now.Year() - (2000 + yy)) * 2
	if now.Month() >= time.August {
		sem++
	}
	return max(1, min(sem, MaxSemester)), nil
}
