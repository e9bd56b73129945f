package journal

import (
	"slices"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Average represents a student's average audit score in a subject
type Average struct {
	Subject string
	Value   float64
	Count   int // number of marks counted, 0 means there is no average
}

// Averages returns the student's average audit scores per subject, ignoring
// absences and zero scores, ordered by subject name
func Averages(subjects []Subject, studentID int64) []Average {
	result := make([]Average, 0, len(subjects))
	for _, s := range subjects {
		a := Average{Subject: s.Name}
		var total float64
		for _, m := range s.Marks {
			if m.StudentID != studentID || m.Type != Audit || m.Value.Absent || m.Value.Score == 0 {
				continue
			}
			total += m.Value.Score
			a.Count++
		}
		if a.Count > 0 {
			a.Value = total / float64(a.Count)
		}
		result = append(result, a)
	}

	c := collate.New(language.Russian)
	slices.SortFunc(result, func(a, b Average) int { return c.CompareString(a.Subject, b.Subject) })
	return result
}

// Absences represents the missed lessons of a student in a subject
type Absences struct {
	Subject string
	Misses  int
	Lessons int
}

// Attendance returns the share of attended lessons in percent
func (a Absences) Attendance() float64 {
	return Attendance(a.Misses, a.Lessons)
}

// Attendance returns the share of attended lessons in percent,
// 100 when no lessons took place yet
func Attendance(misses, lessons int) float64 {
	if lessons == 0 {
		return 100
	}
	return 100 - float64(misses)/float64(lessons)*100
}

// SubjectAbsences returns the student's missed lessons per subject, ordered by subject name
func SubjectAbsences(subjects []Subject, studentID int64) []Absences {
	result := make([]Absences, 0, len(subjects))
	for _, s := range subjects {
		result = append(result, Absences{
			Subject: s.Name,
			Misses:  countAbsences(s, studentID),
			Lessons: s.LessonCount,
		})
	}

	c := collate.New(language.Russian)
	slices.SortFunc(result, func(a, b Absences) int { return c.CompareString(a.Subject, b.Subject) })
	return result
}

// Standing represents a student's attendance over a whole semester
type Standing struct {
	StudentID  int64
	Misses     int
	Lessons    int
	Attendance float64
	Place      int // dense rank, starting from 1
}

// Standings ranks the given students by their attendance over all subjects.
// Students with equal attendance share a place and the next place follows without a gap.
func Standings(subjects []Subject, studentIDs []int64) []Standing {
	result := make([]Standing, 0, len(studentIDs))
	for _, id := range studentIDs {
		st := Standing{StudentID: id}
		for _, s := range subjects {
			st.Misses += countAbsences(s, id)
			st.Lessons += s.LessonCount
		}
		st.Attendance = Attendance(st.Misses, st.Lessons)
		result = append(result, st)
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Attendance > result[j].Attendance })
	for i := range result {
		switch {
		case i == 0:
			result[i].Place = 1
		case result[i].Attendance == result[i-1].Attendance:
			result[i].Place = result[i-1].Place
		default:
			result[i].Place = result[i-1].Place + 1
		}
	}
	return result
}

func countAbsences(s Subject, studentID int64) (n int) {
	for _, m := range s.Marks {
		if m.StudentID == studentID && m.Value.Absent {
			n++
		}
	}
	return
}
