package journal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testSubjects = []Subject{
	{
		ID:          2,
		Name:        "Физика",
		LessonCount: 4,
		Marks: []Mark{
			{"01.09", 1, Audit, Score(5)},
			{"02.09", 1, Audit, Score(4)},
			{"03.09", 1, Audit, Absence()},
			{"04.09", 1, Lecture, Score(2)},
			{"01.09", 2, Audit, Absence()},
			{"02.09", 2, Audit, Absence()},
		},
	},
	{
		ID:          1,
		Name:        "Алгебра",
		LessonCount: 6,
		Marks: []Mark{
			{"01.09", 1, Audit, Score(0)},
			{"01.09", 2, Audit, Score(3)},
			{"02.09", 3, Audit, Absence()},
		},
	},
}

func TestAverages(t *testing.T) {
	want := []Average{
		{Subject: "Алгебра"},
		{Subject: "Физика", Value: 4.5, Count: 2},
	}
	if diff := cmp.Diff(want, Averages(testSubjects, 1)); diff != "" {
		t.Error(diff)
	}
}

func TestSubjectAbsences(t *testing.T) {
	want := []Absences{
		{Subject: "Алгебра", Misses: 0, Lessons: 6},
		{Subject: "Физика", Misses: 2, Lessons: 4},
	}
	if diff := cmp.Diff(want, SubjectAbsences(testSubjects, 2)); diff != "" {
		t.Error(diff)
	}
}

func TestStandings(t *testing.T) {
	// 1 and 3 both missed one of ten lessons and share the first place
	want := []Standing{
		{StudentID: 1, Misses: 1, Lessons: 10, Attendance: 90, Place: 1},
		{StudentID: 3, Misses: 1, Lessons: 10, Attendance: 90, Place: 1},
		{StudentID: 2, Misses: 2, Lessons: 10, Attendance: 80, Place: 2},
	}
	if diff := cmp.Diff(want, Standings(testSubjects, []int64{1, 2, 3})); diff != "" {
		t.Error(diff)
	}
}

func TestAttendance(t *testing.T) {
	for _, tt := range []struct {
		misses, lessons int
		want            float64
	}{
		{0, 0, 100},
		{0, 8, 100},
		{2, 8, 75},
		{8, 8, 0},
	} {
		if got := Attendance(tt.misses, tt.lessons); got != tt.want {
			t.Errorf("Attendance(%d, %d) = %v, want %v", tt.misses, tt.lessons, got, tt.want)
		}
	}
}
