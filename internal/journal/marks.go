/*
Package journal models the grade book of the portal: subjects, marks and the
comparison of two snapshots of the same subject.
*/
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LessonType represents the kind of lesson a mark was given for
type LessonType string

// lesson types, in the order of the portal's `journal_ltype_N` classes
const (
	Audit    LessonType = "audit"
	Lecture  LessonType = "lecture"
	Practice LessonType = "practice"
	Unknown  LessonType = "unknown"
	Attest   LessonType = "attest"
	Exam     LessonType = "exam"
)

var lessonTypes = []LessonType{Audit, Lecture, Practice, Unknown, Attest, Exam}

// LessonTypeByIndex returns the lesson type with the given portal class index
func LessonTypeByIndex(i int) LessonType {
	if i < 0 || i >= len(lessonTypes) {
		return Unknown
	}
	return lessonTypes[i]
}

// AbsenceText is how the portal writes a missed lesson
const AbsenceText = "Н"

// errors
var (
	ErrInvalidValue = errors.New("journal: invalid mark value")
	ErrDuplicateKey = errors.New("journal: duplicate mark key")
)

// Value represents a mark value: either a numeric score or an absence
type Value struct {
	Score  float64
	Absent bool
}

// Score returns a numeric mark value
func Score(v float64) Value {
	return Value{Score: v}
}

// Absence returns the mark value of a missed lesson
func Absence() Value {
	return Value{Absent: true}
}

// ParseValue parses a mark value as shown in the journal table
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, AbsenceText) {
		return Absence(), nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	return Score(f), nil
}

// String returns the mark as shown in the journal
func (v Value) String() string {
	if v.Absent {
		return AbsenceText
	}
	return strconv.FormatFloat(v.Score, 'f', -1, 64)
}

// MarshalJSON encodes a score as a number and an absence as "Н"
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Absent {
		return json.Marshal(AbsenceText)
	}
	return json.Marshal(v.Score)
}

// UnmarshalJSON decodes either a number or "Н"
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseValue(s)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, data)
	}
	*v = Score(f)
	return nil
}

// Key identifies a mark across snapshots
type Key struct {
	Date      string
	StudentID int64
	Type      LessonType
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Date, k.StudentID, k.Type)
}

// Mark represents a single cell of the journal table
type Mark struct {
	Date      string     `json:"date"` // DD.MM
	StudentID int64      `json:"stud"`
	Type      LessonType `json:"type"`
	Value     Value      `json:"mark"`
}

// Key returns the identity of the mark
func (m Mark) Key() Key {
	return Key{Date: m.Date, StudentID: m.StudentID, Type: m.Type}
}

// Subject represents a snapshot of a subject's journal for one group and semester
type Subject struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	TeacherID   int64  `json:"teacher_id,omitempty"`
	Teacher     string `json:"teacher"`
	Semester    int    `json:"semester"`
	Group       string `json:"group"`
	LessonCount int    `json:"lesson_count"`
	Marks       []Mark `json:"marks"`
}

// Validate checks that no two marks share the same key
func Validate(marks []Mark) error {
	seen := make(map[Key]struct{}, len(marks))
	for _, m := range marks {
		k := m.Key()
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, k)
		}
		seen[k] = struct{}{}
	}
	return nil
}
