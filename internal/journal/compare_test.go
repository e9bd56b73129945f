package journal

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestCompare(t *testing.T) {
	type test struct {
		name   string
		before []Mark
		after  []Mark
		want   Comparison
	}
	tests := []test{
		{
			name:   "edited and added",
			before: []Mark{{"01.09", 1, Audit, Score(4)}},
			after:  []Mark{{"01.09", 1, Audit, Score(5)}, {"02.09", 1, Audit, Score(5)}},
			want: Comparison{
				Added:  []Mark{{"02.09", 1, Audit, Score(5)}},
				Edited: []Edit{{"01.09", 1, Audit, Score(4), Score(5)}},
			},
		},
		{
			name:   "unchanged",
			before: []Mark{{"01.09", 1, Audit, Score(4)}, {"01.09", 2, Audit, Absence()}},
			after:  []Mark{{"01.09", 2, Audit, Absence()}, {"01.09", 1, Audit, Score(4)}},
			want:   Comparison{},
		},
		{
			name:   "removed",
			before: []Mark{{"01.09", 1, Audit, Score(4)}, {"03.09", 1, Lecture, Absence()}},
			after:  []Mark{{"01.09", 1, Audit, Score(4)}},
			want: Comparison{
				Removed: []Mark{{"03.09", 1, Lecture, Absence()}},
			},
		},
		{
			name:   "absence replaced by a score",
			before: []Mark{{"05.09", 7, Practice, Absence()}},
			after:  []Mark{{"05.09", 7, Practice, Score(3)}},
			want: Comparison{
				Edited: []Edit{{"05.09", 7, Practice, Absence(), Score(3)}},
			},
		},
		{
			name:   "same date different type is not an edit",
			before: []Mark{{"05.09", 7, Audit, Score(2)}},
			after:  []Mark{{"05.09", 7, Exam, Score(2)}},
			want: Comparison{
				Added:   []Mark{{"05.09", 7, Exam, Score(2)}},
				Removed: []Mark{{"05.09", 7, Audit, Score(2)}},
			},
		},
		{
			name:  "first snapshot",
			after: []Mark{{"01.09", 1, Audit, Score(5)}},
			want: Comparison{
				Added: []Mark{{"01.09", 1, Audit, Score(5)}},
			},
		},
		{
			name:   "duplicate keys take the first match",
			before: []Mark{{"01.09", 1, Audit, Score(2)}},
			after:  []Mark{{"01.09", 1, Audit, Score(3)}, {"01.09", 1, Audit, Score(4)}},
			want: Comparison{
				Added:  []Mark{{"01.09", 1, Audit, Score(4)}},
				Edited: []Edit{{"01.09", 1, Audit, Score(2), Score(3)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.before, tt.after)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestCompare_Completeness(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		before, after := randomMarks(r), randomMarks(r)
		c := Compare(before, after)

		buckets := make(map[Key]string)
		put := func(k Key, bucket string) {
			if prev, ok := buckets[k]; ok {
				t.Fatalf("key %s is both %s and %s", k, prev, bucket)
			}
			buckets[k] = bucket
		}
		for _, m := range c.Added {
			put(m.Key(), "added")
		}
		for _, m := range c.Removed {
			put(m.Key(), "removed")
		}
		for _, e := range c.Edited {
			put(e.Key(), "edited")
		}

		union := make(map[Key]struct{})
		for _, m := range append(before, after...) {
			union[m.Key()] = struct{}{}
		}
		unchanged := len(before) - len(c.Removed) - len(c.Edited)
		if unchanged != len(after)-len(c.Added)-len(c.Edited) {
			t.Fatalf("unchanged counts differ: before %d, after %d, %+v", len(before), len(after), c)
		}
		if got := len(c.Added) + len(c.Removed) + len(c.Edited) + unchanged; got != len(union) {
			t.Fatalf("got %d keys in buckets, want %d", got, len(union))
		}
	}
}

// randomMarks returns a mark list with unique keys drawn from a small domain
func randomMarks(r *rand.Rand) []Mark {
	var marks []Mark
	seen := make(map[Key]bool)
	for n := r.Intn(12); n > 0; n-- {
		m := Mark{
			Date:      fmt.Sprintf("%02d.09", 1+r.Intn(4)),
			StudentID: int64(1 + r.Intn(3)),
			Type:      LessonTypeByIndex(r.Intn(2)),
			Value:     Score(float64(2 + r.Intn(4))),
		}
		if r.Intn(5) == 0 {
			m.Value = Absence()
		}
		if seen[m.Key()] {
			continue
		}
		seen[m.Key()] = true
		marks = append(marks, m)
	}
	return marks
}

func TestValidate(t *testing.T) {
	ok := []Mark{{"01.09", 1, Audit, Score(4)}, {"01.09", 1, Lecture, Score(4)}}
	if err := Validate(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	dup := append(ok, Mark{"01.09", 1, Audit, Score(5)})
	if err := Validate(dup); err == nil {
		t.Error("expected duplicate key error")
	}
}
