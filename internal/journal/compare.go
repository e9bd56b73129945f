package journal

import "slices"

// Edit represents a mark whose value changed between two snapshots
type Edit struct {
	Date      string
	StudentID int64
	Type      LessonType
	Before    Value
	After     Value
}

// Key returns the identity of the edited mark
func (e Edit) Key() Key {
	return Key{Date: e.Date, StudentID: e.StudentID, Type: e.Type}
}

// Comparison represents the result of comparing two snapshots of the same subject
type Comparison struct {
	Added   []Mark
	Removed []Mark
	Edited  []Edit
}

// Empty reports whether nothing changed
func (c Comparison) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Edited) == 0
}

// Compare compares two mark lists of the same subject.
// Marks present unchanged in both lists are dropped first, then the leftovers
// sharing a key are paired up as edits; if several share a key the first one wins.
func Compare(before, after []Mark) Comparison {
	removed := subtract(before, after)
	added := subtract(after, before)

	var edited []Edit
	for i := 0; i < len(removed); {
		r := removed[i]
		j := slices.IndexFunc(added, func(a Mark) bool { return a.Key() == r.Key() })
		if j < 0 {
			i++
			continue
		}
		edited = append(edited, Edit{
			Date:      r.Date,
			StudentID: r.StudentID,
			Type:      r.Type,
			Before:    r.Value,
			After:     added[j].Value,
		})
		added = slices.Delete(added, j, j+1)
		removed = slices.Delete(removed, i, i+1)
	}

	return Comparison{Added: added, Removed: removed, Edited: edited}
}

// subtract returns the marks of a that are not present in b
func subtract(a, b []Mark) []Mark {
	present := make(map[Mark]struct{}, len(b))
	for _, m := range b {
		present[m] = struct{}{}
	}

	var result []Mark
	for _, m := range a {
		if _, ok := present[m]; !ok {
			result = append(result, m)
		}
	}
	return result
}
