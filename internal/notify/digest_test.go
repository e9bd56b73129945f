package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
)

func TestDigest_Render(t *testing.T) {
	d := NewDigest()
	assert.True(t, d.Empty())

	d.Add("Физика", journal.Compare(
		[]journal.Mark{{Date: "01.09", StudentID: 1, Type: journal.Audit, Value: journal.Score(4)}},
		[]journal.Mark{
			{Date: "01.09", StudentID: 1, Type: journal.Audit, Value: journal.Score(5)},
			{Date: "02.09", StudentID: 1, Type: journal.Audit, Value: journal.Score(5)},
		},
	))
	d.Add("Алгебра", journal.Comparison{
		Added: []journal.Mark{
			{Date: "03.09", StudentID: 1, Type: journal.Lecture, Value: journal.Absence()},
			{Date: "03.09", StudentID: 3, Type: journal.Audit, Value: journal.Absence()},
		},
		Removed: []journal.Mark{{Date: "04.09", StudentID: 1, Type: journal.Exam, Value: journal.Score(3.5)}},
	})
	assert.False(t, d.Empty())

	physics := `*Физика:*` + "\n" +
		`💙 5 за занятие от 02\.09` + "\n" +
		`💙 4 → 5 за занятие от 01\.09`

	got, ok := d.Render(1, false)
	assert.True(t, ok)
	assert.Equal(t, `*✏ Новости из журнала\!*`+"\n"+
		`*Алгебра:*`+"\n"+`❌ 3\.5 убрана за экзамен от 04\.09`+"\n\n"+physics, got)

	got, ok = d.Render(1, true)
	assert.True(t, ok)
	assert.Equal(t, `*✏ Новости из журнала\!*`+"\n"+
		`*Алгебра:*`+"\n"+`🌚 Н за лекцию от 03\.09`+"\n"+`❌ 3\.5 убрана за экзамен от 04\.09`+"\n\n"+physics, got)

	// a digest made only of absences is not sent to those who did not ask for them
	_, ok = d.Render(3, false)
	assert.False(t, ok)
	_, ok = d.Render(3, true)
	assert.True(t, ok)

	_, ok = d.Render(2, true)
	assert.False(t, ok)
}

func TestMarkEmoji(t *testing.T) {
	for _, tt := range []struct {
		v    journal.Value
		want string
	}{
		{journal.Score(1), "❤️"},
		{journal.Score(4.5), "💚"},
		{journal.Score(5), "💙"},
		{journal.Score(0), "🖤"},
		{journal.Score(10), "🖤"},
		{journal.Absence(), "🌚"},
	} {
		assert.Equal(t, tt.want, MarkEmoji(tt.v), tt.v.String())
	}
}

func TestEditedLine_Absence(t *testing.T) {
	toAbsence := EditedLine(journal.Edit{Date: "01.09", StudentID: 1, Type: journal.Practice, Before: journal.Score(5), After: journal.Absence()})
	assert.Equal(t, Line{Text: "🌚 5 → Н за практику от 01.09", Absence: true}, toAbsence)

	fromAbsence := EditedLine(journal.Edit{Date: "01.09", StudentID: 1, Type: journal.Attest, Before: journal.Absence(), After: journal.Score(2)})
	assert.Equal(t, Line{Text: "🧡 Н → 2 за аттестацию от 01.09"}, fromAbsence)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `*Оценка\!* 4\.5 \(хорошо\) \- _да_`, EscapeNotFormatting(`*Оценка!* 4.5 (хорошо) - _да_`))
	assert.Equal(t, `\*Оценка\!\* 4\.5 \(хорошо\) \- \_да\_`, EscapeReserved(`*Оценка!* 4.5 (хорошо) - _да_`))
	assert.Equal(t, `*Физика\|Химия* C:\\Docs`, EscapeNotFormatting(`*Физика|Химия* C:\Docs`))
}

func TestDigest_RenderEscapesPipeAndBackslash(t *testing.T) {
	d := NewDigest()
	d.Add(`Физика | Химия \ лаб`, journal.Comparison{Added: []journal.Mark{{
		Date: "10.03", StudentID: 7, Type: journal.Practice, Value: journal.Score(5),
	}}})

	text, ok := d.Render(7, false)
	require.True(t, ok)
	assert.Contains(t, text, `*Физика \| Химия \\ лаб:*`)
}
