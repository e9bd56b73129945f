package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralString(t *testing.T) {
	forms := [3]string{"день", "дня", "дней"}
	tests := map[int]string{
		0:   "0 дней",
		1:   "1 день",
		2:   "2 дня",
		4:   "4 дня",
		5:   "5 дней",
		11:  "11 дней",
		14:  "14 дней",
		21:  "21 день",
		22:  "22 дня",
		111: "111 дней",
		101: "101 день",
	}
	for n, want := range tests {
		assert.Equal(t, want, PluralString(n, forms), "n=%d", n)
	}
}

func TestDoubleJoin(t *testing.T) {
	assert.Equal(t, "", DoubleJoin(nil, ", ", " и "))
	assert.Equal(t, "A", DoubleJoin([]string{"A"}, ", ", " и "))
	assert.Equal(t, "A и B", DoubleJoin([]string{"A", "B"}, ", ", " и "))
	assert.Equal(t, "A, B и C", DoubleJoin([]string{"A", "B", "C"}, ", ", " и "))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "00:00:59", Duration(59*time.Second))
	assert.Equal(t, "27:03:04", Duration(27*time.Hour+3*time.Minute+4*time.Second))
}

func TestDates(t *testing.T) {
	d := time.Date(2003, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "5 марта", DayMonth(d))
	assert.Equal(t, "5 марта 2003 г.", DayMonthYear(d))
	assert.Equal(t, "05.03.2003", Date(d))
	assert.Equal(t, "—", Clock(time.Time{}))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "И. Петров", ShortName("Иван", "Петров"))
	assert.Equal(t, ". Петров", ShortName("", "Петров"))
}

func TestZodiac(t *testing.T) {
	tests := []struct {
		month time.Month
		day   int
		want  string
	}{
		{time.March, 21, "♈️"},
		{time.April, 19, "♈️"},
		{time.April, 20, "♉️"},
		{time.December, 21, "♐️"},
		{time.December, 22, "♑️"},
		{time.January, 5, "♑️"},
		{time.January, 20, "♒️"},
		{time.March, 20, "♓️"},
	}
	for _, tt := range tests {
		d := time.Date(2000, tt.month, tt.day, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.want, Zodiac(d), d.Format("01-02"))
	}
}
