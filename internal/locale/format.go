package locale

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// Plural picks the form of a noun agreeing with n,
// forms are the ones for 1, 2 and 5
func Plural(n int, forms [3]string) string {
	n %= 100
	if n < 0 {
		n = -n
	}
	switch {
	case 11 <= n && n <= 19:
		return forms[2]
	case n%10 == 1:
		return forms[0]
	case 2 <= n%10 && n%10 <= 4:
		return forms[1]
	default:
		return forms[2]
	}
}

// PluralString returns n followed by the agreeing form
func PluralString(n int, forms [3]string) string {
	return fmt.Sprintf("%d %s", n, Plural(n, forms))
}

// DoubleJoin joins the elements with sep, except the last two which are joined with lastSep
func DoubleJoin(elems []string, sep, lastSep string) string {
	if len(elems) < 2 {
		return strings.Join(elems, sep)
	}
	return strings.Join(elems[:len(elems)-1], sep) + lastSep + elems[len(elems)-1]
}

// Duration formats d as HH:MM:SS, hours may exceed 24
func Duration(d time.Duration) string {
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// DayMonth formats a date like "5 марта"
func DayMonth(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), monthsGenitive[t.Month()-1])
}

// DayMonthYear formats a date like "5 марта 2003 г."
func DayMonthYear(t time.Time) string {
	return fmt.Sprintf("%s %d г.", DayMonth(t), t.Year())
}

// Date formats a date as DD.MM.YYYY
func Date(t time.Time) string {
	return t.Format("02.01.2006")
}

// Clock formats the time of day, or a dash for the zero time
func Clock(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("15:04:05")
}

// Number formats a float without trailing zeros
func Number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Initial returns the first letter of a name
func Initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// ShortName formats a name like "И. Петров"
func ShortName(firstName, lastName string) string {
	return fmt.Sprintf("%s. %s", Initial(firstName), lastName)
}

var zodiac = []struct {
	sign     string
	from, to string // MM-DD, inclusive start and exclusive end
}{
	{"♈️", "03-21", "04-20"},
	{"♉️", "04-20", "05-21"},
	{"♊️", "05-21", "06-21"},
	{"♋️", "06-21", "07-23"},
	{"♌️", "07-23", "08-23"},
	{"♍️", "08-23", "09-23"},
	{"♎️", "09-23", "10-23"},
	{"♏️", "10-23", "11-23"},
	{"♐️", "11-23", "12-22"},
	{"♒️", "01-20", "02-19"},
	{"♓️", "02-19", "03-21"},
}

// Zodiac returns the zodiac sign of a birthday
func Zodiac(t time.Time) string {
	md := t.Format("01-02")
	for _, z := range zodiac {
		if z.from <= md && md < z.to {
			return z.sign
		}
	}
	// the only sign spanning the new year
	return "♑️"
}
