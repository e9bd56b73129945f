package bot

import (
	tele "gopkg.in/telebot.v3"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
)

// keyboard builds a resized reply keyboard with the given rows of buttons
func keyboard(rows ...[]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	rs := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		btns := make([]tele.Btn, 0, len(row))
		for _, text := range row {
			btns = append(btns, m.Text(text))
		}
		rs = append(rs, m.Row(btns...))
	}
	m.Reply(rs...)
	return m
}

func mainKeyboard(admin bool) *tele.ReplyMarkup {
	l := locale.Get()
	last := []string{l.ButtonHelp}
	if admin {
		last = append(last, l.ButtonAdmin)
	}
	return keyboard(
		[]string{l.ButtonJournal, l.ButtonBirthdays},
		[]string{l.ButtonNotifications, l.ButtonAutovisit},
		last,
	)
}

func journalKeyboard() *tele.ReplyMarkup {
	l := locale.Get()
	return keyboard(
		[]string{l.ButtonBack, l.ButtonRefresh},
		[]string{l.ButtonAverages, l.ButtonAbsences},
		[]string{l.ButtonSchedule, l.ButtonProvision},
		[]string{l.ButtonNews, l.ButtonLinks},
		[]string{l.ButtonUnlink},
	)
}

func autovisitKeyboard() *tele.ReplyMarkup {
	l := locale.Get()
	return keyboard(
		[]string{l.ButtonBack, l.ButtonVisitOff},
		[]string{l.ButtonVisitManual},
	)
}

func seasonsKeyboard() *tele.ReplyMarkup {
	l := locale.Get()
	s := l.Seasons
	return keyboard(
		[]string{s[0].Button(), s[1].Button()},
		[]string{s[2].Button(), s[3].Button()},
		[]string{l.ButtonBack},
	)
}

func adminKeyboard() *tele.ReplyMarkup {
	l := locale.Get()
	return keyboard(
		[]string{l.ButtonBroadcast, l.ButtonStats},
		[]string{l.ButtonBack},
	)
}

func yesNoKeyboard() *tele.ReplyMarkup {
	l := locale.Get()
	return keyboard([]string{l.ButtonYes, l.ButtonNo})
}

func cancelKeyboard() *tele.ReplyMarkup {
	return keyboard([]string{locale.Get().ButtonCancel})
}

// toggleButton returns the text of a notification toggle showing its state
func toggleButton(label string, on bool) string {
	if on {
		return "🔔 " + label
	}
	return "🔕 " + label
}

// notificationsKeyboard shows a toggle for every category
func notificationsKeyboard(subs map[db.Category]bool) *tele.ReplyMarkup {
	l := locale.Get()
	btns := make([]string, len(db.Categories))
	for i, c := range db.Categories {
		btns[i] = toggleButton(l.NotificationLabels[i], subs[c])
	}
	return keyboard(
		[]string{btns[0], btns[1]},
		[]string{btns[2], btns[3]},
		[]string{l.ButtonBack},
	)
}
