package jobs

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
)

// birthdaysFrom is the hour greetings may be sent from
const birthdaysFrom = 8

const birthdayLayout = "2006-01-02"

// celebrant represents a linked user whose birthday is today
type celebrant struct {
	Name string
	Age  int
}

// celebrants returns the linked users born on the day of now
func celebrants(accounts []db.Account, now time.Time) []celebrant {
	var result []celebrant
	for _, a := range accounts {
		date, err := time.Parse(birthdayLayout, a.Birthday)
		if err != nil || date.Month() != now.Month() || date.Day() != now.Day() {
			continue
		}
		result = append(result, celebrant{Name: a.FullName(), Age: now.Year() - date.Year()})
	}
	return result
}

// birthdayIcon picks the icon of the greeting
func birthdayIcon(now time.Time) string {
	l := locale.Get()
	if now.Month() == time.December && now.Day() == 6 {
		return l.BirthdayIconSpecial
	}
	return l.BirthdayIcons[rand.N(len(l.BirthdayIcons))]
}

// birthdayText builds the greeting of one or more celebrants
func birthdayText(icon string, cs []celebrant) string {
	l := locale.Get()
	if len(cs) == 1 {
		return fmt.Sprintf(l.BirthdaySingle, icon, cs[0].Age, cs[0].Name)
	}
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = fmt.Sprintf("%s (%s)", c.Name, locale.PluralString(c.Age, l.BirthdayAgeForms))
	}
	return fmt.Sprintf(l.BirthdayMultiple, icon, locale.DoubleJoin(names, ", ", " и "))
}

// Birthdays greets today's celebrants once a day, not before the morning
func (j *Jobs) Birthdays(ctx context.Context) error {
	now := j.now()
	if now.Hour() < birthdaysFrom {
		return nil
	}
	sent, err := j.flags.Sent(ctx, notify.CategoryBirthdays)
	if err != nil || sent {
		return err
	}

	subscribers, err := j.Store.Subscribers(ctx, db.Birthdays)
	if err != nil || len(subscribers) == 0 {
		return err
	}
	accounts, err := j.Store.Accounts(ctx)
	if err != nil {
		return err
	}
	cs := celebrants(accounts, now)
	if len(cs) == 0 {
		return nil
	}

	msg := notify.Message{Text: birthdayText(birthdayIcon(now), cs)}
	result, err := j.pacer.Broadcast(ctx, subscribers, notify.Same(msg))
	if err != nil {
		return err
	}
	log.WithField("job", "Birthdays").Infof("greeted %d celebrants, sent to %d/%d", len(cs), result.Sent, len(subscribers))
	return j.flags.MarkSent(ctx, notify.CategoryBirthdays)
}
