package bot

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/scene"
)

// newsLimit is how many posts the news button shows
const newsLimit = 5

// linkedAccount returns the account of the chat, offering to link one if there is none
func (b *Bot) linkedAccount(ctx context.Context, chatID int64) (db.Account, bool, error) {
	a, err := b.Store.GetAccount(ctx, chatID)
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, db.ErrAccountNotFound) {
		return db.Account{}, false, err
	}

	if err = b.sendText(chatID, locale.Get().NotLinkedMessage, yesNoKeyboard()); err != nil {
		return db.Account{}, false, err
	}
	return db.Account{}, false, b.Store.PutScene(ctx, chatID, scene.LinkingStart)
}

// subjects returns the journal of the account's current semester
func (b *Bot) subjects(ctx context.Context, a db.Account) (int, []journal.Subject, bool, error) {
	sem, err := journal.Semester(a.Group, b.now())
	if err != nil {
		return 0, nil, false, err
	}
	subjects, err := b.Grades.Subjects(ctx, a.Group, sem)
	if err != nil {
		log.WithField("UID", a.ChatID).Warnf("failed to get journal: %v", err)
		return 0, nil, false, b.sendText(a.ChatID, locale.Get().PortalUnavailableMessage, nil)
	}
	return sem, subjects, true, nil
}

func (b *Bot) journalMenu(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	a, ok, err := b.linkedAccount(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	return b.moveTo(ctx, i.ChatID, scene.Journal, profileText(locale.Get().JournalMenuMessage, a), true, journalKeyboard())
}

func (b *Bot) refreshProfile(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	a, ok, err := b.linkedAccount(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	token, ok, err := b.masterToken(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}

	p, err := b.Portal.Profile(ctx, token, a.PortalID)
	if err != nil {
		log.WithField("UID", i.ChatID).Warnf("failed to refresh profile: %v", err)
		return scene.Continue, b.sendText(i.ChatID, locale.Get().PortalUnavailableMessage, nil)
	}
	a.SetProfile(p)
	if err = b.Store.PutAccount(ctx, a); err != nil {
		return scene.Continue, err
	}
	return scene.Continue, b.sendMarkdown(i.ChatID, profileText(locale.Get().ProfileRefreshedMessage, a), nil)
}

// on button or command `/semavg`
func (b *Bot) averages(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	a, ok, err := b.linkedAccount(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	sem, subjects, ok, err := b.subjects(ctx, a)
	if !ok {
		return scene.Continue, err
	}
	return scene.Continue, b.sendMarkdown(i.ChatID, averagesText(sem, journal.Averages(subjects, a.PortalID)), nil)
}

// on button or command `/absences`
func (b *Bot) absences(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	a, ok, err := b.linkedAccount(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	sem, subjects, ok, err := b.subjects(ctx, a)
	if !ok {
		return scene.Continue, err
	}

	standing := journal.Standing{StudentID: a.PortalID, Attendance: 100, Place: 1}
	for _, s := range journal.Standings(subjects, studentIDs(subjects, a.PortalID)) {
		if s.StudentID == a.PortalID {
			standing = s
			break
		}
	}
	text := absencesText(sem, journal.SubjectAbsences(subjects, a.PortalID), standing)
	return scene.Continue, b.sendMarkdown(i.ChatID, text, nil)
}

// on button or command `/schedule`
func (b *Bot) schedule(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	token, ok, err := b.masterToken(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	now := b.now()
	s, err := b.Portal.Schedule(ctx, token, now)
	if err != nil {
		log.WithField("UID", i.ChatID).Warnf("failed to get schedule: %v", err)
		return scene.Continue, b.sendText(i.ChatID, locale.Get().PortalUnavailableMessage, nil)
	}
	return scene.Continue, b.sendMarkdown(i.ChatID, scheduleText(s, now), nil)
}

func (b *Bot) news(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	token, ok, err := b.masterToken(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	posts, err := b.Portal.News(ctx, token, newsLimit)
	if err != nil {
		log.WithField("UID", i.ChatID).Warnf("failed to get news: %v", err)
		return scene.Continue, b.sendText(i.ChatID, locale.Get().PortalUnavailableMessage, nil)
	}
	if len(posts) == 0 {
		return scene.Continue, b.sendText(i.ChatID, locale.Get().NoNewsMessage, nil)
	}
	return scene.Continue, b.sendMarkdown(i.ChatID, newsText(posts, b.BaseURL), nil)
}

// on button or command `/provision`
func (b *Bot) provision(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	token, ok, err := b.masterToken(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}

	now := b.now()
	sem, err := journal.Semester(b.config.Group, now)
	if err != nil {
		return scene.Continue, err
	}
	provisions, err := b.Portal.RemoteLessons(ctx, token, b.config.Group, sem, now)
	if err != nil {
		log.WithField("UID", i.ChatID).Warnf("failed to get remote lessons: %v", err)
		return scene.Continue, b.sendText(i.ChatID, l.PortalUnavailableMessage, nil)
	}
	if len(provisions) == 0 {
		return scene.Continue, b.sendText(i.ChatID, l.ProvisionEmpty, nil)
	}

	header := fmt.Sprintf(l.ProvisionHeader, notify.EscapeReserved(locale.Date(now)))
	return scene.Continue, b.sendMarkdown(i.ChatID, notify.ProvisionText(header, provisions, b.BaseURL), nil)
}

func (b *Bot) links(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	a, ok, err := b.linkedAccount(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	sem, err := journal.Semester(a.Group, b.now())
	if err != nil {
		return scene.Continue, err
	}
	return scene.Continue, b.sendMarkdown(i.ChatID, fmt.Sprintf(locale.Get().LinksMessage, b.BaseURL, a.PortalID, sem), nil)
}
