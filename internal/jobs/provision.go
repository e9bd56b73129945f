package jobs

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/autovisit"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
)

// hours remote lessons are looked for in
const (
	provisionFrom  = 9
	provisionUntil = 22
)

// Provision announces today's remote lessons once a day and attends them
// for the users who enabled the autovisit
func (j *Jobs) Provision(ctx context.Context) error {
	logger := log.WithField("job", "Provision")
	now := j.now()
	if now.Hour() < provisionFrom || now.Hour() >= provisionUntil {
		return nil
	}
	sent, err := j.flags.Sent(ctx, notify.CategoryProvision)
	if err != nil || sent {
		return err
	}
	subscribers, err := j.Store.Subscribers(ctx, db.Provision)
	if err != nil || len(subscribers) == 0 {
		return err
	}

	token, err := j.masterToken(ctx)
	if err != nil {
		return err
	}
	sem, err := journal.Semester(j.Group, now)
	if err != nil {
		return err
	}
	provisions, err := j.Portal.RemoteLessons(ctx, token, j.Group, sem, now)
	if err != nil || len(provisions) == 0 {
		return err
	}
	if err = j.flags.MarkSent(ctx, notify.CategoryProvision); err != nil {
		return err
	}

	text := notify.ProvisionText(locale.Get().ProvisionBroadcast, provisions, j.BaseURL)
	result, err := j.pacer.Broadcast(ctx, subscribers, notify.Same(notify.Message{Text: text, Markdown: true, NoPreview: true}))
	if err != nil {
		return err
	}
	logger.Infof("announced remote lessons to %d/%d", result.Sent, len(subscribers))

	return j.autovisit(ctx, autovisit.Hashes(provisions))
}

// autovisit attends the lessons for every user with credentials and reports to them
func (j *Jobs) autovisit(ctx context.Context, hashes []string) error {
	accounts, err := j.Store.Accounts(ctx)
	if err != nil {
		return err
	}
	var ids []int64
	for _, a := range accounts {
		if a.Secret != "" {
			ids = append(ids, a.ChatID)
		}
	}

	result, err := j.pacer.Broadcast(ctx, ids, func(chatID int64) (notify.Message, bool) {
		report, err := j.Visitor.Visit(ctx, chatID, hashes)
		if err != nil {
			log.WithField("UID", chatID).Warn(err)
			return autovisit.FailureMessage(), true
		}
		return j.Visitor.Render(report), true
	})
	if err != nil {
		return err
	}
	log.WithField("job", "Provision").Infof("autovisited for %d users, %d reports failed", len(ids), result.Failed)
	return nil
}
