package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/scene"
)

// denied tells a non-admin they may not use the admin tools
func (b *Bot) denied(i scene.Input) (bool, error) {
	if b.isAdmin(i.ChatID) {
		return false, nil
	}
	log.WithField("UID", i.ChatID).Warn("admin access denied")
	return true, b.sendText(i.ChatID, locale.Get().AccessDeniedMessage, nil)
}

func (b *Bot) adminMenu(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	if denied, err := b.denied(i); denied {
		return scene.Continue, err
	}
	return b.moveTo(ctx, i.ChatID, scene.Admin, locale.Get().AdminMenuMessage, false, adminKeyboard())
}

// on button or command `/broadcast`
func (b *Bot) broadcastStart(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	if denied, err := b.denied(i); denied {
		return scene.Continue, err
	}
	n, err := b.Store.CountScenes(ctx)
	if err != nil {
		return scene.Continue, err
	}
	text := fmt.Sprintf(l.BroadcastStartMessage, locale.PluralString(int(n), l.ActiveUserForms))
	return b.moveTo(ctx, i.ChatID, scene.AdminBroadcast, text, false, cancelKeyboard())
}

// broadcastSend sends the admin's MarkdownV2 text to every chat in the background
func (b *Bot) broadcastSend(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	if denied, err := b.denied(i); denied {
		return scene.Continue, err
	}
	if i.Text == l.ButtonCancel {
		return b.moveTo(ctx, i.ChatID, scene.Admin, l.BroadcastCancelMessage, false, adminKeyboard())
	}

	ids, err := b.Store.SceneChatIDs(ctx)
	if err != nil {
		return scene.Continue, err
	}
	msg := notify.Message{Text: notify.EscapeNotFormatting(i.Text) + l.BroadcastFooter, Markdown: true, NoPreview: true}
	if err = b.Store.PutScene(ctx, i.ChatID, scene.Admin); err != nil {
		return scene.Continue, err
	}

	adminID := i.ChatID
	ctx = context.WithoutCancel(ctx)
	b.background.Add(1)
	go func() {
		defer b.background.Done()
		logger := log.WithField("UID", adminID)

		result, err := b.pacer.Broadcast(ctx, ids, notify.Same(msg))
		if err != nil {
			logger.Errorf("broadcast interrupted: %v", err)
		}
		logger.Infof("broadcast sent to %d chats, %d failed", result.Sent, result.Failed)
		if err = b.sendText(adminID, l.BroadcastSentMessage, adminKeyboard()); err != nil {
			logger.Error(err)
		}
	}()
	return scene.Continue, nil
}

// on button or command `/stats`
func (b *Bot) stats(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	if denied, err := b.denied(i); denied {
		return scene.Continue, err
	}
	users, err := b.Store.CountScenes(ctx)
	if err != nil {
		return scene.Continue, err
	}
	subs, err := b.Store.CountSubscribers(ctx)
	if err != nil {
		return scene.Continue, err
	}

	snap := b.Stats.Snapshot(b.now())
	text := fmt.Sprintf(locale.Get().StatsMessage,
		locale.Duration(snap.Uptime), users, snap.Messages, snap.Faults,
		clock(snap.LastUpdate, b.Location), clock(snap.LastJournal, b.Location),
		subs[db.Birthdays], subs[db.Marks], subs[db.Misses], subs[db.Provision])
	return scene.Continue, b.sendMarkdown(i.ChatID, notify.EscapeNotFormatting(text), nil)
}

// clock formats the time of day in the location, keeping the zero time zero
func clock(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return locale.Clock(t)
	}
	return locale.Clock(t.In(loc))
}
