/*
Package bot is the Telegram side of the bot: it receives messages by long polling
or through the webhook, routes them through the scenes and sends the replies.
*/
package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/autovisit"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/scene"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/stats"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

// Version is shown in the help message
const Version = "1.4.0"

// DefaultPollTimeout is how long a getUpdates call may block on Telegram's side
const DefaultPollTimeout = 50 * time.Second

// Config represents a configuration for Telegram bot
type Config struct {
	Token         string  `toml:"token"`
	WebhookURL    string  `toml:"webhook_url"`    // long polling is used when empty
	WebhookSecret string  `toml:"webhook_secret"` // checked against the X-Telegram-Bot-Api-Secret-Token header
	PollTimeout   int     `toml:"poll_timeout"`   // seconds
	Group         string  `toml:"group"`          // group whose schedule and remote lessons are shown
	Admins        []int64 `toml:"admins"`
	Testers       []int64 `toml:"testers"`
	Maintenance   bool    `toml:"maintenance"` // only testers are served
}

// Messenger is the part of the Telegram API the bot uses
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Portal is the part of the portal client the handlers use
type Portal interface {
	Profile(ctx context.Context, token string, portalID int64) (portal.Profile, error)
	Schedule(ctx context.Context, token string, now time.Time) (portal.Schedule, error)
	News(ctx context.Context, token string, limit int) ([]portal.Post, error)
	RemoteLessons(ctx context.Context, token, group string, semester int, day time.Time) ([]portal.Provision, error)
}

// Grades provides the journal of a group's semester
type Grades interface {
	Subjects(ctx context.Context, group string, semester int) ([]journal.Subject, error)
}

// Sessions provides valid portal sessions
type Sessions interface {
	EnsureValid(ctx context.Context, id int64) (string, session.Status, error)
}

// Limiter checks how often users may do things
type Limiter interface {
	BotUpdateAllowed(ctx context.Context, chatID int64) bool
	LinkAttemptAllowed(ctx context.Context, chatID int64) bool
	ManualVisitAllowed(ctx context.Context, chatID int64) bool
}

// Services are what the bot talks to
type Services struct {
	Messenger Messenger
	Store     *db.DB
	Limiter   Limiter
	Portal    Portal
	Grades    Grades
	Sessions  Sessions
	Visitor   *autovisit.Visitor
	Stats     *stats.Stats
	BaseURL   string
	Location  *time.Location
}

// Bot represents a Telegram bot
type Bot struct {
	Services
	config  Config
	router  *scene.Router
	pacer   *notify.Pacer
	updates chan tele.Update
	now     func() time.Time

	background sync.WaitGroup
}

// NewTelebot connects to the Telegram Bot API, the updates are received by Bot.Listen
func NewTelebot(config Config) (*tele.Bot, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:       config.Token,
		Synchronous: true,
		Verbose:     log.GetLevel() >= log.TraceLevel, // for debugging only
		OnError: func(err error, c tele.Context) {
			log.Errorf("telebot: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bot: error connecting to Telegram: %w", err)
	}
	return b, nil
}

// New creates a bot, s.Location defaults to the local time zone
func New(config Config, s Services) *Bot {
	if s.Location == nil {
		s.Location = time.Local
	}
	b := &Bot{
		Services: s,
		config:   config,
		updates:  make(chan tele.Update, 100),
	}
	b.pacer = notify.NewPacer(b)
	b.now = func() time.Time { return time.Now().In(b.Location) }
	b.router = scene.NewRouter(s.Store)
	b.router.Register(b.routes()...)
	return b
}

// Listen processes updates one by one until the context is done.
// The source, if any, is started to feed the updates; otherwise they only come from Enqueue.
func (b *Bot) Listen(ctx context.Context, source func(dest chan tele.Update, stop chan struct{})) {
	stop := make(chan struct{})
	defer close(stop)
	if source != nil {
		go source(b.updates, stop)
	}

	log.Info("bot started listening for updates")
	for {
		select {
		case <-ctx.Done():
			log.Info("bot stopped listening for updates")
			return
		case u := <-b.updates:
			b.process(ctx, u)
		}
	}
}

// Enqueue hands an update received by the webhook to the listening loop
func (b *Bot) Enqueue(ctx context.Context, u tele.Update) error {
	select {
	case b.updates <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait waits for the broadcasts started by handlers
func (b *Bot) Wait() {
	b.background.Wait()
}

// process handles a single update, never failing
func (b *Bot) process(ctx context.Context, u tele.Update) {
	b.Stats.Updated(b.now())

	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	logger := log.WithField("UID", chatID)
	b.Stats.Message()

	if b.config.Maintenance && !slices.Contains(b.config.Testers, chatID) {
		if err := b.sendMarkdown(chatID, notify.EscapeNotFormatting(locale.Get().MaintenanceMessage), nil); err != nil {
			logger.Error(err)
		}
		return
	}
	if !b.Limiter.BotUpdateAllowed(ctx, chatID) {
		logger.Info("update rate limited")
		return
	}
	if log.IsLevelEnabled(log.DebugLevel) {
		logger.Debugf("received %q", b.redact(ctx, chatID, msg.Text))
	}

	report, err := b.router.Dispatch(ctx, chatID, msg.Text, msg)
	if err != nil {
		b.Stats.Fault()
		logger.WithField("handlers", report.Fired).Error(err)
		if errors.Is(err, scene.ErrHandlerFault) {
			if _, err = b.Messenger.Send(&tele.Chat{ID: chatID}, locale.Get().SendFailedMessage); err != nil {
				logger.Error(err)
			}
		}
		return
	}
	logger.WithField("handlers", report.Fired).Debugf("now in scene %q", report.Scene)
}

// redact hides the text of a message carrying credentials
func (b *Bot) redact(ctx context.Context, chatID int64, text string) string {
	s, err := b.Store.GetScene(ctx, chatID)
	if err != nil || s == scene.AutovisitAwait {
		return "[REDACTED]"
	}
	return text
}

// Deliver sends a notification, it implements notify.Sender
func (b *Bot) Deliver(_ context.Context, chatID int64, m notify.Message) error {
	opts := &tele.SendOptions{DisableWebPagePreview: m.NoPreview}
	if m.Markdown {
		opts.ParseMode = tele.ModeMarkdownV2
	}
	if _, err := b.Messenger.Send(&tele.Chat{ID: chatID}, m.Text, opts); err != nil {
		return fmt.Errorf("bot: error sending message: %w", err)
	}
	return nil
}

// sendText sends a plain text message with an optional keyboard
func (b *Bot) sendText(chatID int64, text string, keyboard *tele.ReplyMarkup) error {
	_, err := b.Messenger.Send(&tele.Chat{ID: chatID}, text, &tele.SendOptions{ReplyMarkup: keyboard})
	if err != nil {
		return fmt.Errorf("bot: error sending message: %w", err)
	}
	return nil
}

// sendMarkdown sends a MarkdownV2 message without link previews and with an optional keyboard
func (b *Bot) sendMarkdown(chatID int64, text string, keyboard *tele.ReplyMarkup) error {
	_, err := b.Messenger.Send(&tele.Chat{ID: chatID}, text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdownV2,
		DisableWebPagePreview: true,
		ReplyMarkup:           keyboard,
	})
	if err != nil {
		return fmt.Errorf("bot: error sending message: %w", err)
	}
	return nil
}

// isAdmin checks if the chat belongs to an admin of the bot
func (b *Bot) isAdmin(chatID int64) bool {
	return slices.Contains(b.config.Admins, chatID)
}

// masterToken returns a valid session of the bot's own portal account,
// telling the user the portal is unavailable if there is none
func (b *Bot) masterToken(ctx context.Context, chatID int64) (string, bool, error) {
	token, _, err := b.Sessions.EnsureValid(ctx, session.Master)
	if err != nil {
		log.WithField("UID", chatID).Warnf("no master session: %v", err)
		return "", false, b.sendText(chatID, locale.Get().PortalUnavailableMessage, nil)
	}
	return token, true, nil
}
