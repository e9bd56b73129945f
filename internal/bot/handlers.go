package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/scene"
)

// nearestBirthdaysCount is how many birthdays the birthday menu lists
const nearestBirthdaysCount = 5

// in returns a guard matching the scene and one of the texts
func in(s scene.Scene, texts ...string) func(scene.Input) bool {
	return func(i scene.Input) bool {
		return i.Scene == s && slices.Contains(texts, i.Text)
	}
}

// command returns a guard matching a command in any scene
func command(name string) func(scene.Input) bool {
	return func(i scene.Input) bool {
		return i.Text == "/"+name
	}
}

// either combines guards
func either(guards ...func(scene.Input) bool) func(scene.Input) bool {
	return func(i scene.Input) bool {
		for _, g := range guards {
			if g(i) {
				return true
			}
		}
		return false
	}
}

// awaiting returns a guard matching any text but commands in the scene
func awaiting(s scene.Scene) func(scene.Input) bool {
	return func(i scene.Input) bool {
		return i.Scene == s && !strings.HasPrefix(i.Text, "/")
	}
}

// routes lists every handler in the order they are evaluated
func (b *Bot) routes() []scene.Handler {
	l := locale.Get()
	yesNo := []string{l.ButtonYes, l.ButtonNo}

	return []scene.Handler{
		scene.Route{ID: "start", When: command("start"), Do: b.start},
		scene.Route{ID: "back", When: b.isBack, Do: b.back},
		scene.Route{ID: "main_menu", When: func(i scene.Input) bool {
			return i.Scene == scene.Main && i.Entry != scene.Main && i.Text == l.ButtonBack
		}, Do: b.mainMenu},
		scene.Route{ID: "birthdays_menu", When: in(scene.Main, l.ButtonBirthdays), Do: b.birthdaysMenu},
		scene.Route{ID: "birthdays_command", When: command("birthdays"), Do: b.birthdaysCommand},
		scene.Route{ID: "season", When: b.isSeason, Do: b.season},
		scene.Route{ID: "notifications_menu", When: in(scene.Main, l.ButtonNotifications), Do: b.notificationsMenu},
		scene.Route{ID: "toggle", When: b.isToggle, Do: b.toggle},
		scene.Route{ID: "averages", When: either(in(scene.Journal, l.ButtonAverages), command("semavg")), Do: b.averages},
		scene.Route{ID: "absences", When: either(in(scene.Journal, l.ButtonAbsences), command("absences")), Do: b.absences},
		scene.Route{ID: "journal_menu", When: in(scene.Main, l.ButtonJournal), Do: b.journalMenu},
		scene.Route{ID: "refresh_profile", When: in(scene.Journal, l.ButtonRefresh), Do: b.refreshProfile},
		scene.Route{ID: "schedule", When: either(in(scene.Journal, l.ButtonSchedule), command("schedule")), Do: b.schedule},
		scene.Route{ID: "news", When: in(scene.Journal, l.ButtonNews), Do: b.news},
		scene.Route{ID: "provision", When: either(in(scene.Journal, l.ButtonProvision), command("provision")), Do: b.provision},
		scene.Route{ID: "links", When: in(scene.Journal, l.ButtonLinks), Do: b.links},
		scene.Route{ID: "autovisit_menu", When: in(scene.Main, l.ButtonAutovisit), Do: b.autovisitMenu},
		scene.Route{ID: "status", When: command("status"), Do: b.status},
		scene.Route{ID: "help", When: either(in(scene.Main, l.ButtonHelp), command("help")), Do: b.help},
		scene.Route{ID: "linking_start", When: in(scene.LinkingStart, yesNo...), Do: b.linkingStart},
		scene.Route{ID: "linking", When: awaiting(scene.Linking), Do: b.linking},
		scene.Route{ID: "unlink_start", When: in(scene.Journal, l.ButtonUnlink), Do: b.unlinkStart},
		scene.Route{ID: "unlink", When: in(scene.LinkingCancel, yesNo...), Do: b.unlink},
		scene.Route{ID: "autovisit_offer", When: in(scene.AutovisitOffline, yesNo...), Do: b.autovisitOffer},
		scene.Route{ID: "autovisit_credentials", When: awaiting(scene.AutovisitAwait), Do: b.autovisitCredentials},
		scene.Route{ID: "autovisit_disable", When: in(scene.AutovisitOnline, l.ButtonVisitOff), Do: b.autovisitDisable},
		scene.Route{ID: "autovisit_manual", When: in(scene.AutovisitOnline, l.ButtonVisitManual), Do: b.autovisitManual},
		scene.Route{ID: "admin_menu", When: in(scene.Main, l.ButtonAdmin), Do: b.adminMenu},
		scene.Route{ID: "broadcast_start", When: either(in(scene.Admin, l.ButtonBroadcast), command("broadcast")), Do: b.broadcastStart},
		scene.Route{ID: "broadcast_send", When: awaiting(scene.AdminBroadcast), Do: b.broadcastSend},
		scene.Route{ID: "stats", When: either(in(scene.Admin, l.ButtonStats), command("stats")), Do: b.stats},
	}
}

// moveTo sends a message with a keyboard and moves the chat to the scene.
// Later handlers of the same dispatch keep seeing the scene they started with.
func (b *Bot) moveTo(ctx context.Context, chatID int64, s scene.Scene, text string, markdown bool, kb *tele.ReplyMarkup) (scene.Outcome, error) {
	var err error
	if markdown {
		err = b.sendMarkdown(chatID, text, kb)
	} else {
		err = b.sendText(chatID, text, kb)
	}
	if err != nil {
		return scene.Continue, err
	}
	return scene.Continue, b.Store.PutScene(ctx, chatID, s)
}

// on command `/start`
func (b *Bot) start(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	return b.moveTo(ctx, i.ChatID, scene.Main, locale.Get().MainMenuMessage, false, mainKeyboard(b.isAdmin(i.ChatID)))
}

// returnTo maps the scenes with a back button to where it leads
var returnTo = map[scene.Scene]scene.Scene{
	scene.Journal:         scene.Main,
	scene.Admin:           scene.Main,
	scene.Notifications:   scene.Main,
	scene.Birthdays:       scene.Main,
	scene.AutovisitOnline: scene.Main,
}

func (b *Bot) isBack(i scene.Input) bool {
	_, ok := returnTo[i.Scene]
	return ok && i.Text == locale.Get().ButtonBack
}

// back only moves the chat, the menu of the new scene replies.
// It is the one handler whose scene change the later handlers see.
func (b *Bot) back(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	return scene.Reload, b.Store.PutScene(ctx, i.ChatID, returnTo[i.Scene])
}

func (b *Bot) mainMenu(_ context.Context, i scene.Input) (scene.Outcome, error) {
	return scene.Continue, b.sendText(i.ChatID, locale.Get().MainMenuMessage, mainKeyboard(b.isAdmin(i.ChatID)))
}

func (b *Bot) birthdaysMenu(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	accounts, err := b.Store.Accounts(ctx)
	if err != nil {
		return scene.Continue, err
	}
	text := birthdaysText(nearestBirthdays(accounts, b.now(), nearestBirthdaysCount), locale.Get().NearestBirthdaysFooter)
	return b.moveTo(ctx, i.ChatID, scene.Birthdays, text, true, seasonsKeyboard())
}

// on command `/birthdays`
func (b *Bot) birthdaysCommand(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	accounts, err := b.Store.Accounts(ctx)
	if err != nil {
		return scene.Continue, err
	}
	text := birthdaysText(nearestBirthdays(accounts, b.now(), nearestBirthdaysCount), "")
	return scene.Continue, b.sendMarkdown(i.ChatID, text, nil)
}

// seasonOf returns the season whose button the text is
func seasonOf(text string) (locale.Season, bool) {
	for _, s := range locale.Get().Seasons {
		if s.Button() == text {
			return s, true
		}
	}
	return locale.Season{}, false
}

func (b *Bot) isSeason(i scene.Input) bool {
	_, ok := seasonOf(i.Text)
	return ok && i.Scene == scene.Birthdays
}

func (b *Bot) season(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	s, _ := seasonOf(i.Text)
	accounts, err := b.Store.Accounts(ctx)
	if err != nil {
		return scene.Continue, err
	}
	return scene.Continue, b.sendMarkdown(i.ChatID, seasonText(accounts, s), nil)
}

func (b *Bot) notificationsMenu(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	subs, err := b.Store.Subscriptions(ctx, i.ChatID)
	if err != nil {
		return scene.Continue, err
	}
	return b.moveTo(ctx, i.ChatID, scene.Notifications, locale.Get().NotificationsMenuMessage, false, notificationsKeyboard(subs))
}

// categoryOf returns the category whose toggle the text is
func categoryOf(text string) (db.Category, string, bool) {
	for n, label := range locale.Get().NotificationLabels {
		if text == toggleButton(label, true) || text == toggleButton(label, false) {
			return db.Categories[n], label, true
		}
	}
	return "", "", false
}

func (b *Bot) isToggle(i scene.Input) bool {
	_, _, ok := categoryOf(i.Text)
	return ok && i.Scene == scene.Notifications
}

func (b *Bot) toggle(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	c, label, _ := categoryOf(i.Text)
	on, err := b.Store.Toggle(ctx, c, i.ChatID)
	if err != nil {
		return scene.Continue, err
	}
	subs, err := b.Store.Subscriptions(ctx, i.ChatID)
	if err != nil {
		return scene.Continue, err
	}

	format := l.ToggledOffMessage
	if on {
		format = l.ToggledOnMessage
	}
	return scene.Continue, b.sendText(i.ChatID, fmt.Sprintf(format, label), notificationsKeyboard(subs))
}

// on command `/status`
func (b *Bot) status(_ context.Context, i scene.Input) (scene.Outcome, error) {
	return scene.Continue, b.sendText(i.ChatID, locale.Get().StatusMessage, nil)
}

// on command `/help`
func (b *Bot) help(_ context.Context, i scene.Input) (scene.Outcome, error) {
	text := fmt.Sprintf(locale.Get().HelpMessage, notify.EscapeReserved(Version))
	return scene.Continue, b.sendMarkdown(i.ChatID, text, nil)
}
