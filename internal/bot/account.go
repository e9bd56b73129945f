package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/autovisit"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/scene"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/secret"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

var profileLinkRegexp = regexp.MustCompile(`(?:\bhttps://ies\.unitech-mo\.ru/user)?\?userid=(\d+)\b`)

// parseProfileLink extracts the portal ID from a profile link
func parseProfileLink(text string) (int64, bool) {
	m := profileLinkRegexp.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (b *Bot) linkingStart(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	if i.Text == l.ButtonNo {
		return b.moveTo(ctx, i.ChatID, scene.Main, l.LinkingDeclinedMessage, false, mainKeyboard(b.isAdmin(i.ChatID)))
	}
	return b.moveTo(ctx, i.ChatID, scene.Linking, notify.EscapeNotFormatting(l.LinkingGuideMessage), true, cancelKeyboard())
}

func (b *Bot) linking(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	logger := log.WithField("UID", i.ChatID)

	if i.Text == l.ButtonCancel {
		return b.moveTo(ctx, i.ChatID, scene.Main, l.LinkingDeclinedMessage, false, mainKeyboard(b.isAdmin(i.ChatID)))
	}
	if !b.Limiter.LinkAttemptAllowed(ctx, i.ChatID) {
		return scene.Continue, b.sendText(i.ChatID, l.LinkingTooFastMessage, nil)
	}
	portalID, ok := parseProfileLink(i.Text)
	if !ok {
		return scene.Continue, b.sendText(i.ChatID, l.LinkingInvalidMessage, nil)
	}

	token, _, err := b.Sessions.EnsureValid(ctx, session.Master)
	if err != nil {
		logger.Warnf("no master session: %v", err)
		return scene.Continue, b.sendText(i.ChatID, l.LinkingPortalDown, nil)
	}
	p, err := b.Portal.Profile(ctx, token, portalID)
	switch {
	case errors.Is(err, portal.ErrParse):
		return scene.Continue, b.sendText(i.ChatID, l.LinkingInvalidMessage, nil)
	case err != nil:
		logger.Warnf("failed to get profile %d: %v", portalID, err)
		return scene.Continue, b.sendText(i.ChatID, l.LinkingPortalDown, nil)
	}

	a := db.AccountFromProfile(i.ChatID, p)
	if err = b.Store.Link(ctx, a); err != nil {
		if errors.Is(err, db.ErrAlreadyLinked) {
			logger.Infof("portal profile %d is linked to another chat", portalID)
			return scene.Continue, b.sendText(i.ChatID, l.LinkingTakenMessage, nil)
		}
		return scene.Continue, err
	}
	logger.Infof("linked to portal profile %d", portalID)

	text := fmt.Sprintf(l.LinkedMessage, a.FirstName, a.LastName, a.Group)
	return b.moveTo(ctx, i.ChatID, scene.Main, text, false, mainKeyboard(b.isAdmin(i.ChatID)))
}

func (b *Bot) unlinkStart(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	return b.moveTo(ctx, i.ChatID, scene.LinkingCancel, locale.Get().UnlinkConfirmMessage, false, yesNoKeyboard())
}

func (b *Bot) unlink(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	if i.Text == l.ButtonNo {
		return b.moveTo(ctx, i.ChatID, scene.Journal, l.UnlinkDeclinedMessage, false, journalKeyboard())
	}

	a, err := b.Store.Unlink(ctx, i.ChatID)
	if err != nil && !errors.Is(err, db.ErrAccountNotFound) {
		return scene.Continue, err
	}
	log.WithField("UID", i.ChatID).Infof("unlinked from portal profile %d", a.PortalID)

	text := fmt.Sprintf(l.UnlinkedMessage, a.FirstName, a.LastName, a.Group)
	return b.moveTo(ctx, i.ChatID, scene.Main, text, false, mainKeyboard(b.isAdmin(i.ChatID)))
}

func (b *Bot) autovisitMenu(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	a, ok, err := b.linkedAccount(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	if a.Secret != "" {
		return b.moveTo(ctx, i.ChatID, scene.AutovisitOnline, l.AutovisitOnlineMessage, false, autovisitKeyboard())
	}
	return b.moveTo(ctx, i.ChatID, scene.AutovisitOffline, l.AutovisitOfferMessage, false, yesNoKeyboard())
}

func (b *Bot) autovisitOffer(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	if i.Text == l.ButtonNo {
		return b.moveTo(ctx, i.ChatID, scene.Main, l.AutovisitDeclinedMessage, false, mainKeyboard(b.isAdmin(i.ChatID)))
	}
	return b.moveTo(ctx, i.ChatID, scene.AutovisitAwait, notify.EscapeNotFormatting(l.AutovisitAskMessage), true, cancelKeyboard())
}

// parseCredentials reads a login and a password separated by whitespace,
// possibly wrapped in code formatting
func parseCredentials(text string) (login, password string, ok bool) {
	fields := strings.Fields(strings.ReplaceAll(text, "`", ""))
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

func (b *Bot) autovisitCredentials(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	logger := log.WithField("UID", i.ChatID)

	if i.Message != nil {
		if err := b.Messenger.Delete(i.Message); err != nil {
			logger.Warnf("failed to delete credentials message: %v", err)
		}
	}
	if i.Text == l.ButtonCancel {
		return b.moveTo(ctx, i.ChatID, scene.Main, l.AutovisitCancelMessage, false, mainKeyboard(b.isAdmin(i.ChatID)))
	}

	a, ok, err := b.linkedAccount(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	login, password, ok := parseCredentials(i.Text)
	if !ok {
		return scene.Continue, b.sendText(i.ChatID, l.AutovisitRejectedMessage, nil)
	}
	if a.Secret, err = secret.Encode(login, password); err != nil {
		return scene.Continue, err
	}
	a.Session = ""
	if err = b.Store.PutAccount(ctx, a); err != nil {
		return scene.Continue, err
	}

	_, _, err = b.Sessions.EnsureValid(ctx, i.ChatID)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		logger.Info("autovisit credentials rejected")
		a.Secret = ""
		if err = b.Store.PutAccount(ctx, a); err != nil {
			return scene.Continue, err
		}
		return scene.Continue, b.sendText(i.ChatID, l.AutovisitRejectedMessage, nil)
	case err != nil:
		// kept, they are checked again on the next run
		logger.Warnf("could not check autovisit credentials: %v", err)
	}
	logger.Info("autovisit enabled")
	return b.moveTo(ctx, i.ChatID, scene.AutovisitOnline, l.AutovisitOnlineMessage, false, autovisitKeyboard())
}

func (b *Bot) autovisitDisable(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	a, ok, err := b.linkedAccount(ctx, i.ChatID)
	if !ok {
		return scene.Continue, err
	}
	a.Secret, a.Session = "", ""
	if err = b.Store.PutAccount(ctx, a); err != nil {
		return scene.Continue, err
	}
	log.WithField("UID", i.ChatID).Info("autovisit disabled")
	return b.moveTo(ctx, i.ChatID, scene.Main, l.AutovisitDisabledMessage, false, mainKeyboard(b.isAdmin(i.ChatID)))
}

func (b *Bot) autovisitManual(ctx context.Context, i scene.Input) (scene.Outcome, error) {
	l := locale.Get()
	if !b.Limiter.ManualVisitAllowed(ctx, i.ChatID) {
		return scene.Continue, b.sendText(i.ChatID, l.RateLimitedMessage, nil)
	}
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
	hashes := autovisit.Hashes(provisions)
	if len(hashes) == 0 {
		return scene.Continue, b.sendText(i.ChatID, l.AutovisitNoLessons, nil)
	}

	report, err := b.Visitor.Visit(ctx, i.ChatID, hashes)
	if err != nil {
		log.WithField("UID", i.ChatID).Warn(err)
		return scene.Continue, b.Deliver(ctx, i.ChatID, autovisit.FailureMessage())
	}
	return scene.Continue, b.Deliver(ctx, i.ChatID, b.Visitor.Render(report))
}
