package jobs

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
)

// hours the journal is checked in
const (
	journalFrom  = 9
	journalUntil = 23
)

// Journal compares the journals of the subscribers' groups with their snapshots
// and sends every grade subscriber the changes concerning them.
// The first snapshot of a subject is a baseline and notifies nobody.
func (j *Jobs) Journal(ctx context.Context) error {
	logger := log.WithField("job", "Journal")
	now := j.now()
	if now.Hour() < journalFrom || now.Hour() >= journalUntil {
		return nil
	}

	marks, err := j.Store.Subscribers(ctx, db.Marks)
	if err != nil || len(marks) == 0 {
		return err
	}
	misses, err := j.Store.Subscribers(ctx, db.Misses)
	if err != nil {
		return err
	}
	accounts, err := j.Store.Accounts(ctx)
	if err != nil {
		return err
	}

	byChat := make(map[int64]db.Account, len(accounts))
	for _, a := range accounts {
		byChat[a.ChatID] = a
	}
	var groups []string
	seen := make(map[string]bool)
	for _, id := range append(append([]int64{}, marks...), misses...) {
		a, ok := byChat[id]
		if !ok || seen[a.Group] {
			continue
		}
		seen[a.Group] = true
		groups = append(groups, a.Group)
	}
	if len(groups) == 0 {
		return nil
	}

	token, err := j.masterToken(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	digest := notify.NewDigest()
	for _, group := range groups {
		if err = j.checkGroup(ctx, token, group, now, digest); err != nil {
			logger.WithField("group", group).Error(err)
		}
	}
	j.Stats.JournalChecked(now)
	logger.Debugf("checked %d groups in %s", len(groups), time.Since(start))
	if digest.Empty() {
		return nil
	}

	withAbsences := make(map[int64]bool, len(misses))
	for _, id := range misses {
		withAbsences[id] = true
	}
	result, err := j.pacer.Broadcast(ctx, marks, func(chatID int64) (notify.Message, bool) {
		a, ok := byChat[chatID]
		if !ok {
			return notify.Message{}, false
		}
		text, ok := digest.Render(a.PortalID, withAbsences[chatID])
		return notify.Message{Text: text, Markdown: true}, ok
	})
	if err != nil {
		return err
	}
	logger.Infof("sent %d digests, %d failed", result.Sent, result.Failed)
	return nil
}

// checkGroup refreshes the snapshots of a group's current semester, recording the changes
func (j *Jobs) checkGroup(ctx context.Context, token, group string, now time.Time, digest *notify.Digest) error {
	sem, err := journal.Semester(group, now)
	if err != nil {
		return err
	}
	ids := j.Gradebook.subjects.IDs(group, sem)
	if len(ids) == 0 {
		log.WithField("job", "Journal").Warnf("no subjects configured for %s in semester %d", group, sem)
		return nil
	}

	cached, err := j.Store.GetSnapshots(ctx, group, sem)
	if err != nil {
		return err
	}
	fetched, invalid := j.Gradebook.fetch(ctx, token, group, sem, ids)
	for _, s := range fetched {
		j.duplicatesWarned.Delete(s.ID)
		if old, ok := cached[s.ID]; ok {
			digest.Add(s.Name, journal.Compare(old.Marks, s.Marks))
		}
		if err = j.Store.PutSnapshot(ctx, s); err != nil {
			return err
		}
	}
	for _, s := range invalid {
		j.warnDuplicates(ctx, s)
	}
	return nil
}

// warnDuplicates tells the admins once that a subject is skipped for its duplicate marks,
// until the subject passes the check again
func (j *Jobs) warnDuplicates(ctx context.Context, s journal.Subject) {
	if _, warned := j.duplicatesWarned.LoadOrStore(s.ID, true); warned {
		return
	}
	msg := notify.Message{Text: fmt.Sprintf(locale.Get().DuplicateMarksMessage, s.Name, s.ID, s.Group)}
	result, err := j.pacer.Broadcast(ctx, j.Admins, notify.Same(msg))
	if err != nil || result.Sent == 0 {
		// warn again on the next check
		j.duplicatesWarned.Delete(s.ID)
	}
	if err != nil {
		log.WithField("job", "Journal").Error(err)
	}
}
