package jobs

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
)

// maxConcurrentFetches caps the journal pages requested at once
const maxConcurrentFetches = 4

// Subjects maps a group to the portal IDs of its subjects, one list per semester
type Subjects map[string][][]int64

// IDs returns the subjects of a group's semester
func (s Subjects) IDs(group string, semester int) []int64 {
	semesters := s[group]
	if semester < 1 || semester > len(semesters) {
		return nil
	}
	return semesters[semester-1]
}

// Gradebook keeps the journal snapshots of the configured subjects
type Gradebook struct {
	store    *db.DB
	portal   Portal
	sessions Sessions
	subjects Subjects
}

// NewGradebook creates a gradebook of the given subjects
func NewGradebook(store *db.DB, p Portal, sessions Sessions, subjects Subjects) *Gradebook {
	return &Gradebook{store: store, portal: p, sessions: sessions, subjects: subjects}
}

// fetch downloads the journals of the subjects concurrently.
// A subject that fails to download or holds duplicate marks is logged and left out,
// the ones left out for duplicate marks are returned too.
func (g *Gradebook) fetch(ctx context.Context, token, group string, semester int, ids []int64) ([]journal.Subject, []journal.Subject) {
	logger := log.WithField("group", group)
	fetched := make([]journal.Subject, len(ids))
	ok := make([]bool, len(ids))
	duplicated := make([]bool, len(ids))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentFetches)
	for i, id := range ids {
		eg.Go(func() error {
			s, err := g.portal.Grades(ctx, token, group, id, semester)
			if err != nil {
				logger.Warnf("failed to get journal of subject %d: %v", id, err)
				return nil
			}
			if err = journal.Validate(s.Marks); err != nil {
				logger.Errorf("skipping journal of subject %d: %v", id, err)
				fetched[i], duplicated[i] = s, true
				return nil
			}
			fetched[i], ok[i] = s, true
			return nil
		})
	}
	_ = eg.Wait()

	var valid, invalid []journal.Subject
	for i, s := range fetched {
		switch {
		case ok[i]:
			valid = append(valid, s)
		case duplicated[i]:
			invalid = append(invalid, s)
		}
	}
	return valid, invalid
}

// Subjects returns the journal of a group's semester from the snapshots,
// downloading the subjects that have none yet
func (g *Gradebook) Subjects(ctx context.Context, group string, semester int) ([]journal.Subject, error) {
	cached, err := g.store.GetSnapshots(ctx, group, semester)
	if err != nil {
		return nil, fmt.Errorf("jobs: error getting snapshots: %w", err)
	}

	ids := g.subjects.IDs(group, semester)
	var missing []int64
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		token, _, err := g.sessions.EnsureValid(ctx, session.Master)
		if err != nil {
			if len(missing) == len(ids) {
				return nil, fmt.Errorf("jobs: error getting master session: %w", err)
			}
			log.Warnf("serving a partial journal of %s: %v", group, err)
		} else {
			fetched, _ := g.fetch(ctx, token, group, semester, missing)
			for _, s := range fetched {
				if err = g.store.PutSnapshot(ctx, s); err != nil {
					return nil, fmt.Errorf("jobs: error putting snapshot: %w", err)
				}
				cached[s.ID] = s
			}
		}
	}

	result := make([]journal.Subject, 0, len(cached))
	for _, id := range ids {
		if s, ok := cached[id]; ok {
			result = append(result, s)
		}
	}
	if len(ids) == 0 {
		for _, s := range cached {
			result = append(result, s)
		}
	}
	if len(result) == 0 && len(ids) > 0 {
		return nil, errors.New("jobs: no journal available")
	}
	return result, nil
}
