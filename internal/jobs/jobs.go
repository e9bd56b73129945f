/*
Package jobs runs the bot's background checks: birthday greetings, the journal
digest, today's remote lessons with the autovisit and the heartbeat.
*/
package jobs

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/autovisit"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/locale"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/stats"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

// DefaultTimezone is where the group studies
const DefaultTimezone = "Europe/Moscow"

// default schedules, the hours the jobs may act in are checked by the jobs
const (
	DefaultBirthdaysCron = "* * * * *"
	DefaultJournalCron   = "*/10 * * * *"
	DefaultProvisionCron = "*/10 * * * *"
	DefaultHeartbeatCron = "* * * * *"
)

// HeartbeatTimeout is how long without a getUpdates round-trip is worth a warning
const HeartbeatTimeout = 5 * time.Minute

// Config represents a configuration for the jobs
type Config struct {
	Timezone      string   `toml:"timezone"`
	BirthdaysCron string   `toml:"birthdays_cron"`
	JournalCron   string   `toml:"journal_cron"`
	ProvisionCron string   `toml:"provision_cron"`
	HeartbeatCron string   `toml:"heartbeat_cron"`
	Subjects      Subjects `toml:"subjects"`
}

// Portal is the part of the portal client the jobs use
type Portal interface {
	Grades(ctx context.Context, token, group string, subjectID int64, semester int) (journal.Subject, error)
	RemoteLessons(ctx context.Context, token, group string, semester int, day time.Time) ([]portal.Provision, error)
}

// Sessions provides valid portal sessions
type Sessions interface {
	EnsureValid(ctx context.Context, id int64) (string, session.Status, error)
}

// Services are what the jobs talk to
type Services struct {
	Store     *db.DB
	Portal    Portal
	Sessions  Sessions
	Gradebook *Gradebook
	Visitor   *autovisit.Visitor
	Sender    notify.Sender
	Stats     *stats.Stats
	Group     string  // group whose remote lessons are announced
	Admins    []int64 // chats warned when something is wrong
	BaseURL   string
	Polling   bool // updates come from the long poller, whose round-trips the heartbeat watches
}

// Jobs represents the scheduled background jobs
type Jobs struct {
	Services
	config    Config
	location  *time.Location
	now       func() time.Time
	pacer     *notify.Pacer
	flags     *notify.Flags
	scheduler *gocron.Scheduler

	heartbeatWarned  atomic.Bool
	masterWarned     atomic.Bool
	duplicatesWarned sync.Map // subject ID -> true
}

// New creates the jobs, they run once Start is called
func New(config Config, s Services) (*Jobs, error) {
	if config.Timezone == "" {
		config.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("jobs: error loading timezone: %w", err)
	}

	j := &Jobs{
		Services: s,
		config:   config,
		location: loc,
		pacer:    notify.NewPacer(s.Sender),
	}
	j.now = func() time.Time { return time.Now().In(j.location) }
	j.flags = notify.NewFlags(s.Store, func() time.Time { return j.now() })
	return j, nil
}

// Start schedules the jobs, they stop when the context is done
func (j *Jobs) Start(ctx context.Context) error {
	j.scheduler = gocron.NewScheduler(j.location)
	j.scheduler.SingletonModeAll()

	type entry struct {
		name string
		cron string
		def  string
		run  func(context.Context) error
	}
	jobs := []entry{
		{"Birthdays", j.config.BirthdaysCron, DefaultBirthdaysCron, j.Birthdays},
		{"Journal", j.config.JournalCron, DefaultJournalCron, j.Journal},
		{"Provision", j.config.ProvisionCron, DefaultProvisionCron, j.Provision},
	}
	if j.Polling { // a webhook only hears from Telegram when users write
		jobs = append(jobs, entry{"Heartbeat", j.config.HeartbeatCron, DefaultHeartbeatCron, j.Heartbeat})
	}
	for _, job := range jobs {
		exp := job.cron
		if exp == "" {
			exp = job.def
		}
		_, err := j.scheduler.Cron(exp).Tag(job.name).Do(j.run, ctx, job.name, job.run)
		if err != nil {
			return fmt.Errorf("jobs: error scheduling %s: %w", job.name, err)
		}
	}

	j.scheduler.StartAsync()
	go func() {
		<-ctx.Done()
		j.scheduler.Stop()
	}()
	return nil
}

// run runs a job, logging its error or panic
func (j *Jobs) run(ctx context.Context, name string, job func(context.Context) error) {
	logger := log.WithField("job", name)
	defer func() {
		if p := recover(); p != nil {
			logger.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()

	start := time.Now()
	if err := job(ctx); err != nil {
		logger.Error(err)
		return
	}
	logger.Tracef("done in %s", time.Since(start))
}

// masterToken returns a valid master session, warning the admins once
// when the portal rejects the bot's own credentials
func (j *Jobs) masterToken(ctx context.Context) (string, error) {
	token, _, err := j.Sessions.EnsureValid(ctx, session.Master)
	if err == nil {
		j.masterWarned.Store(false)
		return token, nil
	}
	if errors.Is(err, session.ErrInvalidCredentials) && !j.masterWarned.Swap(true) {
		msg := notify.Message{Text: locale.Get().MasterLoginFailed}
		if _, berr := j.pacer.Broadcast(ctx, j.Admins, notify.Same(msg)); berr != nil {
			log.Error(berr)
		}
	}
	return "", fmt.Errorf("jobs: error getting master session: %w", err)
}

// Heartbeat warns the admins once when the long poller has not completed a round-trip for a while
func (j *Jobs) Heartbeat(ctx context.Context) error {
	snap := j.Stats.Snapshot(j.now())
	if j.now().Sub(snap.LastUpdate) < HeartbeatTimeout {
		j.heartbeatWarned.Store(false)
		return nil
	}
	if j.heartbeatWarned.Swap(true) {
		return nil
	}

	log.WithField("job", "Heartbeat").Warnf("last poll completed at %s, bot is down?", snap.LastUpdate)
	result, err := j.pacer.Broadcast(ctx, j.Admins, notify.Same(notify.Message{Text: locale.Get().HeartbeatMessage}))
	if err != nil {
		return err
	}
	if result.Sent == 0 {
		// warn again on the next run
		j.heartbeatWarned.Store(false)
	}
	return nil
}
