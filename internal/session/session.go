/*
Package session keeps portal sessions alive: it probes the stored session token
of an identity and logs in again with the known credentials when the portal no
longer accepts it.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/secret"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

// Master is the identity of the bot's own portal session.
// Telegram never uses 0 as a chat ID.
const Master int64 = 0

// DefaultRetryDelay is how long to wait before retrying a failed master login
const DefaultRetryDelay = 10 * time.Second

// errors
var (
	ErrNoCredentials      = errors.New("session: no credentials")
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	ErrUnavailable        = errors.New("session: portal unavailable")
)

// Status represents the outcome of EnsureValid
type Status int

const (
	Failed    Status = iota // no usable session
	Fresh                   // the stored session is still accepted
	Refreshed               // a new session was obtained and stored
)

func (s Status) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Refreshed:
		return "refreshed"
	default:
		return "failed"
	}
}

// Store holds the current session token of every identity
type Store interface {
	// GetSession returns an empty string if the identity has no session
	GetSession(ctx context.Context, id int64) (string, error)
	PutSession(ctx context.Context, id int64, token string) error
}

// Accounts looks up the portal side of a linked identity
type Accounts interface {
	// GetCredentials returns the portal ID and the credential secret of a linked
	// identity, the secret is empty if the user never gave their credentials
	GetCredentials(ctx context.Context, id int64) (portalID int64, secret string, err error)
}

// Portal is the part of the portal client the manager needs
type Portal interface {
	CheckSession(ctx context.Context, token string, portalID int64) error
	Login(ctx context.Context, login, password string) (string, error)
}

// Config represents the master session configuration
type Config struct {
	Login    string `toml:"login"`
	Password string `toml:"password"`
	SelfID   int64  `toml:"self_id"` // portal ID of the master account
}

// Manager ensures identities hold a session token accepted by the portal
type Manager struct {
	store      Store
	accounts   Accounts
	portal     Portal
	master     Config
	retryDelay time.Duration

	retryPending atomic.Bool
	retryTimer   atomic.Pointer[time.Timer]
	closed       atomic.Bool
}

// Option configures a Manager
type Option func(*Manager)

// WithRetryDelay sets the delay before a failed master login is retried
func WithRetryDelay(d time.Duration) Option {
	return func(m *Manager) { m.retryDelay = d }
}

// NewManager creates a session manager
func NewManager(store Store, accounts Accounts, p Portal, master Config, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		accounts:   accounts,
		portal:     p,
		master:     master,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureValid returns a session token of the identity accepted by the portal,
// logging in again if the stored one has expired.
// Concurrent calls for the same identity may both log in, the last stored token wins.
func (m *Manager) EnsureValid(ctx context.Context, id int64) (string, Status, error) {
	logger := log.WithField("UID", id)

	token, err := m.store.GetSession(ctx, id)
	if err != nil {
		return "", Failed, fmt.Errorf("session: error getting session: %w", err)
	}

	portalID, login, password, credErr := m.credentials(ctx, id)
	if credErr != nil && !errors.Is(credErr, ErrNoCredentials) {
		return "", Failed, credErr
	}

	if token != "" {
		err = m.portal.CheckSession(ctx, token, portalID)
		switch {
		case err == nil:
			return token, Fresh, nil
		case !errors.Is(err, portal.ErrAuthExpired):
			logger.Warnf("failed to check session: %v", err)
			return "", Failed, ErrUnavailable
		}
		logger.Debug("session expired")
	}

	if credErr != nil {
		return "", Failed, credErr
	}

	token, err = m.portal.Login(ctx, login, password)
	if err != nil {
		logger.Warnf("failed to login: %v", err)
		if id == Master {
			m.scheduleRetry()
		}
		if errors.Is(err, portal.ErrLoginRejected) {
			return "", Failed, ErrInvalidCredentials
		}
		return "", Failed, ErrUnavailable
	}

	if err = m.store.PutSession(ctx, id, token); err != nil {
		return "", Failed, fmt.Errorf("session: error putting session: %w", err)
	}
	logger.Info("session refreshed")
	return token, Refreshed, nil
}

// credentials returns the portal ID and the login credentials of the identity
func (m *Manager) credentials(ctx context.Context, id int64) (portalID int64, login, password string, err error) {
	if id == Master {
		if m.master.Login == "" {
			return m.master.SelfID, "", "", ErrNoCredentials
		}
		return m.master.SelfID, m.master.Login, m.master.Password, nil
	}

	portalID, s, err := m.accounts.GetCredentials(ctx, id)
	if err != nil {
		return 0, "", "", fmt.Errorf("session: error getting credentials: %w", err)
	}
	if s == "" {
		return portalID, "", "", ErrNoCredentials
	}
	login, password, err = secret.Decode(s)
	if err != nil {
		return portalID, "", "", ErrInvalidCredentials
	}
	return portalID, login, password, nil
}

// scheduleRetry retries the master login after the retry delay,
// unless a retry is already pending
func (m *Manager) scheduleRetry() {
	if m.closed.Load() || !m.retryPending.CompareAndSwap(false, true) {
		return
	}
	log.Infof("next master login attempt in %s", m.retryDelay)
	m.retryTimer.Store(time.AfterFunc(m.retryDelay, func() {
		m.retryPending.Store(false)
		if m.closed.Load() {
			return
		}
		if _, _, err := m.EnsureValid(context.Background(), Master); err != nil {
			log.Errorf("master login retry failed: %v", err)
		}
	}))
}

// Close cancels a pending master login retry, no retry is scheduled afterwards
func (m *Manager) Close() {
	m.closed.Store(true)
	if t := m.retryTimer.Load(); t != nil {
		t.Stop()
	}
}
