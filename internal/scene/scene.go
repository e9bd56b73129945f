/*
Package scene implements the conversation router: every chat has a current scene,
and each inbound message walks an ordered list of handlers that decide from the
scene and the text whether to act.
*/
package scene

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

// Scene represents a chat's current step in a conversation
type Scene string

// None is the scene of a chat that never ran /start
const None Scene = ""

// scenes
const (
	Main             Scene = "main"
	Journal          Scene = "journal"
	Birthdays        Scene = "birthdays"
	Notifications    Scene = "notifs"
	LinkingStart     Scene = "linking_start"
	Linking          Scene = "linking"
	LinkingCancel    Scene = "linking_cancel"
	AutovisitOffline Scene = "autovisit_offline"
	AutovisitAwait   Scene = "autovisit_await"
	AutovisitOnline  Scene = "autovisit_online"
	Admin            Scene = "admin"
	AdminBroadcast   Scene = "admin_broadcast"
)

// ErrHandlerFault is returned by Dispatch when a handler failed or panicked
var ErrHandlerFault = errors.New("scene: handler fault")

// Store holds the current scene of every chat
type Store interface {
	// GetScene returns None if the chat has no scene
	GetScene(ctx context.Context, chatID int64) (Scene, error)
	PutScene(ctx context.Context, chatID int64, s Scene) error
}

// Input represents what a handler sees of an inbound message
type Input struct {
	ChatID  int64
	Text    string
	Scene   Scene // current scene, re-read after a handler returned Reload
	Entry   Scene // scene at the start of the dispatch
	Message *tele.Message
}

// Outcome tells the router what a handler did to the scene
type Outcome int

const (
	Continue Outcome = iota // the scene is unchanged
	Reload                  // the handler changed the scene
)

// Handler represents a single step of a conversation
type Handler interface {
	Name() string
	// Match decides from the scene and the text only whether the handler fires
	Match(in Input) bool
	Handle(ctx context.Context, in Input) (Outcome, error)
}

// Route is a Handler built from functions
type Route struct {
	ID   string
	When func(in Input) bool
	Do   func(ctx context.Context, in Input) (Outcome, error)
}

func (r Route) Name() string {
	return r.ID
}

func (r Route) Match(in Input) bool {
	return r.When(in)
}

func (r Route) Handle(ctx context.Context, in Input) (Outcome, error) {
	return r.Do(ctx, in)
}

// Report represents the result of a dispatch
type Report struct {
	Scene Scene    // scene after the dispatch
	Fired []string // names of the handlers that fired, in order
}

// Router dispatches inbound messages to handlers
type Router struct {
	store    Store
	handlers []Handler
}

// NewRouter creates a router over the given scene store
func NewRouter(store Store) *Router {
	return &Router{store: store}
}

// Register appends handlers to the routing list, the registration order is the evaluation order
func (r *Router) Register(handlers ...Handler) {
	r.handlers = append(r.handlers, handlers...)
}

// Dispatch walks every registered handler once for the message.
// A failing handler ends the walk, the error wraps ErrHandlerFault.
func (r *Router) Dispatch(ctx context.Context, chatID int64, text string, msg *tele.Message) (Report, error) {
	current, err := r.store.GetScene(ctx, chatID)
	if err != nil {
		return Report{}, fmt.Errorf("scene: error getting scene: %w", err)
	}

	in := Input{ChatID: chatID, Text: text, Scene: current, Entry: current, Message: msg}
	report := Report{Scene: current}
	for _, h := range r.handlers {
		if !h.Match(in) {
			continue
		}
		report.Fired = append(report.Fired, h.Name())

		outcome, err := r.handle(ctx, h, in)
		if err != nil {
			return report, err
		}
		if outcome == Reload {
			if in.Scene, err = r.store.GetScene(ctx, chatID); err != nil {
				return report, fmt.Errorf("scene: error getting scene: %w", err)
			}
			report.Scene = in.Scene
		}
	}
	return report, nil
}

// handle runs a handler, converting its errors and panics to ErrHandlerFault
func (r *Router) handle(ctx context.Context, h Handler, in Input) (outcome Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			log.WithField("UID", in.ChatID).Errorf("panic in handler %s: %v\n%s", h.Name(), p, debug.Stack())
			err = fmt.Errorf("%w: %s: panic: %v", ErrHandlerFault, h.Name(), p)
		}
	}()

	outcome, err = h.Handle(ctx, in)
	if err != nil {
		return Continue, fmt.Errorf("%w: %s: %w", ErrHandlerFault, h.Name(), err)
	}
	return outcome, nil
}
