package notify

import (
	"context"
	"fmt"
	"time"
)

// categories of the notifications sent at most once a day
const (
	CategoryBirthdays = "bdays"
	CategoryProvision = "provision"
)

const dayLayout = "2006-01-02"

// FlagStore persists the day a category was last sent
type FlagStore interface {
	// GetFlag returns an empty string if the category was never sent
	GetFlag(ctx context.Context, category string) (string, error)
	PutFlag(ctx context.Context, category, day string) error
}

// Flags remembers which daily notifications were sent today.
// A flag holds the calendar day it was set on, so it resets by itself at local midnight.
type Flags struct {
	store FlagStore
	now   func() time.Time
}

// NewFlags creates a registry whose days follow the given clock's location
func NewFlags(store FlagStore, now func() time.Time) *Flags {
	if now == nil {
		now = time.Now
	}
	return &Flags{store: store, now: now}
}

// Sent reports whether the category was sent today
func (f *Flags) Sent(ctx context.Context, category string) (bool, error) {
	day, err := f.store.GetFlag(ctx, category)
	if err != nil {
		return false, fmt.Errorf("notify: error getting flag %s: %w", category, err)
	}
	return day == f.now().Format(dayLayout), nil
}

// MarkSent records that the category was sent today
func (f *Flags) MarkSent(ctx context.Context, category string) error {
	if err := f.store.PutFlag(ctx, category, f.now().Format(dayLayout)); err != nil {
		return fmt.Errorf("notify: error putting flag %s: %w", category, err)
	}
	return nil
}
