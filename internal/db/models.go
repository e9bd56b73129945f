package db

import (
	"errors"
	"fmt"

	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

// Account represents a chat linked to a portal profile
type Account struct {
	ChatID    int64   `json:"-"`
	PortalID  int64   `json:"p"`
	FirstName string  `json:"f"`
	LastName  string  `json:"l"`
	Birthday  string  `json:"b,omitempty"` // YYYY-MM-DD
	Group     string  `json:"g"`
	Avatar    string  `json:"a,omitempty"`
	Rating    float64 `json:"r,omitempty"`
	Secret    string  `json:"s,omitempty"` // encoded portal credentials for the autovisit
	Session   string  `json:"t,omitempty"` // portal session token
}

// AccountFromProfile creates an account of a chat from a portal profile
func AccountFromProfile(chatID int64, p portal.Profile) Account {
	a := Account{ChatID: chatID}
	a.SetProfile(p)
	return a
}

// SetProfile updates the fields mirrored from the portal profile
func (a *Account) SetProfile(p portal.Profile) {
	a.PortalID = p.ID
	a.FirstName = p.FirstName
	a.LastName = p.LastName
	a.Birthday = p.Birthday
	a.Group = p.Group
	a.Avatar = p.Avatar
	a.Rating = p.Rating
}

// FullName returns the first and the last name
func (a Account) FullName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

// Category represents a kind of notification a chat may subscribe to
type Category string

// notification categories
const (
	Birthdays Category = "bdays"
	Provision Category = "provision"
	Marks     Category = "marks"
	Misses    Category = "misses"
)

// Categories lists every category in the order they are shown
var Categories = []Category{Birthdays, Provision, Marks, Misses}

// errors
var (
	ErrAccountNotFound = errors.New("db: account not found")
	ErrAlreadyLinked   = errors.New("db: portal profile already linked")
)
