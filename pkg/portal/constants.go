package portal

import (
	"errors"
)

// DefaultBaseURL is the address of the college portal
const DefaultBaseURL = "https://ies.unitech-mo.ru"

// endpoints
const (
	authPath         = "/auth"
	userPath         = "/user"
	ratingPath       = "/get_user_rating"
	journalPath      = "/journal"
	schedulePath     = "/schedule"
	postsPath        = "/posts"
	provisionPath    = "/remote_provision"
	translationPath  = "/translation_show"
	sessionCookie    = "ft_sess_common"
	portalDateLayout = "02.01.2006"
)

// errors
var (
	ErrNetwork       = errors.New("portal: network failure")
	ErrAuthExpired   = errors.New("portal: session expired")
	ErrLoginRejected = errors.New("portal: login rejected")
	ErrVisitRejected = errors.New("portal: visit rejected")
	ErrParse         = errors.New("portal: unexpected page layout")
)
