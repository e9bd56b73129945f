/*
Package locale holds the bot's Russian texts and the helpers formatting numbers
and dates the way they are written in them.
*/
package locale

import tele "gopkg.in/telebot.v3"

// Locale represents a group of texts shown to users
type Locale struct {
	// buttons
	ButtonBack          string
	ButtonCancel        string
	ButtonYes           string
	ButtonNo            string
	ButtonJournal       string
	ButtonBirthdays     string
	ButtonNotifications string
	ButtonAutovisit     string
	ButtonHelp          string
	ButtonAdmin         string
	ButtonRefresh       string
	ButtonAverages      string
	ButtonAbsences      string
	ButtonSchedule      string
	ButtonProvision     string
	ButtonNews          string
	ButtonLinks         string
	ButtonUnlink        string
	ButtonVisitOff      string
	ButtonVisitManual   string
	ButtonBroadcast     string
	ButtonStats         string
	Seasons             []Season
	NotificationLabels  []string // in the order of db.Categories

	// menus
	MainMenuMessage          string
	NotLinkedMessage         string
	JournalMenuMessage       string // first name initial, last name, group, birthday, rating
	ProfileRefreshedMessage  string // same as JournalMenuMessage
	NearestBirthdaysHeader   string
	NearestBirthdaysFooter   string
	BirthdayToday            string
	BirthdayDaysLeft         string // verb ending, days
	NoSeasonBirthdaysMessage string
	NotificationsMenuMessage string
	ToggledOnMessage         string // label
	ToggledOffMessage        string // label
	StatusMessage            string
	HelpMessage              string
	PortalUnavailableMessage string
	SendFailedMessage        string
	RateLimitedMessage       string
	MaintenanceMessage       string

	// journal
	AveragesHeader      string // semester
	AverageLine         string // subject, average
	AbsencesHeader      string // semester
	AbsenceLine         string // mark, subject, misses, lessons
	AbsencesTotal       string // misses, lessons, attendance, place
	ScheduleHoliday     string // day word, holiday
	ScheduleHeader      string // day word, date
	ScheduleLesson      string // number, subject, auditory
	ScheduleNote        string // note
	ScheduleEmpty       string // day word
	Today               string
	Tomorrow            string
	ProvisionHeader     string // escaped date
	ProvisionEmpty      string
	ProvisionBroadcast  string
	RemoteLessonLine    string // escaped theme, base URL, hash
	NewsPost            string // author, base URL, author ID, title, base URL, post ID, date, views, likes, comments
	UntitledPost        string
	NoNewsMessage       string
	LinksMessage        string // base URL, portal ID, semester
	BirthdaySingle      string // icon, age, full name
	BirthdayMultiple    string // icon, names
	BirthdayAgeForms    [3]string
	BirthdayIcons       []string
	BirthdayIconSpecial string // 6 December

	// linking
	LinkingDeclinedMessage string
	LinkingGuideMessage    string
	LinkingInvalidMessage  string
	LinkingPortalDown      string
	LinkingTakenMessage    string
	LinkingTooFastMessage  string
	LinkedMessage          string // first name, last name, group
	UnlinkConfirmMessage   string
	UnlinkDeclinedMessage  string
	UnlinkedMessage        string // first name, last name, group

	// autovisit
	AutovisitOnlineMessage   string
	AutovisitOfferMessage    string
	AutovisitDeclinedMessage string
	AutovisitAskMessage      string
	AutovisitCancelMessage   string
	AutovisitRejectedMessage string
	AutovisitDisabledMessage string
	AutovisitFailedMessage   string
	AutovisitNoLessons       string
	AutovisitReportHeader    string // lessons
	AutovisitReportOK        string // lessons
	AutovisitReportFailed    string // lessons, colon
	AutovisitReportLesson    string // index, base URL, hash
	AutovisitReportFooter    string
	LessonForms              [3]string

	// admin
	AdminMenuMessage       string
	AccessDeniedMessage    string
	BroadcastStartMessage  string // recipients
	BroadcastCancelMessage string
	BroadcastFooter        string
	BroadcastSentMessage   string
	ActiveUserForms        [3]string
	StatsMessage           string
	HeartbeatMessage       string
	MasterLoginFailed      string
	DuplicateMarksMessage  string

	CommandsMenu []tele.Command
}

// Season represents a button of the birthday calendar
type Season struct {
	Icon   string
	Name   string
	Months []int
}

// Button returns the text of the season's button
func (s Season) Button() string {
	return s.Icon + " " + s.Name
}

// Get returns the bot's locale
func Get() *Locale {
	return &ru
}
