package portal

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Profile represents a user's profile page
// Endpoint: /user?userid=
type Profile struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Birthday  string  `json:"birthday"` // YYYY-MM-DD
	Group     string  `json:"group"`
	Avatar    string  `json:"avatar,omitempty"`
	Rating    float64 `json:"rating"` // 0 to 100
}

// FullName returns the first and the last name of the user
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Schedule represents the lessons of a single day
// Endpoint: /schedule
type Schedule struct {
	Date    time.Time
	Holiday string // name of the holiday, if the day is one
	Lessons []Lesson
}

// Lesson represents a single lesson in a Schedule
type Lesson struct {
	Number   int // from 1
	Time     string
	Subject  string
	Teacher  string
	Auditory string
	Note     string
}

// scheduleEntry represents a single entry of the schedule response
type scheduleEntry struct {
	DayNum   flexInt `json:"daynum"`
	TimeNum  flexInt `json:"timenum"`
	Time     string  `json:"time"`
	DataType string  `json:"data_type"`
	Note     string  `json:"note"`
	LParam   string  `json:"lparam"`
}

// Post represents a single post in the news feed
// Endpoint: /posts
type Post struct {
	ID       int64  `json:"id"`
	Author   string `json:"ofio"`
	AuthorID int64  `json:"powner"`
	Title    string `json:"title"`
	Date     string `json:"date"` // DD.MM.YYYY
	Views    int    `json:"p_views"`
	Likes    int    `json:"p_likes"`
	Comments int    `json:"num_comments"`
}

func (p *Post) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       flexInt `json:"id"`
		Author   string  `json:"ofio"`
		AuthorID flexInt `json:"powner"`
		Title    string  `json:"title"`
		Date     string  `json:"date"`
		Views    flexInt `json:"p_views"`
		Likes    flexInt `json:"p_likes"`
		Comments flexInt `json:"num_comments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Post{
		ID:       int64(raw.ID),
		Author:   raw.Author,
		AuthorID: int64(raw.AuthorID),
		Title:    strings.TrimSpace(raw.Title),
		Date:     raw.Date,
		Views:    int(raw.Views),
		Likes:    int(raw.Likes),
		Comments: int(raw.Comments),
	}
	return nil
}

// Provision represents the remote lessons of one subject
// Endpoint: /remote_provision
type Provision struct {
	Subject string
	Lessons []RemoteLesson
}

// RemoteLesson represents a single remote lesson, its hash is what a visit is made with
type RemoteLesson struct {
	Hash  string `json:"hash"`
	Theme string `json:"theme"`
}

// provisionEntry represents a single entry of the remote lessons response
type provisionEntry struct {
	RealTime string `json:"realtime"` // DD.MM.YYYY
	Subject  string `json:"subjtext"`
	Code     string `json:"code"`
	Theme    string `json:"tname"`
}

// flexInt decodes numbers the portal sends either as JSON numbers or as strings
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}
