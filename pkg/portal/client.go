package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// Login logs in with the given credentials and returns the session token,
// a `name=value` cookie pair ready to be sent back in the Cookie header
func (c *Client) Login(ctx context.Context, login, password string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"login":          login,
			"pass":           password,
			"auth":           "1",
			"ajax":           "1",
			"stay_in_system": "1",
		}).
		Post(authPath)
	if err != nil {
		return "", errors.Wrapf(ErrNetwork, "login: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", errors.Wrapf(ErrNetwork, "login: status %d", resp.StatusCode())
	}

	var result map[string]json.RawMessage
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return "", errors.Wrapf(ErrParse, "login: %v", err)
	}
	if _, ok := result["success"]; !ok {
		return "", errors.Wrapf(ErrLoginRejected, "login: %s", result["error"])
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value, nil
		}
	}
	return "", errors.Wrap(ErrParse, "login: no session cookie")
}

// CheckSession checks whether the portal still accepts the session token,
// portalID is the user whose profile page is probed
func (c *Client) CheckSession(ctx context.Context, token string, portalID int64) error {
	_, err := c.request(ctx, http.MethodGet, userPath, token,
		map[string]string{"userid": strconv.FormatInt(portalID, 10)}, nil)
	return err
}

var (
	entrySeparator = regexp.MustCompile(`\s*:\s+`)
	avatarURL      = regexp.MustCompile(`(?i)url\(([a-z0-9_/.]+)\)`)
)

// Profile gets a user's profile together with their portal rating
func (c *Client) Profile(ctx context.Context, token string, portalID int64) (Profile, error) {
	id := strconv.FormatInt(portalID, 10)
	doc, err := c.document(ctx, http.MethodGet, userPath, token, map[string]string{"userid": id}, nil)
	if err != nil {
		return Profile{}, err
	}

	entries := func(selector string) []string {
		var values []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			parts := entrySeparator.Split(strings.TrimSpace(s.Text()), 2)
			if len(parts) < 2 {
				values = append(values, "")
				return
			}
			values = append(values, strings.TrimSpace(parts[1]))
		})
		return values
	}
	self := entries(".userpage_block_wrap:nth-child(1) > .info")
	corp := entries(".userpage_block_wrap:nth-child(2) > .info")
	if len(self) < 4 || len(corp) < 4 {
		return Profile{}, errors.Wrapf(ErrParse, "profile %d: %d personal and %d corporate entries", portalID, len(self), len(corp))
	}

	birthday, err := reverseDate(self[3])
	if err != nil {
		return Profile{}, errors.Wrapf(ErrParse, "profile %d: %v", portalID, err)
	}
	profile := Profile{
		ID:        portalID,
		FirstName: self[1],
		LastName:  self[0],
		Birthday:  birthday,
		Group:     corp[3],
	}
	if style, ok := doc.Find(".user_rating .users_avatar_wrap").Attr("style"); ok {
		profile.Avatar = submatch(avatarURL, style)
	}

	resp, err := c.request(ctx, http.MethodPost, ratingPath, token, nil,
		map[string]string{"rating_user": id, "get_only_final_rating": "1"})
	if err != nil {
		return Profile{}, err
	}
	if profile.Rating, err = strconv.ParseFloat(strings.TrimSpace(string(resp.Body())), 64); err != nil {
		return Profile{}, errors.Wrapf(ErrParse, "rating %d: %v", portalID, err)
	}
	return profile, nil
}

// reverseDate converts the leading `DD.MM.YYYY` of s to `YYYY-MM-DD`
func reverseDate(s string) (string, error) {
	if len(s) < 10 {
		return "", errors.Errorf("bad date %q", s)
	}
	parts := strings.Split(s[:10], ".")
	if len(parts) != 3 {
		return "", errors.Errorf("bad date %q", s)
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0], nil
}

// News gets the latest posts of the portal's news feed
func (c *Client) News(ctx context.Context, token string, limit int) ([]Post, error) {
	var posts []Post
	err := c.postJSON(ctx, postsPath, token, nil, map[string]string{
		"dynamic": "1",
		"offset":  "0",
		"limit":   strconv.Itoa(limit),
	}, &posts)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Author = FormatName(posts[i].Author)
	}
	return posts, nil
}

// VisitLesson opens a remote lesson page on behalf of the session owner, which marks them present
func (c *Client) VisitLesson(ctx context.Context, token, hash string) error {
	doc, err := c.document(ctx, http.MethodGet, translationPath, token, map[string]string{"edu": hash}, nil)
	if errors.Is(err, ErrNetwork) {
		return err
	}
	if err != nil {
		return errors.Wrapf(ErrVisitRejected, "visit %s: %v", hash, err)
	}
	// the page shows a heading instead of the translation when the visit is not accepted
	if header := doc.Find(".translation_content_wrp h2"); header.Length() > 0 {
		return errors.Wrapf(ErrVisitRejected, "visit %s: %s", hash, strings.TrimSpace(header.First().Text()))
	}
	return nil
}
