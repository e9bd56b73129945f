package portal

import (
	"context"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// maxProvisionRequests limits the concurrent per-subject requests of RemoteLessons
const maxProvisionRequests = 4

// RemoteLessons gets the remote lessons the group has on the given day, grouped by subject
func (c *Client) RemoteLessons(ctx context.Context, token, group string, semester int, day time.Time) ([]Provision, error) {
	sem := strconv.Itoa(semester)
	doc, err := c.document(ctx, http.MethodGet, provisionPath, token, map[string]string{"st_semester": sem}, nil)
	if err != nil {
		return nil, err
	}

	var subjectIDs []string
	doc.Find(".teacherstufftable td:has(span)").Each(func(_ int, cell *goquery.Selection) {
		// onclick="showLessons(this, '123', ...)"
		onclick := cell.Find("a").AttrOr("onclick", "")
		parts := strings.Split(onclick, ",")
		if len(parts) < 2 {
			return
		}
		if id := strings.Trim(strings.TrimSpace(parts[1]), `'"`); id != "" {
			subjectIDs = append(subjectIDs, id)
		}
	})

	date := day.Format(portalDateLayout)
	results := make([][]provisionEntry, len(subjectIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxProvisionRequests)
	for i, id := range subjectIDs {
		g.Go(func() error {
			var entries []provisionEntry
			err := c.postJSON(ctx, provisionPath, token, nil, map[string]string{
				"getLessons": "1",
				"sem":        sem,
				"group":      group,
				"subj":       id,
			}, &entries)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.RealTime == date {
					results[i] = append(results[i], e)
				}
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	var provisions []Provision
	index := make(map[string]int)
	for _, entries := range results {
		for _, e := range entries {
			i, ok := index[e.Subject]
			if !ok {
				i = len(provisions)
				index[e.Subject] = i
				provisions = append(provisions, Provision{Subject: e.Subject})
			}
			provisions[i].Lessons = append(provisions[i].Lessons, RemoteLesson{
				Hash:  e.Code,
				Theme: strings.TrimSpace(html.UnescapeString(e.Theme)),
			})
		}
	}
	return provisions, nil
}
