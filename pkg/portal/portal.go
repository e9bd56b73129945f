/*
Package portal implements a small client for the college portal (https://ies.unitech-mo.ru).
The portal has no API, so most of the data is scraped from its HTML pages.
*/
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Config represents a configuration for the portal client
type Config struct {
	BaseURL string `toml:"base_url"`
	Timeout int    `toml:"timeout"` // seconds
}

// Client represents a portal client, it holds no session by itself:
// every call is made with the session token given by the caller
type Client struct {
	http   *resty.Client
	selfID int64
}

// New initializes a portal client.
// selfID is the portal ID of the master account, the journal does not link the viewer's own row.
func New(config Config, selfID int64) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(time.Duration(config.Timeout)*time.Second).
		// sessions belong to the callers, cookies must not be shared between them
		SetCookieJar(nil).
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36").
		// an expired session is redirected to the login page, which must not be mistaken for the requested one
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	return &Client{http: client, selfID: selfID}
}

// request makes a request to the portal with the given session token
func (c *Client) request(ctx context.Context, method, path, token string, query, form map[string]string) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetHeader("Cookie", token)
	}
	if query != nil {
		req.SetQueryParams(query)
	}
	if form != nil {
		req.SetFormData(form)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, errors.Wrapf(ErrNetwork, "%s %s: %v", method, path, err)
	}
	switch {
	case resp.StatusCode() >= http.StatusInternalServerError:
		return resp, errors.Wrapf(ErrNetwork, "%s %s: status %d", method, path, resp.StatusCode())
	case resp.StatusCode() != http.StatusOK:
		return resp, errors.Wrapf(ErrAuthExpired, "%s %s: status %d", method, path, resp.StatusCode())
	}
	return resp, nil
}

// document requests an HTML page
func (c *Client) document(ctx context.Context, method, path, token string, query, form map[string]string) (*goquery.Document, error) {
	resp, err := c.request(ctx, method, path, token, query, form)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "%s: %v", path, err)
	}
	return doc, nil
}

// postJSON posts a form and decodes the JSON response into v
func (c *Client) postJSON(ctx context.Context, path, token string, query, form map[string]string, v any) error {
	resp, err := c.request(ctx, http.MethodPost, path, token, query, form)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(resp.Body(), v); err != nil {
		return errors.Wrapf(ErrParse, "%s: %v", path, err)
	}
	return nil
}
