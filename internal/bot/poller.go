package bot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

// pollRetryDelay is how long the poller waits after a failed getUpdates call
const pollRetryDelay = time.Second

// RawAPI calls a Bot API method, *tele.Bot implements it
type RawAPI interface {
	Raw(method string, payload interface{}) ([]byte, error)
}

// Poller long-polls getUpdates for messages only.
// Every completed round-trip, empty or not, is recorded as a sign of life.
type Poller struct {
	api          RawAPI
	timeout      time.Duration
	retryDelay   time.Duration
	alive        func()
	lastUpdateID int
}

// LongPoller creates the poller feeding the bot, Listen runs its Poll
func (b *Bot) LongPoller(api RawAPI) *Poller {
	timeout := DefaultPollTimeout
	if b.config.PollTimeout > 0 {
		timeout = time.Duration(b.config.PollTimeout) * time.Second
	}
	return &Poller{
		api:        api,
		timeout:    timeout,
		retryDelay: pollRetryDelay,
		alive:      func() { b.Stats.Updated(b.now()) },
	}
}

// Poll sends the received updates to dest until stop is closed
func (p *Poller) Poll(dest chan tele.Update, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		updates, err := p.getUpdates()
		if err != nil {
			log.Warnf("failed to get updates: %v", err)
			select {
			case <-stop:
				return
			case <-time.After(p.retryDelay):
			}
			continue
		}
		p.alive()

		for _, u := range updates {
			p.lastUpdateID = u.ID
			select {
			case dest <- u:
			case <-stop:
				return
			}
		}
	}
}

// getUpdates makes one getUpdates call
func (p *Poller) getUpdates() ([]tele.Update, error) {
	data, err := p.api.Raw("getUpdates", map[string]string{
		"offset":          strconv.Itoa(p.lastUpdateID + 1),
		"timeout":         strconv.Itoa(int(p.timeout / time.Second)),
		"allowed_updates": `["message"]`,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []tele.Update `json:"result"`
	}
	if err = json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("bot: error decoding updates: %w", err)
	}
	return resp.Result, nil
}
