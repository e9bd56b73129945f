package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

type reply struct {
	body string
	err  error
}

// scriptedAPI answers getUpdates calls in order and closes stop on the last one
type scriptedAPI struct {
	replies []reply
	offsets []string
	stop    chan struct{}
}

func (a *scriptedAPI) Raw(method string, payload interface{}) ([]byte, error) {
	params := payload.(map[string]string)
	a.offsets = append(a.offsets, params["offset"])
	n := len(a.offsets) - 1
	if n == len(a.replies)-1 {
		close(a.stop)
	}
	return []byte(a.replies[n].body), a.replies[n].err
}

func TestPoller(t *testing.T) {
	tb := newTestBot(t, Config{})
	polledAt := testNow.Add(30 * time.Minute)
	tb.now = func() time.Time { return polledAt }

	api := &scriptedAPI{
		replies: []reply{
			{err: errors.New("telebot: connection reset")},
			{body: `{"ok":true,"result":[]}`},
			{body: `{"ok":true,"result":[{"update_id":7,"message":{"message_id":1,"chat":{"id":300,"type":"private"},"text":"/start"}}]}`},
			{body: `{"ok":true,"result":[]}`},
		},
		stop: make(chan struct{}),
	}
	p := tb.LongPoller(api)
	p.retryDelay = 0
	var alive int
	tick := p.alive
	p.alive = func() {
		alive++
		tick()
	}

	dest := make(chan tele.Update, 10)
	p.Poll(dest, api.stop)

	if diff := cmp.Diff([]string{"1", "1", "1", "8"}, api.offsets); diff != "" {
		t.Error(diff)
	}
	assert.Equal(t, 3, alive)
	require.Len(t, dest, 1)
	u := <-dest
	assert.Equal(t, "/start", u.Message.Text)

	// empty round-trips count as signs of life, not as messages
	snap := tb.Stats.Snapshot(polledAt)
	assert.True(t, snap.LastUpdate.Equal(polledAt))
	assert.Zero(t, snap.Messages)
}

func TestPoller_Stopped(t *testing.T) {
	tb := newTestBot(t, Config{})
	api := &scriptedAPI{stop: make(chan struct{})}
	close(api.stop)

	tb.LongPoller(api).Poll(make(chan tele.Update), api.stop)
	assert.Empty(t, api.offsets)
}
