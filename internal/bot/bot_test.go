package bot

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/autovisit"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/notify"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/stats"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

const testBaseURL = "https://ies.unitech-mo.ru"

type sentMessage struct {
	ChatID   int64
	Text     string
	Markdown bool
	Keyboard *tele.ReplyMarkup
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	deleted []int
	failAll bool
}

func (m *fakeMessenger) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errors.New("telegram: bad request")
	}

	id, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	msg := sentMessage{ChatID: id, Text: what.(string)}
	for _, opt := range opts {
		if o, ok := opt.(*tele.SendOptions); ok {
			msg.Markdown = o.ParseMode == tele.ModeMarkdownV2
			msg.Keyboard = o.ReplyMarkup
		}
	}
	m.sent = append(m.sent, msg)
	return &tele.Message{ID: len(m.sent)}, nil
}

func (m *fakeMessenger) Delete(msg tele.Editable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := msg.MessageSig()
	n, _ := strconv.Atoi(id)
	m.deleted = append(m.deleted, n)
	return nil
}

// texts returns the texts sent to a chat
func (m *fakeMessenger) texts(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var texts []string
	for _, s := range m.sent {
		if s.ChatID == chatID {
			texts = append(texts, s.Text)
		}
	}
	return texts
}

func (m *fakeMessenger) last(t *testing.T, chatID int64) sentMessage {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].ChatID == chatID {
			return m.sent[i]
		}
	}
	t.Fatalf("nothing sent to %d", chatID)
	return sentMessage{}
}

type fakePortal struct {
	profiles   map[int64]portal.Profile
	schedule   portal.Schedule
	news       []portal.Post
	provisions []portal.Provision
	err        error
	visited    []string
}

func (p *fakePortal) Profile(_ context.Context, _ string, portalID int64) (portal.Profile, error) {
	if p.err != nil {
		return portal.Profile{}, p.err
	}
	profile, ok := p.profiles[portalID]
	if !ok {
		return portal.Profile{}, portal.ErrParse
	}
	return profile, nil
}

func (p *fakePortal) Schedule(context.Context, string, time.Time) (portal.Schedule, error) {
	return p.schedule, p.err
}

func (p *fakePortal) News(context.Context, string, int) ([]portal.Post, error) {
	return p.news, p.err
}

func (p *fakePortal) RemoteLessons(context.Context, string, string, int, time.Time) ([]portal.Provision, error) {
	return p.provisions, p.err
}

func (p *fakePortal) VisitLesson(_ context.Context, _, hash string) error {
	p.visited = append(p.visited, hash)
	return nil
}

type fakeSessions struct {
	errs map[int64]error
}

func (s *fakeSessions) EnsureValid(_ context.Context, id int64) (string, session.Status, error) {
	if err := s.errs[id]; err != nil {
		return "", session.Failed, err
	}
	return "token", session.Fresh, nil
}

type fakeLimiter struct {
	deny bool
}

func (l *fakeLimiter) BotUpdateAllowed(context.Context, int64) bool   { return !l.deny }
func (l *fakeLimiter) LinkAttemptAllowed(context.Context, int64) bool { return !l.deny }
func (l *fakeLimiter) ManualVisitAllowed(context.Context, int64) bool { return !l.deny }

type fakeGrades []journal.Subject

func (g fakeGrades) Subjects(context.Context, string, int) ([]journal.Subject, error) {
	return g, nil
}

const (
	adminID  int64 = 100
	testerID int64 = 200
	userID   int64 = 300
)

var testNow = time.Date(2022, time.March, 10, 12, 0, 0, 0, time.UTC)

type testBot struct {
	*Bot
	messenger *fakeMessenger
	portal    *fakePortal
	sessions  *fakeSessions
	limiter   *fakeLimiter
}

func newTestBot(t *testing.T, config Config) *testBot {
	t.Helper()
	mr := miniredis.RunT(t)
	store := db.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	if config.Group == "" {
		config.Group = "П1-20"
	}
	config.Admins = append(config.Admins, adminID)

	tb := &testBot{
		messenger: &fakeMessenger{},
		portal: &fakePortal{profiles: map[int64]portal.Profile{
			4242: {ID: 4242, FirstName: "Иван", LastName: "Петров", Birthday: "2003-03-12", Group: "П1-20", Rating: 87.5},
		}},
		sessions: &fakeSessions{errs: map[int64]error{}},
		limiter:  &fakeLimiter{},
	}
	tb.Bot = New(config, Services{
		Messenger: tb.messenger,
		Store:     store,
		Limiter:   tb.limiter,
		Portal:    tb.portal,
		Grades:    fakeGrades(nil),
		Sessions:  tb.sessions,
		Visitor:   autovisit.New(tb.portal, tb.sessions, testBaseURL),
		Stats:     stats.New(testNow),
		BaseURL:   testBaseURL,
		Location:  time.UTC,
	})
	tb.now = func() time.Time { return testNow }
	tb.pacer = notify.NewPacer(tb.Bot, notify.WithSleep(func(context.Context, time.Duration) error { return nil }))
	return tb
}

// send processes a text message from the chat
func (tb *testBot) send(chatID int64, text string) {
	tb.process(context.Background(), tele.Update{Message: &tele.Message{
		ID:   42,
		Text: text,
		Chat: &tele.Chat{ID: chatID},
	}})
}

// link links the chat to the test profile directly
func (tb *testBot) link(t *testing.T, chatID int64) db.Account {
	t.Helper()
	a := db.AccountFromProfile(chatID, tb.portal.profiles[4242])
	require.NoError(t, tb.Store.Link(context.Background(), a))
	return a
}

func TestProcess_StartAndBack(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()

	tb.send(userID, "/start")
	s, err := tb.Store.GetScene(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, "main", s)

	tb.link(t, userID)
	tb.send(userID, "📚 Журнал")
	s, _ = tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "journal", s)
	assert.Contains(t, tb.messenger.last(t, userID).Text, "Петров")

	tb.send(userID, "⬅️ Назад")
	s, _ = tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "main", s)
	assert.Equal(t, "Жду дальнейших указаний.", tb.messenger.last(t, userID).Text)
	n := len(tb.messenger.texts(userID))

	// back in main is claimed by nobody
	tb.send(userID, "⬅️ Назад")
	s, _ = tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "main", s)
	assert.Len(t, tb.messenger.texts(userID), n)
}

func TestProcess_Maintenance(t *testing.T) {
	tb := newTestBot(t, Config{Maintenance: true, Testers: []int64{testerID}})

	tb.send(userID, "/start")
	msg := tb.messenger.last(t, userID)
	assert.True(t, msg.Markdown)
	assert.Contains(t, msg.Text, "технические работы")

	tb.send(testerID, "/start")
	assert.Equal(t, "Жду дальнейших указаний.", tb.messenger.last(t, testerID).Text)
}

func TestProcess_RateLimited(t *testing.T) {
	tb := newTestBot(t, Config{})
	tb.limiter.deny = true

	tb.send(userID, "/status")
	assert.Empty(t, tb.messenger.texts(userID))
}

func TestProcess_HandlerFault(t *testing.T) {
	tb := newTestBot(t, Config{})
	tb.messenger.failAll = true

	tb.send(userID, "/status")
	assert.EqualValues(t, 1, tb.Stats.Snapshot(testNow).Faults)
	assert.EqualValues(t, 1, tb.Stats.Snapshot(testNow).Messages)
}

func TestProcess_NotLinked(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	tb.send(userID, "/start")

	tb.send(userID, "📚 Журнал")
	assert.Contains(t, tb.messenger.last(t, userID).Text, "не связаны")
	s, _ := tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "linking_start", s)

	tb.send(userID, "❌ Нет")
	s, _ = tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "main", s)
}

func TestProcess_Linking(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	require.NoError(t, tb.Store.PutScene(ctx, userID, "linking_start"))

	tb.send(userID, "✅ Да")
	s, _ := tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "linking", s)

	tb.send(userID, "какой-то текст")
	assert.Contains(t, tb.messenger.last(t, userID).Text, "некорректный ввод")

	tb.send(userID, "?userid=999")
	assert.Contains(t, tb.messenger.last(t, userID).Text, "некорректный ввод")

	tb.send(userID, "https://ies.unitech-mo.ru/user?userid=4242")
	assert.Equal(t, "Установлена связь с профилем на портале: Иван Петров, группа П1-20.", tb.messenger.last(t, userID).Text)
	s, _ = tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "main", s)

	a, err := tb.Store.GetAccount(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 4242, a.PortalID)
	assert.Equal(t, "2003-03-12", a.Birthday)
}

func TestProcess_LinkingTaken(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	tb.link(t, testerID)
	require.NoError(t, tb.Store.PutScene(ctx, userID, "linking"))

	tb.send(userID, "?userid=4242")
	assert.Contains(t, tb.messenger.last(t, userID).Text, "уже существует")
	_, err := tb.Store.GetAccount(ctx, userID)
	assert.ErrorIs(t, err, db.ErrAccountNotFound)
}

func TestProcess_LinkingPortalDown(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	tb.sessions.errs[session.Master] = session.ErrUnavailable
	require.NoError(t, tb.Store.PutScene(ctx, userID, "linking"))

	tb.send(userID, "?userid=4242")
	assert.Contains(t, tb.messenger.last(t, userID).Text, "журнал сейчас недоступен")
	s, _ := tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "linking", s)
}

func TestProcess_Toggle(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	tb.send(userID, "/start")

	tb.send(userID, "📣 Уведомления")
	s, _ := tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "notifs", s)

	tb.send(userID, "🔕 Оценки")
	assert.Equal(t, "Оценки: уведомления включены.", tb.messenger.last(t, userID).Text)
	subs, err := tb.Store.Subscriptions(ctx, userID)
	require.NoError(t, err)
	assert.True(t, subs[db.Marks])

	tb.send(userID, "🔔 Оценки")
	assert.Equal(t, "Оценки: уведомления отключены.", tb.messenger.last(t, userID).Text)
	subs, err = tb.Store.Subscriptions(ctx, userID)
	require.NoError(t, err)
	assert.False(t, subs[db.Marks])
}

func TestProcess_UnlinkCascades(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	tb.link(t, userID)
	_, err := tb.Store.Toggle(ctx, db.Misses, userID)
	require.NoError(t, err)
	require.NoError(t, tb.Store.PutScene(ctx, userID, "journal"))

	tb.send(userID, "⚠ Отвязать аккаунт")
	tb.send(userID, "✅ Да")

	assert.Equal(t, "Разорвана связь с профилем: Иван Петров, группа П1-20.", tb.messenger.last(t, userID).Text)
	_, err = tb.Store.GetAccount(ctx, userID)
	assert.ErrorIs(t, err, db.ErrAccountNotFound)
	ids, err := tb.Store.Subscribers(ctx, db.Misses)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestProcess_AutovisitCredentials(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantScene  string
		wantSecret bool
	}{
		{"accepted", nil, "autovisit_online", true},
		{"rejected", session.ErrInvalidCredentials, "autovisit_await", false},
		{"portal down", session.ErrUnavailable, "autovisit_online", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t, Config{})
			ctx := context.Background()
			tb.link(t, userID)
			tb.sessions.errs[userID] = tt.err
			require.NoError(t, tb.Store.PutScene(ctx, userID, "main"))

			tb.send(userID, "😏 Автоотмечалка")
			tb.send(userID, "✅ Да")
			s, _ := tb.Store.GetScene(ctx, userID)
			require.EqualValues(t, "autovisit_await", s)

			tb.send(userID, "`student` `hunter2`")
			assert.Equal(t, []int{42}, tb.messenger.deleted)
			s, _ = tb.Store.GetScene(ctx, userID)
			assert.EqualValues(t, tt.wantScene, s)

			a, err := tb.Store.GetAccount(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSecret, a.Secret != "")
		})
	}
}

func TestProcess_AutovisitDisable(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	a := tb.link(t, userID)
	a.Secret, a.Session = "secret", "token"
	require.NoError(t, tb.Store.PutAccount(ctx, a))
	require.NoError(t, tb.Store.PutScene(ctx, userID, "main"))

	tb.send(userID, "😏 Автоотмечалка")
	s, _ := tb.Store.GetScene(ctx, userID)
	require.EqualValues(t, "autovisit_online", s)

	tb.send(userID, "👋 Отключить")
	a, err := tb.Store.GetAccount(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, a.Secret)
	assert.Empty(t, a.Session)
}

func TestProcess_AutovisitManual(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	tb.link(t, userID)
	tb.portal.provisions = []portal.Provision{{
		Subject: "Физика",
		Lessons: []portal.RemoteLesson{{Hash: "abc", Theme: "Оптика"}, {Hash: "def", Theme: "Волны"}},
	}}
	require.NoError(t, tb.Store.PutScene(ctx, userID, "autovisit_online"))

	tb.send(userID, "🪄 Ручной обход")
	assert.Equal(t, []string{"abc", "def"}, tb.portal.visited)
	assert.Contains(t, tb.messenger.last(t, userID).Text, "Успешно отмечено 2 пары")
}

func TestProcess_AdminOnly(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	tb.send(userID, "/start")

	tb.send(userID, "/stats")
	assert.Contains(t, tb.messenger.last(t, userID).Text, "недостаточный уровень допуска")
	s, _ := tb.Store.GetScene(ctx, userID)
	assert.EqualValues(t, "main", s)
}

func TestProcess_Broadcast(t *testing.T) {
	tb := newTestBot(t, Config{})
	ctx := context.Background()
	tb.send(userID, "/start")
	tb.send(testerID, "/start")
	tb.send(adminID, "/start")

	tb.send(adminID, "👮🏻‍♂️ Админ-панель")
	tb.send(adminID, "📣 Оповещение")
	assert.Equal(t, "Оповещение получат 3 активных пользователя. Что напишем?", tb.messenger.last(t, adminID).Text)

	tb.send(adminID, "Пары отменены.")
	tb.Wait()

	for _, id := range []int64{userID, testerID} {
		msg := tb.messenger.last(t, id)
		assert.True(t, msg.Markdown)
		assert.Contains(t, msg.Text, "Пары отменены\\.")
	}
	assert.Equal(t, "✅ Сообщение отправлено.", tb.messenger.last(t, adminID).Text)
	s, _ := tb.Store.GetScene(ctx, adminID)
	assert.EqualValues(t, "admin", s)
}

func TestProcess_Stats(t *testing.T) {
	tb := newTestBot(t, Config{})
	tb.send(adminID, "/start")
	tb.send(adminID, "/stats")

	msg := tb.messenger.last(t, adminID)
	assert.True(t, msg.Markdown)
	assert.Contains(t, msg.Text, "*Сообщений за сессию:* 2")
	assert.Contains(t, msg.Text, "*Последний просмотр журнала:* —")
}

func TestProcess_ScheduleUnavailable(t *testing.T) {
	tb := newTestBot(t, Config{})
	tb.sessions.errs[session.Master] = session.ErrUnavailable

	tb.send(userID, "/schedule")
	assert.Equal(t, "На данный момент журнал недоступен. Прошу прощения за неудобства, попробуй еще раз позже.", tb.messenger.last(t, userID).Text)
}
