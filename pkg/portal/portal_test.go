package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/journal"
)

const testToken = "ft_sess_common=abc123"

const profilePage = `<html><body>
<div class="userpage">
 <div class="userpage_block_wrap">
  <div class="info">Фамилия: Петров</div>
  <div class="info">Имя: Петр</div>
  <div class="info">Отчество: Петрович</div>
  <div class="info">Дата рождения: 12.06.2002 (24 года)</div>
 </div>
 <div class="userpage_block_wrap">
  <div class="info">Статус: студент</div>
  <div class="info">Форма: очная</div>
  <div class="info">Курс: 4</div>
  <div class="info">Группа: П1-20</div>
 </div>
</div>
<div class="user_rating"><div class="users_avatar_wrap" style="background-image: url(/files/avatars/12.jpg)"></div></div>
</body></html>`

const journalPage = `<html><body>
<div class="journal_title"><strong>Журнал</strong> <strong> Математика </strong> <a href="/user?userid=77">Иванов Иван Иванович</a></div>
<div class="journal_scores_wrp"><table class="fl_left">
<thead><tr><th>ФИО</th><th><a>01.09</a></th><th><a>02.09</a></th><th><a>Атт</a></th><th>1</th><th>2</th><th>3</th><th>4</th><th>5</th></tr></thead>
<tbody>
<tr><td><a href="javascript:openUser(12, 1)">Петров</a></td><td class="journal_cell journal_ltype_0">5</td><td class="journal_ltype_1">Н</td><td class="journal_ltype_4"></td><td>1</td><td>2</td><td>3</td><td>4</td><td>5</td></tr>
<tr><td>Я</td><td class="journal_ltype_0"> 4 </td><td class="journal_ltype_2">3,5</td><td class="journal_ltype_4">зач</td><td>1</td><td>2</td><td>3</td><td>4</td><td>5</td></tr>
</tbody></table></div>
</body></html>`

const scheduleJSON = `[
 {"daynum":"2","timenum":"1","time":"09:00-10:30","data_type":"lesson","note":"","lparam":"Иванов Иван Иванович. Математика<br><a href='#'>305</a>"},
 {"daynum":2,"timenum":2,"time":"10:40-12:10","data_type":"lesson","note":"<b>Занятие проводится дистанционно</b>","lparam":"Петров Петр Петрович. Физика"},
 {"daynum":3,"timenum":1,"time":"09:00-10:30","data_type":"lesson","note":"","lparam":"Сидоров Сидор. История"}
]`

const provisionPage = `<html><body><table class="teacherstufftable"><tr>
<td><span>Математика</span><a onclick="getLessons(this, 11, 'x')">Открыть</a></td>
<td><span>Физика</span><a onclick="getLessons(this, 12, 'x')">Открыть</a></td>
<td>Пусто</td>
</tr></table></body></html>`

func newTestServer(t *testing.T) *Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("login") == "down" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.FormValue("login") != "ivanov" || r.FormValue("pass") != "hunter2" {
			fmt.Fprint(w, `{"error":"Неверный логин или пароль"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "ft_sess_common", Value: "abc123"})
		fmt.Fprint(w, `{"success":1}`)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != testToken {
			http.Redirect(w, r, "/auth", http.StatusFound)
			return
		}
		fmt.Fprint(w, profilePage)
	})
	mux.HandleFunc("/get_user_rating", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("rating_user") != "12" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, "87.5\n")
	})
	mux.HandleFunc("/journal", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, journalPage)
	})
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.FormValue("load") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if d := r.URL.Query().Get("d"); d != "" {
			fmt.Fprintf(w, `[{"daynum":1,"timenum":1,"time":"09:00","data_type":"holiday","note":"День %s","lparam":""}]`, d)
			return
		}
		fmt.Fprint(w, scheduleJSON)
	})
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"id":"5","ofio":"Иванова Мария Петровна","powner":"9","title":" Привет ","date":"01.10.2026","p_views":"10","p_likes":2,"num_comments":"0"}]`)
	})
	mux.HandleFunc("/remote_provision", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, provisionPage)
			return
		}
		switch r.FormValue("subj") {
		case "11":
			fmt.Fprint(w, `[
 {"realtime":"20.10.2026","subjtext":"Математика","code":"abc","tname":"Производные &#8470;1"},
 {"realtime":"19.10.2026","subjtext":"Математика","code":"old","tname":"Пределы"}
]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	})
	mux.HandleFunc("/translation_show", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("edu") {
		case "down":
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		case "late":
			fmt.Fprint(w, `<div class="translation_content_wrp"><h2>Трансляция завершена</h2></div>`)
			return
		case "stale":
			http.Redirect(w, r, "/auth", http.StatusFound)
			return
		}
		fmt.Fprint(w, `<div class="translation_content_wrp"><iframe src="/stream"></iframe></div>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: 5}, 1)
}

func TestClient_Login(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	token, err := c.Login(ctx, "ivanov", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	_, err = c.Login(ctx, "ivanov", "wrong")
	assert.ErrorIs(t, err, ErrLoginRejected)

	_, err = c.Login(ctx, "down", "x")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClient_CheckSession(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	assert.NoError(t, c.CheckSession(ctx, testToken, 12))
	// the redirect to the login page is not followed
	assert.ErrorIs(t, c.CheckSession(ctx, "ft_sess_common=stale", 12), ErrAuthExpired)
}

func TestClient_CheckSession_Network(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(Config{BaseURL: srv.URL, Timeout: 1}, 1)

	assert.ErrorIs(t, c.CheckSession(context.Background(), testToken, 12), ErrNetwork)
}

func TestClient_Profile(t *testing.T) {
	c := newTestServer(t)

	got, err := c.Profile(context.Background(), testToken, 12)
	require.NoError(t, err)
	want := Profile{
		ID:        12,
		FirstName: "Петр",
		LastName:  "Петров",
		Birthday:  "2002-06-12",
		Group:     "П1-20",
		Avatar:    "/files/avatars/12.jpg",
		Rating:    87.5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
	assert.Equal(t, "Петр Петров", got.FullName())
}

func TestClient_Grades(t *testing.T) {
	c := newTestServer(t)

	got, err := c.Grades(context.Background(), testToken, "П1-20", 3, 5)
	require.NoError(t, err)
	want := journal.Subject{
		ID:          3,
		Name:        "Математика",
		TeacherID:   77,
		Teacher:     "Иванов Иван Иванович",
		Semester:    5,
		Group:       "П1-20",
		LessonCount: 2,
		Marks: []journal.Mark{
			{Date: "01.09", StudentID: 12, Type: journal.Audit, Value: journal.Score(5)},
			{Date: "02.09", StudentID: 12, Type: journal.Lecture, Value: journal.Absence()},
			{Date: "01.09", StudentID: 1, Type: journal.Audit, Value: journal.Score(4)},
			{Date: "02.09", StudentID: 1, Type: journal.Practice, Value: journal.Score(3.5)},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
}

func TestClient_Schedule(t *testing.T) {
	c := newTestServer(t)
	msk := time.FixedZone("MSK", 3*60*60)

	// Tuesday morning shows Tuesday
	got, err := c.Schedule(context.Background(), testToken, time.Date(2026, time.October, 20, 10, 0, 0, 0, msk))
	require.NoError(t, err)
	want := []Lesson{
		{Number: 1, Time: "09:00-10:30", Subject: "Математика", Teacher: "Иванов И. И.", Auditory: "305"},
		{Number: 2, Time: "10:40-12:10", Subject: "Физика", Teacher: "Петров П. П.", Note: "Дистант"},
	}
	if diff := cmp.Diff(want, got.Lessons); diff != "" {
		t.Error(diff)
	}
	assert.Empty(t, got.Holiday)

	// Sunday afternoon shows Monday, which needs the explicit date
	got, err = c.Schedule(context.Background(), testToken, time.Date(2026, time.October, 25, 16, 0, 0, 0, msk))
	require.NoError(t, err)
	assert.Equal(t, "День 26.10.2026", got.Holiday)
	assert.Empty(t, got.Lessons)
	assert.Equal(t, time.Monday, got.Date.Weekday())
}

func TestClient_News(t *testing.T) {
	c := newTestServer(t)

	got, err := c.News(context.Background(), testToken, 5)
	require.NoError(t, err)
	want := []Post{{ID: 5, Author: "Иванова М. П.", AuthorID: 9, Title: "Привет", Date: "01.10.2026", Views: 10, Likes: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
}

func TestClient_RemoteLessons(t *testing.T) {
	c := newTestServer(t)

	got, err := c.RemoteLessons(context.Background(), testToken, "П1-20", 7, time.Date(2026, time.October, 20, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	want := []Provision{{Subject: "Математика", Lessons: []RemoteLesson{{Hash: "abc", Theme: "Производные №1"}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
}

func TestClient_VisitLesson(t *testing.T) {
	c := newTestServer(t)

	assert.NoError(t, c.VisitLesson(context.Background(), testToken, "abc"))
	assert.ErrorIs(t, c.VisitLesson(context.Background(), testToken, "late"), ErrVisitRejected)
	assert.ErrorIs(t, c.VisitLesson(context.Background(), testToken, "stale"), ErrVisitRejected)

	err := c.VisitLesson(context.Background(), testToken, "down")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrVisitRejected)
}

func TestClient_VisitLesson_Network(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(Config{BaseURL: srv.URL, Timeout: 1}, 1)

	err := c.VisitLesson(context.Background(), testToken, "abc")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrVisitRejected)
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Занятие проводится <b>дистанционно</b>", "Дистант"},
		{"Самостоятельная работа", "Самостоятельное обучение"},
		{"Занятие переносится в ауд. 214б", "Перенос в ауд. 214б"},
		{"Преподаватель Сидоров С. С. в аудитории 110", "Заменяет Сидоров С. С. в ауд. 110"},
		{"Заменяет преподаватель Сидоров С. С.", "Заменяет Сидоров С. С."},
		{"Принести тетради", ""},
	}
	for _, tt := range tests {
		got, err := parseNote(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "Иванов И. И.", FormatName("Иванов Иван Иванович"))
	assert.Equal(t, "Иванов И.", FormatName(" Иванов  Иван "))
	assert.Equal(t, "Администрация", FormatName("Администрация"))
}

func TestScheduleDay(t *testing.T) {
	morning := time.Date(2026, time.October, 19, 14, 59, 0, 0, time.UTC)
	assert.Equal(t, morning, ScheduleDay(morning))
	afternoon := time.Date(2026, time.October, 19, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.October, 20, 15, 0, 0, 0, time.UTC), ScheduleDay(afternoon))
}
