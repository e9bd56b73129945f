package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore map[int64]Scene

func (s memoryStore) GetScene(_ context.Context, chatID int64) (Scene, error) {
	return s[chatID], nil
}

func (s memoryStore) PutScene(_ context.Context, chatID int64, sc Scene) error {
	s[chatID] = sc
	return nil
}

const backText = "⬅️ Назад"

// newMenuRouter builds a router with a back button and a main menu that is shown
// only when a dispatch arrives at main from another scene
func newMenuRouter(store memoryStore, shown *int) *Router {
	r := NewRouter(store)
	r.Register(
		Route{
			ID:   "back",
			When: func(in Input) bool { return in.Text == backText && in.Scene != Main && in.Scene != None },
			Do: func(ctx context.Context, in Input) (Outcome, error) {
				return Reload, store.PutScene(ctx, in.ChatID, Main)
			},
		},
		Route{
			ID:   "main_menu",
			When: func(in Input) bool { return in.Scene == Main && in.Entry != Main },
			Do: func(context.Context, Input) (Outcome, error) {
				*shown++
				return Continue, nil
			},
		},
		Route{
			ID:   "journal",
			When: func(in Input) bool { return in.Scene == Main && in.Text == "📚 Журнал" },
			Do: func(ctx context.Context, in Input) (Outcome, error) {
				return Reload, store.PutScene(ctx, in.ChatID, Journal)
			},
		},
	)
	return r
}

func TestRouter_BackIsIdempotent(t *testing.T) {
	store := memoryStore{1: Journal}
	var shown int
	r := newMenuRouter(store, &shown)
	ctx := context.Background()

	report, err := r.Dispatch(ctx, 1, backText, nil)
	require.NoError(t, err)
	assert.Equal(t, Main, report.Scene)
	if diff := cmp.Diff([]string{"back", "main_menu"}, report.Fired); diff != "" {
		t.Error(diff)
	}
	assert.Equal(t, 1, shown)

	report, err = r.Dispatch(ctx, 1, backText, nil)
	require.NoError(t, err)
	assert.Equal(t, Main, report.Scene)
	assert.Empty(t, report.Fired)
	assert.Equal(t, 1, shown)
}

func TestRouter_ReloadIsSeenByLaterHandlers(t *testing.T) {
	store := memoryStore{1: Main}
	var shown int
	r := newMenuRouter(store, &shown)

	report, err := r.Dispatch(context.Background(), 1, "📚 Журнал", nil)
	require.NoError(t, err)
	assert.Equal(t, Journal, report.Scene)
	assert.Equal(t, []string{"journal"}, report.Fired)
	assert.Equal(t, Journal, store[1])
}

func TestRouter_WalksEveryHandlerOnce(t *testing.T) {
	store := memoryStore{}
	r := NewRouter(store)
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		r.Register(Route{
			ID:   name,
			When: func(Input) bool { return true },
			Do: func(context.Context, Input) (Outcome, error) {
				order = append(order, name)
				return Continue, nil
			},
		})
	}

	_, err := r.Dispatch(context.Background(), 5, "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRouter_HandlerFault(t *testing.T) {
	errBoom := errors.New("boom")
	tests := []struct {
		name string
		do   func(context.Context, Input) (Outcome, error)
	}{
		{"error", func(context.Context, Input) (Outcome, error) { return Continue, errBoom }},
		{"panic", func(context.Context, Input) (Outcome, error) { panic("boom") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(memoryStore{})
			var after bool
			r.Register(
				Route{ID: "faulty", When: func(Input) bool { return true }, Do: tt.do},
				Route{ID: "after", When: func(Input) bool { return true }, Do: func(context.Context, Input) (Outcome, error) {
					after = true
					return Continue, nil
				}},
			)

			report, err := r.Dispatch(context.Background(), 1, "x", nil)
			assert.ErrorIs(t, err, ErrHandlerFault)
			assert.Equal(t, []string{"faulty"}, report.Fired)
			assert.False(t, after)
		})
	}
}
