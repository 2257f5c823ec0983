package assistant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere/plugin/assistant/compose"
	"github.com/edusphere/edusphere/plugin/assistant/gateway"
	"github.com/edusphere/edusphere/plugin/assistant/stream"
	"github.com/edusphere/edusphere/store"
)

// fakeStore is an in-memory Store for service tests. Failure modes are
// switchable per test.
type fakeStore struct {
	mu          sync.Mutex
	logs        map[string]*store.ConversationLog
	courses     []*store.CourseRecord
	failGet     bool
	failUpsert  bool
	panicOnList bool
	upsertCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		logs: make(map[string]*store.ConversationLog),
		courses: []*store.CourseRecord{
			{ID: 1, Title: "Mathématiques Avancées", Description: "Algèbre et analyse.", Category: "Mathématiques", Level: "Avancé", Rating: 4.8},
			{ID: 2, Title: "Programmation Python", Description: "Apprendre Python de zéro.", Category: "Informatique", Level: "Débutant", Rating: 4.9},
		},
	}
}

func (f *fakeStore) GetConversation(_ context.Context, key string) (*store.ConversationLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errors.New("storage unavailable")
	}
	return f.logs[key], nil
}

func (f *fakeStore) UpsertConversation(_ context.Context, log *store.ConversationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.failUpsert {
		return errors.New("storage unavailable")
	}
	f.logs[log.Key] = log
	return nil
}

func (f *fakeStore) DeleteConversation(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.logs, key)
	return nil
}

func (f *fakeStore) ListCourses(_ context.Context, _ *store.FindCourse) ([]*store.CourseRecord, error) {
	if f.panicOnList {
		panic("catalog exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.courses, nil
}

var _ Store = (*fakeStore)(nil)

func testConfig() *Config {
	return &Config{
		Stream: stream.Config{TickInterval: time.Millisecond, StepSize: 50},
	}
}

// collector gathers emitted events in order.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) emit(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func (c *collector) done(t *testing.T) Event {
	t.Helper()
	events := c.all()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.Equal(t, EventDone, last.Type)
	return last
}

func TestService_FreshConversationSeedsGreeting(t *testing.T) {
	svc := NewService(testConfig(), newFakeStore())

	msgs, err := svc.Messages(context.Background(), "conversation:1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsAssistant())
	assert.Contains(t, msgs[0].Content, "Bonjour")
}

func TestService_EmptyUtteranceRejected(t *testing.T) {
	svc := NewService(testConfig(), newFakeStore())

	err := svc.HandleTurn(context.Background(), "conversation:1", "   ", func(Event) {})
	assert.ErrorIs(t, err, ErrEmptyUtterance)
}

func TestService_CourseSearchThenConfirmation(t *testing.T) {
	st := newFakeStore()
	svc := NewService(testConfig(), st)
	ctx := context.Background()
	key := "conversation:1"

	first := &collector{}
	require.NoError(t, svc.HandleTurn(ctx, key, "je cherche un cours de maths", first.emit))
	done := first.done(t)
	assert.Contains(t, done.Text, "Mathématiques Avancées")
	require.NotEmpty(t, done.Results)

	second := &collector{}
	require.NoError(t, svc.HandleTurn(ctx, key, "oui", second.emit))
	done = second.done(t)
	// The confirmation opens the top-ranked result of the previous search.
	assert.Contains(t, done.Text, "J'ouvre le cours")
	require.NotNil(t, done.Navigation)
	assert.Equal(t, compose.ViewCourse, done.Navigation.View)
}

func TestService_ContextOverwrittenEachTurn(t *testing.T) {
	st := newFakeStore()
	svc := NewService(testConfig(), st)
	ctx := context.Background()
	key := "conversation:1"

	require.NoError(t, svc.HandleTurn(ctx, key, "je cherche un cours de maths", (&collector{}).emit))
	require.NoError(t, svc.HandleTurn(ctx, key, "quelles sont les actualités", (&collector{}).emit))

	// The news turn replaced the context, so a bare "oui" no longer refers
	// to the earlier search.
	events := &collector{}
	require.NoError(t, svc.HandleTurn(ctx, key, "oui", events.emit))
	assert.Equal(t, compose.UnknownText(), events.done(t).Text)
}

func TestService_EventsOrdered(t *testing.T) {
	svc := NewService(testConfig(), newFakeStore())

	events := &collector{}
	require.NoError(t, svc.HandleTurn(context.Background(), "conversation:1", "bonjour", events.emit))

	all := events.all()
	require.NotEmpty(t, all)
	assert.Equal(t, EventTyping, all[0].Type)
	assert.Equal(t, EventDone, all[len(all)-1].Type)
	for _, ev := range all[1 : len(all)-1] {
		assert.Equal(t, EventMessage, ev.Type)
	}
}

func TestService_PersistenceFailureKeepsAnswer(t *testing.T) {
	st := newFakeStore()
	st.failUpsert = true
	svc := NewService(testConfig(), st)

	events := &collector{}
	err := svc.HandleTurn(context.Background(), "conversation:1", "bonjour", events.emit)
	require.NoError(t, err)
	assert.Contains(t, events.done(t).Text, "Bonjour")

	st.mu.Lock()
	defer st.mu.Unlock()
	assert.GreaterOrEqual(t, st.upsertCalls, 1, "persistence was attempted")
}

func TestService_CorruptLoadFallsBackToSeed(t *testing.T) {
	st := newFakeStore()
	st.failGet = true
	svc := NewService(testConfig(), st)

	events := &collector{}
	err := svc.HandleTurn(context.Background(), "conversation:1", "bonjour", events.emit)
	require.NoError(t, err)
	assert.Equal(t, EventDone, events.done(t).Type)
}

func TestService_PanicBecomesRephraseAnswer(t *testing.T) {
	st := newFakeStore()
	st.panicOnList = true
	svc := NewService(testConfig(), st)
	ctx := context.Background()
	key := "conversation:1"

	events := &collector{}
	// course_search touches the catalog, which panics.
	require.NoError(t, svc.HandleTurn(ctx, key, "je cherche un cours de maths", events.emit))
	assert.Equal(t, compose.RephraseText(), events.done(t).Text)

	// The conversation stays usable for the next turn.
	st.panicOnList = false
	next := &collector{}
	require.NoError(t, svc.HandleTurn(ctx, key, "bonjour", next.emit))
	assert.Contains(t, next.done(t).Text, "Bonjour")
}

func TestService_UnknownDelegatesToGateway(t *testing.T) {
	gen := &gateway.MockGenerator{
		GenerateFunc: func(_ context.Context, req *gateway.Request) (string, error) {
			return "Réponse générée pour : " + req.Query, nil
		},
	}
	svc := NewServiceWithGenerator(testConfig(), newFakeStore(), gen)

	events := &collector{}
	require.NoError(t, svc.HandleTurn(context.Background(), "conversation:1", "explique-moi la photosynthèse", events.emit))
	assert.Contains(t, events.done(t).Text, "Réponse générée")
	require.Len(t, gen.Calls(), 1)
	assert.Equal(t, "explique-moi la photosynthèse", gen.Calls()[0].Query)
}

func TestService_GatewaySkippedForKnownIntents(t *testing.T) {
	gen := &gateway.MockGenerator{}
	svc := NewServiceWithGenerator(testConfig(), newFakeStore(), gen)

	events := &collector{}
	require.NoError(t, svc.HandleTurn(context.Background(), "conversation:1", "bonjour", events.emit))
	assert.Empty(t, gen.Calls())
}

func TestService_GatewayFailureFallsBackSilently(t *testing.T) {
	gen := &gateway.MockGenerator{
		GenerateFunc: func(_ context.Context, _ *gateway.Request) (string, error) {
			return "", errors.New("provider unreachable")
		},
	}
	svc := NewServiceWithGenerator(testConfig(), newFakeStore(), gen)

	events := &collector{}
	require.NoError(t, svc.HandleTurn(context.Background(), "conversation:1", "explique-moi la photosynthèse", events.emit))
	assert.Equal(t, compose.UnknownText(), events.done(t).Text)
}

func TestService_GatewayHistoryIsBounded(t *testing.T) {
	gen := &gateway.MockGenerator{
		GenerateFunc: func(_ context.Context, _ *gateway.Request) (string, error) {
			return "ok", nil
		},
	}
	st := newFakeStore()
	// Preload a long history for the key.
	long := &store.ConversationLog{Key: "conversation:1"}
	for i := 0; i < 30; i++ {
		long.Messages = append(long.Messages, store.Message{
			UID: "m", Role: store.MessageRoleUser, Content: "ancien message",
		})
	}
	st.logs["conversation:1"] = long
	svc := NewServiceWithGenerator(testConfig(), st, gen)

	require.NoError(t, svc.HandleTurn(context.Background(), "conversation:1", "question inconnue xyzzy", (&collector{}).emit))
	require.Len(t, gen.Calls(), 1)
	assert.LessOrEqual(t, len(gen.Calls()[0].History), 10)
}

func TestService_RateLimited(t *testing.T) {
	svc := NewService(testConfig(), newFakeStore())
	ctx := context.Background()
	key := "conversation:1"

	var limited bool
	for i := 0; i < 4; i++ {
		err := svc.HandleTurn(ctx, key, "bonjour", func(Event) {})
		if errors.Is(err, ErrRateLimited) {
			limited = true
		}
	}
	assert.True(t, limited, "the fourth rapid turn must be rejected")
}

func TestService_ResetClearsContext(t *testing.T) {
	st := newFakeStore()
	svc := NewService(testConfig(), st)
	ctx := context.Background()
	key := "conversation:1"

	require.NoError(t, svc.HandleTurn(ctx, key, "je cherche un cours de maths", (&collector{}).emit))
	require.NoError(t, svc.Reset(ctx, key))

	// After reset the stored log is gone and "oui" has nothing to confirm.
	msgs, err := svc.Messages(ctx, key)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	events := &collector{}
	require.NoError(t, svc.HandleTurn(ctx, key, "oui", events.emit))
	assert.Equal(t, compose.UnknownText(), events.done(t).Text)
}

func TestService_PersistsBothSidesOfTurn(t *testing.T) {
	st := newFakeStore()
	svc := NewService(testConfig(), st)
	ctx := context.Background()
	key := "conversation:1"

	require.NoError(t, svc.HandleTurn(ctx, key, "bonjour", (&collector{}).emit))

	st.mu.Lock()
	log := st.logs[key]
	st.mu.Unlock()
	require.NotNil(t, log)
	// Greeting seed, user turn, assistant answer.
	require.Len(t, log.Messages, 3)
	assert.True(t, log.Messages[0].IsAssistant())
	assert.Equal(t, store.MessageRoleUser, log.Messages[1].Role)
	assert.Equal(t, "bonjour", log.Messages[1].Content)
	assert.True(t, log.Messages[2].IsAssistant())
	assert.NotEmpty(t, log.Messages[2].Content)
}
