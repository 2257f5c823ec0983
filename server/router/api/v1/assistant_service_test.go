package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere/internal/profile"
	"github.com/edusphere/edusphere/plugin/assistant"
	"github.com/edusphere/edusphere/plugin/assistant/stream"
	"github.com/edusphere/edusphere/plugin/markdown"
	"github.com/edusphere/edusphere/server/auth"
	"github.com/edusphere/edusphere/store"
)

// chatStore is an in-memory assistant.Store for handler tests.
type chatStore struct {
	mu   sync.Mutex
	logs map[string]*store.ConversationLog
}

func newChatStore() *chatStore {
	return &chatStore{logs: make(map[string]*store.ConversationLog)}
}

func (s *chatStore) GetConversation(_ context.Context, key string) (*store.ConversationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs[key], nil
}

func (s *chatStore) UpsertConversation(_ context.Context, log *store.ConversationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[log.Key] = log
	return nil
}

func (s *chatStore) DeleteConversation(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, key)
	return nil
}

func (s *chatStore) ListCourses(context.Context, *store.FindCourse) ([]*store.CourseRecord, error) {
	return nil, nil
}

var _ assistant.Store = (*chatStore)(nil)

func newTestAPI() (*APIV1Service, *echo.Echo) {
	cfg := &assistant.Config{
		Stream: stream.Config{TickInterval: time.Millisecond, StepSize: 100},
	}
	svc := &APIV1Service{
		Profile:         &profile.Profile{Mode: "demo"},
		Assistant:       assistant.NewService(cfg, newChatStore()),
		AssistantConfig: cfg,
		Markdown:        markdown.NewService(),
		Authenticator:   auth.NewAuthenticator("secret"),
	}
	e := echo.New()
	svc.Register(e)
	return svc, e
}

func postChat(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat_StreamsEvents(t *testing.T) {
	_, e := newTestAPI()

	rec := postChat(e, `{"content": "bonjour"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	body := rec.Body.String()
	assert.Contains(t, body, `"type":"typing"`)
	assert.Contains(t, body, `"type":"done"`)
	assert.Contains(t, body, "Bonjour")
}

func TestHandleChat_EmptyContent(t *testing.T) {
	_, e := newTestAPI()

	rec := postChat(e, `{"content": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A rejected turn must answer with its error status. The status line is
// only committed once the first event is written, so the rate-limit
// rejection still reaches the client as a 429.
func TestHandleChat_RateLimitedSurfaces429(t *testing.T) {
	_, e := newTestAPI()

	var sawLimited bool
	for i := 0; i < 6; i++ {
		rec := postChat(e, `{"content": "bonjour"}`)
		switch rec.Code {
		case http.StatusOK:
			assert.Contains(t, rec.Body.String(), "data:")
		case http.StatusTooManyRequests:
			sawLimited = true
			assert.NotContains(t, rec.Body.String(), "data:")
			assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
		default:
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}
	require.True(t, sawLimited, "rapid turns must eventually be rejected with 429")
}
