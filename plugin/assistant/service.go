// Package assistant implements the conversational assistant: classify an
// utterance, resolve it against the dialogue context, compose the answer
// and reveal it as a stream, with optional delegation to an external
// generation service.
package assistant

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/time/rate"

	"github.com/edusphere/edusphere/plugin/assistant/compose"
	"github.com/edusphere/edusphere/plugin/assistant/gateway"
	"github.com/edusphere/edusphere/plugin/assistant/intent"
	"github.com/edusphere/edusphere/plugin/assistant/stream"
	"github.com/edusphere/edusphere/plugin/assistant/timeout"
	"github.com/edusphere/edusphere/store"
)

// Store is the persistence surface the assistant consumes. *store.Store
// satisfies it.
type Store interface {
	GetConversation(ctx context.Context, key string) (*store.ConversationLog, error)
	UpsertConversation(ctx context.Context, log *store.ConversationLog) error
	DeleteConversation(ctx context.Context, key string) error
	ListCourses(ctx context.Context, find *store.FindCourse) ([]*store.CourseRecord, error)
}

// EventType identifies a turn event pushed to the caller.
type EventType string

const (
	// EventTyping signals that the assistant started composing.
	EventTyping EventType = "typing"
	// EventMessage carries the current revealed prefix of the answer.
	EventMessage EventType = "message"
	// EventDone terminates the turn. It carries the full answer text, the
	// optional payload and the optional navigation request.
	EventDone EventType = "done"
)

// Event is one streaming update of a turn.
type Event struct {
	Type       EventType             `json:"type"`
	MessageUID string                `json:"messageUid"`
	Text       string                `json:"text,omitempty"`
	Results    []*store.CourseRecord `json:"results,omitempty"`
	Navigation *compose.Navigation   `json:"navigation,omitempty"`
}

// EmitFunc receives turn events in order. It is called from the stream
// emitter's goroutine.
type EmitFunc func(Event)

// Service is the assistant turn orchestrator. Construct one per process
// (or per test); all dependencies are injected, no ambient globals.
type Service struct {
	store      Store
	classifier *intent.Classifier
	dispatcher *gateway.Dispatcher
	streamCfg  stream.Config

	mu    sync.Mutex
	convs map[string]*conversation
}

// conversation is the per-key state: the dialogue context, the stream
// emitter with its single-stream guard, and the turn lock that keeps
// assistant responses strictly sequential.
type conversation struct {
	mu      sync.Mutex
	dctx    compose.DialogueContext
	emitter *stream.Emitter
	limiter *rate.Limiter
}

// NewService creates the assistant service. Without a configured gateway
// the assistant answers from local rules only.
func NewService(cfg *Config, st Store) *Service {
	s := &Service{
		store:      st,
		classifier: intent.NewClassifier(),
		streamCfg:  cfg.Stream,
		convs:      make(map[string]*conversation),
	}
	if cfg.GatewayEnabled {
		client, err := gateway.NewClient(cfg.Gateway)
		if err != nil {
			slog.Warn("generation gateway disabled", "error", err)
		} else {
			s.dispatcher = gateway.NewDispatcher(client, cfg.MaxConcurrentGenerations)
		}
	}
	return s
}

// NewServiceWithGenerator creates the service with an explicit generator,
// used by tests and alternative providers.
func NewServiceWithGenerator(cfg *Config, st Store, gen gateway.Generator) *Service {
	s := NewService(&Config{Stream: cfg.Stream}, st)
	if gen != nil {
		s.dispatcher = gateway.NewDispatcher(gen, cfg.MaxConcurrentGenerations)
	}
	return s
}

// ErrEmptyUtterance is returned when the caller submits blank input.
var ErrEmptyUtterance = errConst("empty utterance")

// ErrRateLimited is returned when a conversation sends turns faster than
// the per-conversation budget.
var ErrRateLimited = errConst("too many turns, slow down")

type errConst string

func (e errConst) Error() string { return string(e) }

// HandleTurn runs one full turn: persist the user message, resolve the
// intent, compose or generate the answer, stream it into the assistant
// message and persist the result. It returns after the stream completed,
// which is what keeps turns sequential per conversation.
func (s *Service) HandleTurn(ctx context.Context, key, utterance string, emit EmitFunc) error {
	if strings.TrimSpace(utterance) == "" {
		return ErrEmptyUtterance
	}

	conv := s.conversationState(key)
	if !conv.limiter.Allow() {
		return ErrRateLimited
	}

	// The turn lock defers this turn until the previous stream's guard has
	// been released: assistant responses never interleave.
	conv.mu.Lock()
	defer conv.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout.TurnTimeout)
	defer cancel()

	log := s.loadLog(ctx, key)
	log.Messages = append(log.Messages, store.Message{
		UID:       shortuuid.New(),
		Role:      store.MessageRoleUser,
		Content:   utterance,
		CreatedTs: time.Now().Unix(),
	})

	s.runTurn(ctx, conv, log, utterance, emit)
	return nil
}

// runTurn does the fallible part of a turn. A panic anywhere inside is
// converted into the fixed rephrase answer so the conversation stays
// usable; the stream guard is released by the emitter in every path.
func (s *Service) runTurn(ctx context.Context, conv *conversation, log *store.ConversationLog, utterance string, emit EmitFunc) {
	start := time.Now()
	var resp compose.Response
	var it intent.Intent

	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("turn processing panicked", "panic", r)
				it = intent.Intent{Type: intent.TypeUnknown}
				resp = compose.Response{Text: compose.RephraseText()}
			}
		}()
		it, resp = s.resolve(ctx, conv, log, utterance)
	}()

	slog.Debug("turn resolved",
		"intent", it.Type,
		"input", truncate(utterance, timeout.MaxTruncateLength),
		"latency_ms", time.Since(start).Milliseconds())

	s.deliver(ctx, conv, log, it, resp, emit)
}

// resolve classifies the utterance and composes the answer, delegating
// unknown questions to the gateway when it is configured.
func (s *Service) resolve(ctx context.Context, conv *conversation, log *store.ConversationLog, utterance string) (intent.Intent, compose.Response) {
	it := s.classifier.Classify(utterance)

	courses := s.listCourses(ctx, it)
	resp := compose.Compose(it, conv.dctx, courses)

	if it.Type == intent.TypeUnknown && s.dispatcher != nil {
		if text, err := s.generate(ctx, log, utterance); err == nil {
			resp = compose.Response{Text: text}
		} else if err != gateway.ErrSuperseded {
			// Silent fallback: the locally composed clarification stands.
			slog.Warn("external generation failed, using local answer", "error", err)
		}
	}
	return it, resp
}

// generate delegates to the external service with the bounded recent
// history as context.
func (s *Service) generate(ctx context.Context, log *store.ConversationLog, utterance string) (string, error) {
	msgs := log.Messages
	if len(msgs) > timeout.GatewayHistory {
		msgs = msgs[len(msgs)-timeout.GatewayHistory:]
	}
	history := make([]gateway.Message, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.IsAssistant() {
			role = "assistant"
		}
		history = append(history, gateway.Message{Role: role, Content: m.Content})
	}
	return s.dispatcher.Generate(ctx, log.Key, &gateway.Request{
		Query:   utterance,
		History: history,
	})
}

// deliver appends the assistant message, streams the text into it and
// persists the final state.
func (s *Service) deliver(ctx context.Context, conv *conversation, log *store.ConversationLog, it intent.Intent, resp compose.Response, emit EmitFunc) {
	msg := store.Message{
		UID:       shortuuid.New(),
		Role:      store.MessageRoleAssistant,
		CreatedTs: time.Now().Unix(),
	}
	log.Messages = append(log.Messages, msg)
	idx := len(log.Messages) - 1

	emit(Event{Type: EventTyping, MessageUID: msg.UID})

	started := conv.emitter.Start(resp.Text, func(prefix string, done bool) {
		// Each tick rewrites the full prefix; nothing is appended.
		log.Messages[idx].Content = prefix
		if !done {
			emit(Event{Type: EventMessage, MessageUID: msg.UID, Text: prefix})
			return
		}
		emit(Event{
			Type:       EventDone,
			MessageUID: msg.UID,
			Text:       prefix,
			Results:    resultCourses(resp),
			Navigation: resp.Navigation,
		})
	})
	if !started {
		// Guard held by an in-flight stream; with the turn lock this is
		// unreachable, but the policy stands: drop, never overlap.
		slog.Warn("stream guard busy, dropping answer", "key", log.Key)
		return
	}
	conv.emitter.Wait()

	log.Messages[idx].Payload = encodePayload(resp)

	// Persistence failure keeps the conversation in-memory for this
	// session; the user already has the answer.
	if err := s.store.UpsertConversation(ctx, log); err != nil {
		slog.Warn("failed to persist conversation", "key", log.Key, "error", err)
	}

	conv.dctx = compose.DialogueContext{
		LastIntent:  it.Type,
		LastResults: resp.Results,
	}
}

// conversationState returns the state for a key, creating it on first use.
func (s *Service) conversationState(key string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[key]
	if !ok {
		conv = &conversation{
			emitter: stream.NewEmitter(s.streamCfg),
			limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		}
		s.convs[key] = conv
	}
	return conv
}

// loadLog loads the conversation, seeding a fresh one with the greeting
// message when the store has nothing usable.
func (s *Service) loadLog(ctx context.Context, key string) *store.ConversationLog {
	log, err := s.store.GetConversation(ctx, key)
	if err != nil {
		slog.Warn("conversation load failed, continuing in memory", "key", key, "error", err)
		log = nil
	}
	if log == nil || len(log.Messages) == 0 {
		return s.seedLog(key)
	}
	log.Key = key
	return log
}

// seedLog creates a new log containing exactly one greeting message.
func (s *Service) seedLog(key string) *store.ConversationLog {
	greeting := compose.Compose(intent.Intent{Type: intent.TypeGreeting}, compose.DialogueContext{}, nil)
	return &store.ConversationLog{
		Key: key,
		Messages: []store.Message{{
			UID:       shortuuid.New(),
			Role:      store.MessageRoleAssistant,
			Content:   greeting.Text,
			CreatedTs: time.Now().Unix(),
		}},
	}
}

// Messages returns the persisted window for a conversation, seeding the
// greeting for a new key.
func (s *Service) Messages(ctx context.Context, key string) ([]store.Message, error) {
	return s.loadLog(ctx, key).Messages, nil
}

// Reset deletes the conversation and clears its dialogue context. The next
// turn starts from the greeting seed.
func (s *Service) Reset(ctx context.Context, key string) error {
	conv := s.conversationState(key)
	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.dctx = compose.DialogueContext{}
	return s.store.DeleteConversation(ctx, key)
}

// listCourses fetches the catalog for lookup intents; other intents never
// touch it. The catalog is read per call, never cached here.
func (s *Service) listCourses(ctx context.Context, it intent.Intent) []*store.CourseRecord {
	if it.Type != intent.TypeCourseSearch {
		return nil
	}
	courses, err := s.store.ListCourses(ctx, &store.FindCourse{})
	if err != nil {
		slog.Warn("failed to list courses", "error", err)
		return nil
	}
	return courses
}

func resultCourses(resp compose.Response) []*store.CourseRecord {
	if len(resp.Results) == 0 {
		return nil
	}
	out := make([]*store.CourseRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, r.Course)
	}
	return out
}

func encodePayload(resp compose.Response) []byte {
	if len(resp.Results) == 0 && resp.Navigation == nil {
		return nil
	}
	payload := struct {
		Courses    []*store.CourseRecord `json:"courses,omitempty"`
		Navigation *compose.Navigation   `json:"navigation,omitempty"`
	}{
		Courses:    resultCourses(resp),
		Navigation: resp.Navigation,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("failed to encode payload", "error", err)
		return nil
	}
	return data
}

// truncate truncates a string to maxLen characters for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
